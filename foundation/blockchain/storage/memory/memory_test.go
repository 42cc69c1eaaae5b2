package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Memory(t *testing.T) {
	t.Log("Given the need to store blocks in memory.")
	{
		m := memory.New()

		genesis := database.Genesis()
		b1 := database.NewBlock(genesis.Hash(), []string{"a->b"}, 1, 1)

		if err := m.Write(database.NewBlockData(1, b1)); err == nil {
			t.Fatalf("\t%s\tShould not be able to write a block out of order.", failed)
		}
		t.Logf("\t%s\tShould not be able to write a block out of order.", success)

		for i, b := range []database.Block{genesis, b1} {
			if err := m.Write(database.NewBlockData(uint64(i), b)); err != nil {
				t.Fatalf("\t%s\tShould be able to write block %d: %v", failed, i, err)
			}
		}
		t.Logf("\t%s\tShould be able to write blocks in order.", success)

		bd, err := m.GetBlock(1)
		if err != nil || bd.Hash != b1.Hash() {
			t.Fatalf("\t%s\tShould be able to get block 1: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to get block 1.", success)

		if _, err := m.GetBlock(2); !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("\t%s\tShould not find block 2: %v", failed, err)
		}
		t.Logf("\t%s\tShould not find block 2.", success)

		var hashes []string
		iter := m.ForEach()
		for bd, err := iter.Next(); !iter.Done(); bd, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to iterate: %v", failed, err)
			}
			hashes = append(hashes, bd.Hash)
		}

		if len(hashes) != 2 || hashes[0] != genesis.Hash() || hashes[1] != b1.Hash() {
			t.Fatalf("\t%s\tShould iterate the blocks in order, got %v.", failed, hashes)
		}
		t.Logf("\t%s\tShould iterate the blocks in order.", success)
	}
}
