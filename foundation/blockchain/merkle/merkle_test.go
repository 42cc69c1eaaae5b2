// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Data uses the sha256 hashing algorithm for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the value using sha256.
func (d Data) Hash() string {
	return digest.HashString(d.x)
}

// Equals tests for equality of two piece of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

func toData(values ...string) []Data {
	data := make([]Data, len(values))
	for i, v := range values {
		data[i] = Data{x: v}
	}
	return data
}

// =============================================================================

func Test_MerkleRoot(t *testing.T) {
	h := digest.HashString

	type table struct {
		name string
		data []Data
		exp  string
	}

	tt := []table{
		{
			name: "empty",
			data: nil,
			exp:  "0",
		},
		{
			name: "single",
			data: toData("Decentralized ecosystem"),
			exp:  "c273b54b2c919d0477e6d659cecf43341fcf7639c2ef1289f9c1b0b59437e375",
		},
		{
			name: "pair",
			data: toData("a", "b"),
			exp:  digest.Concat(h("a"), h("b")),
		},
		{
			name: "odd",
			data: toData("a", "b", "c"),
			exp:  digest.Concat(digest.Concat(h("a"), h("b")), digest.Concat(h("c"), h("c"))),
		},
		{
			name: "transfers",
			data: toData("a->b", "a->c", "b!=c"),
			exp:  "5d333bdce7cb794eea11de8e8e157aa860b735e98ede41936aa45a09495cb9a3",
		},
		{
			name: "five",
			data: toData("t1", "t2", "t3", "t4", "t5"),
			exp:  "0953935c400f792274833bc138d3647285a3629ac179bd362f201b425822880c",
		},
	}

	t.Log("Given the need to compute a merkle root for a set of transactions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %d values.", testID, len(tst.data))
				{
					tree := merkle.NewTree(tst.data)
					if tree.MerkleRoot != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tree.MerkleRoot)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected merkle root.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected merkle root.", success, testID)

					again := merkle.NewTree(tst.data)
					if again.MerkleRoot != tree.MerkleRoot {
						t.Fatalf("\t%s\tTest %d:\tShould get the same root when computed again.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the same root when computed again.", success, testID)

					if err := tree.Verify(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to verify the tree: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to verify the tree.", success, testID)

					if got := tree.Len(); got != len(tst.data) {
						t.Fatalf("\t%s\tTest %d:\tShould hold %d values, got %d.", failed, testID, len(tst.data), got)
					}
					t.Logf("\t%s\tTest %d:\tShould hold %d values.", success, testID, len(tst.data))

					values := tree.Values()
					for i, v := range values {
						if v != tst.data[i] {
							t.Fatalf("\t%s\tTest %d:\tShould get back the values in order, idx %d got %q exp %q.", failed, testID, i, v.x, tst.data[i].x)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the values in order.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Rebuild(t *testing.T) {
	t.Log("Given the need to rebuild a tree from its own values.")
	{
		tree := merkle.NewTree(toData("a", "b", "c"))
		root := tree.MerkleRoot

		tree.Rebuild()
		if tree.MerkleRoot != root {
			t.Fatalf("\t%s\tShould get the same root after a rebuild.", failed)
		}
		t.Logf("\t%s\tShould get the same root after a rebuild.", success)

		tree.Generate(toData("x"))
		if tree.MerkleRoot != digest.HashString("x") {
			t.Fatalf("\t%s\tShould get a new root after generating with new data.", failed)
		}
		t.Logf("\t%s\tShould get a new root after generating with new data.", success)
	}
}

func Test_Proof(t *testing.T) {
	sets := [][]string{
		{"only"},
		{"a", "b"},
		{"a", "b", "c"},
		{"t1", "t2", "t3", "t4", "t5"},
		{"t1", "t2", "t3", "t4", "t5", "t6", "t7"},
	}

	t.Log("Given the need to prove a value is part of a tree.")
	{
		for testID, set := range sets {
			t.Logf("\tTest %d:\tWhen handling %d values.", testID, len(set))
			{
				data := toData(set...)
				tree := merkle.NewTree(data)

				for i, d := range data {
					proof, order, err := tree.ProofAt(i)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to get a proof for index %d: %v", failed, testID, i, err)
					}

					if !merkle.VerifyProof(d.Hash(), proof, order, tree.MerkleRoot) {
						t.Fatalf("\t%s\tTest %d:\tShould be able to verify the proof for index %d.", failed, testID, i)
					}

					if merkle.VerifyProof(digest.HashString("bad"), proof, order, tree.MerkleRoot) {
						t.Fatalf("\t%s\tTest %d:\tShould not verify a proof for the wrong data at index %d.", failed, testID, i)
					}

					if err := tree.VerifyData(d); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to verify data at index %d: %v", failed, testID, i, err)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould be able to prove every value.", success, testID)

				if _, _, err := tree.ProofAt(len(data)); err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould not get a proof past the last value.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not get a proof past the last value.", success, testID)

				if _, _, err := tree.Proof(Data{x: "missing"}); err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould not get a proof for missing data.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not get a proof for missing data.", success, testID)
			}
		}
	}
}

func Test_VerifyTamper(t *testing.T) {
	t.Log("Given the need to detect a tree that has been changed.")
	{
		tree := merkle.NewTree(toData("a", "b", "c"))
		tree.MerkleRoot = digest.HashString("forged")

		if err := tree.Verify(); err == nil {
			t.Fatalf("\t%s\tShould fail verification with a forged root.", failed)
		}
		t.Logf("\t%s\tShould fail verification with a forged root.", success)

		tree = merkle.NewTree(toData("a", "b", "c"))
		tree.Root.Left.Hash = digest.HashString("forged")

		if err := tree.VerifyData(Data{x: "a"}); err == nil {
			t.Fatalf("\t%s\tShould fail data verification with a forged node.", failed)
		}
		t.Logf("\t%s\tShould fail data verification with a forged node.", success)

		tree = merkle.NewTree[Data](nil)
		tree.MerkleRoot = digest.HashString("forged")

		if err := tree.Verify(); err == nil {
			t.Fatalf("\t%s\tShould fail verification of an empty tree with a forged root.", failed)
		}
		t.Logf("\t%s\tShould fail verification of an empty tree with a forged root.", success)
	}
}
