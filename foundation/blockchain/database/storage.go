package database

import "github.com/ardanlabs/ledger/foundation/blockchain/merkle"

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// BlockData represents what is written to storage and sent over the wire.
// It also carries every field needed to report on a block.
type BlockData struct {
	Number uint64      `json:"number"`
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []string    `json:"trans"`
}

// NewBlockData constructs the value to serialize for the block at the
// specified position in the chain.
func NewBlockData(number uint64, block Block) BlockData {
	return BlockData{
		Number: number,
		Hash:   block.Hash(),
		Header: block.Header(),
		Trans:  block.Transactions(),
	}
}

// ToBlock converts a BlockData into a Block. The hash and merkle root are
// kept as stored so validation can catch data that was changed at rest.
func ToBlock(blockData BlockData) Block {
	return Block{
		header: blockData.Header,
		hash:   blockData.Hash,
		trans:  merkle.NewTree(toTxs(blockData.Trans)),
	}
}
