package database

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// Set of errors returned when validating a block against its parent.
var (
	ErrTampered      = errors.New("block hash does not match its contents")
	ErrBrokenLinkage = errors.New("block does not link to the previous block")
)

// The fixed contents of the genesis block.
const (
	GenesisTx        = "Decentralized ecosystem"
	GenesisNonce     = 0
	GenesisTimeStamp = 0
)

// =============================================================================

// Tx represents a transaction carried by a block. Transactions are opaque
// payloads, they are hashed as given and never parsed.
type Tx string

// Hash implements the merkle Hashable interface.
func (tx Tx) Hash() string {
	return digest.HashString(string(tx))
}

// Equals implements the merkle Hashable interface.
func (tx Tx) Equals(other Tx) bool {
	return tx == other
}

// =============================================================================

// BlockHeader represents the fields of a block that are covered by its hash.
type BlockHeader struct {
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	MerkleRoot    string `json:"merkle_root"`     // Merkle tree root hash for the transactions in this block.
	Nonce         int64  `json:"nonce"`           // Caller supplied, no work is performed to find it.
	TimeStamp     int64  `json:"timestamp"`       // Seconds since epoch, zero for genesis.
}

// Hash returns the hash over the header fields joined in their fixed order.
func (bh BlockHeader) Hash() string {
	return digest.Concat(
		bh.PrevBlockHash,
		bh.MerkleRoot,
		strconv.FormatInt(bh.Nonce, 10),
		strconv.FormatInt(bh.TimeStamp, 10),
	)
}

// Block represents a group of transactions linked to a previous block. A
// block can't be changed once it's constructed.
type Block struct {
	header BlockHeader
	hash   string
	trans  *merkle.Tree[Tx]
}

// NewBlock constructs a block, computing the merkle root of the transactions
// and the block hash. Every input is accepted as given.
func NewBlock(prevBlockHash string, trans []string, nonce int64, timeStamp int64) Block {
	tree := merkle.NewTree(toTxs(trans))

	b := Block{
		header: BlockHeader{
			PrevBlockHash: prevBlockHash,
			MerkleRoot:    tree.MerkleRoot,
			Nonce:         nonce,
			TimeStamp:     timeStamp,
		},
		trans: tree,
	}
	b.hash = b.header.Hash()

	return b
}

// Genesis constructs the fixed first block of every chain.
func Genesis() Block {
	return NewBlock(digest.Sentinel, []string{GenesisTx}, GenesisNonce, GenesisTimeStamp)
}

// Header returns a copy of the block header.
func (b Block) Header() BlockHeader {
	return b.header
}

// Hash returns the hash stored with the block.
func (b Block) Hash() string {
	return b.hash
}

// ComputeHash recalculates the hash from the block's header fields. For a
// block that has not been tampered with it matches Hash.
func (b Block) ComputeHash() string {
	return b.header.Hash()
}

// Transactions returns a copy of the transactions in their original order.
func (b Block) Transactions() []string {
	if b.trans == nil {
		return []string{}
	}

	values := b.trans.Values()
	trans := make([]string, len(values))
	for i, tx := range values {
		trans[i] = string(tx)
	}

	return trans
}

// Proof returns the merkle proof for the transaction at the specified index.
func (b Block) Proof(index int) ([]string, []int64, error) {
	if b.trans == nil {
		return nil, nil, merkle.ErrNotFound
	}

	return b.trans.ProofAt(index)
}

// VerifyTransactions recomputes the merkle root from the transactions the
// block carries and compares it with the root in the header.
func (b Block) VerifyTransactions() error {
	root := digest.Sentinel
	if b.trans != nil {
		root = b.trans.MerkleRoot
	}

	if root != b.header.MerkleRoot {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", root, b.header.MerkleRoot)
	}

	return nil
}

// ValidateBlock takes a block and validates it can follow the previous block.
// The stored hash is recomputed, not trusted, then the linkage is checked.
func (b Block) ValidateBlock(previousBlock Block, evHandler EventHandler) error {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block hash matches block contents", b.hash)

	if hash := b.ComputeHash(); b.hash != hash {
		return fmt.Errorf("%w, got %s, exp %s", ErrTampered, b.hash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: parent hash does match parent block", b.hash)

	if b.header.PrevBlockHash != previousBlock.hash {
		return fmt.Errorf("%w, got %s, exp %s", ErrBrokenLinkage, b.header.PrevBlockHash, previousBlock.hash)
	}

	return nil
}

// =============================================================================

func toTxs(trans []string) []Tx {
	txs := make([]Tx, len(trans))
	for i, tx := range trans {
		txs[i] = Tx(tx)
	}

	return txs
}
