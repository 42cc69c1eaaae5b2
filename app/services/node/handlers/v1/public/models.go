package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/web"
)

func init() {
	if err := web.RegisterValidation("hexhash", digest.IsHash, "{0} must be a 64 character hex hash or 0"); err != nil {
		panic(err)
	}
}

// NewBlock is what a client sends to have a block built and appended.
type NewBlock struct {
	PrevBlockHash string   `json:"previous_hash" validate:"required,hexhash"`
	Trans         []string `json:"transactions" validate:"required"`
	Nonce         int64    `json:"nonce"`
	TimeStamp     int64    `json:"timestamp"`
}

// ProposedBlock is a fully formed block, hash included, sent by a client.
type ProposedBlock struct {
	Hash   string               `json:"hash" validate:"required,hexhash"`
	Header database.BlockHeader `json:"block"`
	Trans  []string             `json:"trans" validate:"required"`
}

// Appended is returned when a block is accepted by the chain.
type Appended struct {
	Status string               `json:"status"`
	Hash   string               `json:"hash"`
	Header database.BlockHeader `json:"block"`
}

// Proof is the merkle proof for one transaction of a block.
type Proof struct {
	Number     uint64   `json:"number"`
	Index      int      `json:"index"`
	Tx         string   `json:"tx"`
	TxHash     string   `json:"tx_hash"`
	MerkleRoot string   `json:"merkle_root"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
	Verified   bool     `json:"verified"`
}

// ChainStatus is the result of verifying the full chain.
type ChainStatus struct {
	Status     string `json:"status"`
	Blocks     int    `json:"blocks"`
	LatestHash string `json:"latest_hash"`
}
