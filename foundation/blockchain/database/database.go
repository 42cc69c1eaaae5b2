// Package database maintains the chain of blocks in memory, validating each
// block against the current tail before it's accepted. Blocks can optionally
// be written through to a Storage implementation.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// Set of errors returned by the chain.
var (
	ErrNotFound        = errors.New("block not found")
	ErrGenesisMismatch = errors.New("stored genesis block does not match")
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// AppendResult describes what happened to a block submitted to Append.
type AppendResult int

// Set of append results. The zero value is only returned with an error.
const (
	Appended AppendResult = iota + 1
	RejectedTamper
	RejectedLinkage
)

// String implements the fmt.Stringer interface.
func (r AppendResult) String() string {
	switch r {
	case Appended:
		return "appended"
	case RejectedTamper:
		return "rejected: tamper"
	case RejectedLinkage:
		return "rejected: broken linkage"
	}

	return "failed"
}

// resultFor maps a validation error onto the append result it produces.
func resultFor(err error) AppendResult {
	switch {
	case err == nil:
		return Appended
	case errors.Is(err, ErrTampered):
		return RejectedTamper
	case errors.Is(err, ErrBrokenLinkage):
		return RejectedLinkage
	}

	return 0
}

// =============================================================================

// Config represents the configuration required to construct a chain.
type Config struct {
	Storage   Storage
	EvHandler EventHandler
}

// Chain manages the ordered set of blocks rooted at the genesis block.
type Chain struct {
	mu        sync.RWMutex
	blocks    []Block
	storage   Storage
	evHandler EventHandler
}

// New constructs a chain holding only the genesis block. When storage is
// provided, an empty storage is seeded with the genesis block and a non-empty
// one is replayed and validated block by block.
func New(cfg Config) (*Chain, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	c := Chain{
		blocks:    []Block{Genesis()},
		storage:   cfg.Storage,
		evHandler: ev,
	}

	if c.storage == nil {
		return &c, nil
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return &c, nil
}

// load reads all the blocks from storage, validating each one against its
// parent. The genesis block is written if storage is empty.
func (c *Chain) load() error {
	var number uint64

	iter := c.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return fmt.Errorf("reading block %d: %w", number, err)
		}

		if blockData.Number != number {
			return fmt.Errorf("block is out of order, got %d, exp %d", blockData.Number, number)
		}

		block := ToBlock(blockData)

		c.evHandler("database: load: blk[%d]: hash[%s]", number, block.Hash())

		switch {
		case number == 0:
			genesis := c.blocks[0]
			if block.Hash() != genesis.Hash() || block.ComputeHash() != genesis.Hash() {
				return fmt.Errorf("%w, got %s, exp %s", ErrGenesisMismatch, block.Hash(), genesis.Hash())
			}

		default:
			if err := block.ValidateBlock(c.blocks[number-1], c.evHandler); err != nil {
				return fmt.Errorf("replaying block %d: %w", number, err)
			}
			c.blocks = append(c.blocks, block)
		}

		number++
	}

	if number == 0 {
		c.evHandler("database: load: storage empty: writing genesis")

		if err := c.storage.Write(NewBlockData(0, c.blocks[0])); err != nil {
			return fmt.Errorf("writing genesis: %w", err)
		}
	}

	return nil
}

// Close closes the storage if one was provided.
func (c *Chain) Close() error {
	if c.storage == nil {
		return nil
	}

	return c.storage.Close()
}

// =============================================================================

// Validate checks the candidate block can follow the previous block. The
// returned error wraps ErrTampered or ErrBrokenLinkage.
func (c *Chain) Validate(candidate Block, previous Block) error {
	return candidate.ValidateBlock(previous, c.evHandler)
}

// IsValid reports whether the candidate block can follow the previous block.
func (c *Chain) IsValid(candidate Block, previous Block) bool {
	return c.Validate(candidate, previous) == nil
}

// Append validates the block against the current tail and adds it to the
// chain if it passes. A block that fails validation is not added and the
// reason is reported by the result, not by the error. The error is only set
// when the block could not be written to storage, and then the chain is
// left unchanged as well.
func (c *Chain) Append(block Block) (AppendResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	number := uint64(len(c.blocks))
	tail := c.blocks[number-1]

	c.evHandler("database: Append: blk[%d]: started: hash[%s]", number, block.Hash())

	if err := block.ValidateBlock(tail, c.evHandler); err != nil {
		result := resultFor(err)
		c.evHandler("database: Append: blk[%d]: %s: %s", number, result, err)
		return result, nil
	}

	if c.storage != nil {
		if err := c.storage.Write(NewBlockData(number, block)); err != nil {
			c.evHandler("database: Append: blk[%d]: write failed: %s", number, err)
			return 0, fmt.Errorf("writing block %d: %w", number, err)
		}
	}

	c.blocks = append(c.blocks, block)

	c.evHandler("database: Append: blk[%d]: %s", number, Appended)

	return Appended, nil
}

// Verify walks the entire chain, checking the genesis block and then every
// block against its parent and its own transactions.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	genesis := Genesis()
	if c.blocks[0].Hash() != genesis.Hash() || c.blocks[0].ComputeHash() != genesis.Hash() {
		return ErrGenesisMismatch
	}

	for i, block := range c.blocks {
		if err := block.VerifyTransactions(); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}

		if i == 0 {
			continue
		}

		if err := block.ValidateBlock(c.blocks[i-1], c.evHandler); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
	}

	return nil
}

// =============================================================================

// Genesis returns the first block of the chain.
func (c *Chain) Genesis() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[0]
}

// Latest returns the current tail of the chain.
func (c *Chain) Latest() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1]
}

// Len returns the number of blocks in the chain, genesis included.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Blocks returns a copy of the blocks in chain order.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]Block, len(c.blocks))
	copy(blocks, c.blocks)

	return blocks
}

// BlockByNumber returns the block at the specified position in the chain.
func (c *Chain) BlockByNumber(num uint64) (Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if num >= uint64(len(c.blocks)) {
		return Block{}, fmt.Errorf("%w: number %d", ErrNotFound, num)
	}

	return c.blocks[num], nil
}
