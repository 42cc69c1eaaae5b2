// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Chain *database.Chain
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide chain events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// Genesis returns the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, database.NewBlockData(0, h.Chain.Genesis()), http.StatusOK)
}

// Blocks returns every block of the chain in order.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.Chain.Blocks()

	blockData := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		blockData[i] = database.NewBlockData(uint64(i), block)
	}

	return web.Respond(ctx, w, blockData, http.StatusOK)
}

// BlockByNumber returns the block at the specified position in the chain.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	block, err := h.Chain.BlockByNumber(num)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, database.NewBlockData(num, block), http.StatusOK)
}

// Proof returns the merkle proof for a transaction in the specified block.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	index, err := strconv.Atoi(web.Param(r, "index"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid transaction index: %w", err), http.StatusBadRequest)
	}

	block, err := h.Chain.BlockByNumber(num)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	proof, order, err := block.Proof(index)
	if err != nil {
		if errors.Is(err, merkle.ErrNotFound) {
			return errs.NewTrusted(fmt.Errorf("transaction %d not found in block %d", index, num), http.StatusNotFound)
		}
		return err
	}

	tx := block.Transactions()[index]
	txHash := digest.HashString(tx)
	root := block.Header().MerkleRoot

	resp := Proof{
		Number:     num,
		Index:      index,
		Tx:         tx,
		TxHash:     txHash,
		MerkleRoot: root,
		Proof:      proof,
		Order:      order,
		Verified:   merkle.VerifyProof(txHash, proof, order, root),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddBlock builds a block from the posted fields and appends it to the chain.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nb NewBlock
	if err := decode(r, &nb); err != nil {
		return err
	}

	block := database.NewBlock(nb.PrevBlockHash, nb.Trans, nb.Nonce, nb.TimeStamp)

	return h.append(ctx, w, block)
}

// ProposeBlock takes a fully formed block, validates it and if that passes,
// adds the block to the chain. The posted hash is checked, not trusted.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pb ProposedBlock
	if err := decode(r, &pb); err != nil {
		return err
	}

	block := database.ToBlock(database.BlockData{
		Hash:   pb.Hash,
		Header: pb.Header,
		Trans:  pb.Trans,
	})

	if err := block.VerifyTransactions(); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return h.append(ctx, w, block)
}

// Verify walks the full chain and reports if it's intact.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.Chain.Verify(); err != nil {
		return errs.NewTrusted(fmt.Errorf("chain invalid: %w", err), http.StatusConflict)
	}

	resp := ChainStatus{
		Status:     "valid",
		Blocks:     h.Chain.Len(),
		LatestHash: h.Chain.Latest().Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// append submits the block to the chain and responds with the outcome.
func (h Handlers) append(ctx context.Context, w http.ResponseWriter, block database.Block) error {
	h.Log.Infow("append block", "traceid", web.GetTraceID(ctx), "hash", block.Hash(), "prev", block.Header().PrevBlockHash)

	result, err := h.Chain.Append(block)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	if result != database.Appended {
		return errs.NewTrusted(fmt.Errorf("block not accepted: %s", result), http.StatusNotAcceptable)
	}

	resp := Appended{
		Status: result.String(),
		Hash:   block.Hash(),
		Header: block.Header(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// decode reads the request body into val. A body that isn't well formed JSON
// is the client's fault and is reported as a bad request.
func decode(r *http.Request, val any) error {
	err := web.Decode(r, val)
	if err == nil || web.IsFieldErrors(err) {
		return err
	}

	return errs.NewTrusted(err, http.StatusBadRequest)
}
