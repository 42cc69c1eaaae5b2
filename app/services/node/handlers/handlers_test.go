package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type node struct {
	chain *database.Chain
	mux   http.Handler
}

func newNode(t *testing.T) node {
	chain, err := database.New(database.Config{Storage: memory.New()})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a chain: %v", failed, err)
	}

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Chain:    chain,
		Evts:     events.New(),
	})

	return node{chain: chain, mux: mux}
}

func (n node) do(t *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("\t%s\tShould be able to encode the request: %v", failed, err)
		}
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	n.mux.ServeHTTP(w, r)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("\t%s\tShould be able to decode the response: %v", failed, err)
	}
}

// =============================================================================

func Test_Blocks(t *testing.T) {
	t.Log("Given the need to build and append blocks over http.")
	{
		n := newNode(t)
		genesis := n.chain.Genesis()

		w := n.do(t, http.MethodGet, "/v1/genesis", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould get the genesis block, got %d.", failed, w.Code)
		}
		var gd database.BlockData
		decode(t, w, &gd)
		if gd.Hash != genesis.Hash() || gd.Number != 0 {
			t.Fatalf("\t%s\tShould get the genesis hash, got %s.", failed, gd.Hash)
		}
		t.Logf("\t%s\tShould get the genesis block.", success)

		nb := public.NewBlock{
			PrevBlockHash: genesis.Hash(),
			Trans:         []string{"a->b", "a->c", "b!=c"},
			Nonce:         1,
			TimeStamp:     1700000000,
		}

		w = n.do(t, http.MethodPost, "/v1/blocks/add", nb)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to add a block, got %d: %s", failed, w.Code, w.Body.String())
		}
		var app public.Appended
		decode(t, w, &app)
		if app.Status != "appended" || app.Header.PrevBlockHash != genesis.Hash() {
			t.Fatalf("\t%s\tShould get the appended block back, got %+v.", failed, app)
		}
		t.Logf("\t%s\tShould be able to add a block.", success)

		w = n.do(t, http.MethodPost, "/v1/blocks/add", nb)
		if w.Code != http.StatusNotAcceptable {
			t.Fatalf("\t%s\tShould reject a block that does not link to the tail, got %d.", failed, w.Code)
		}
		var er errs.Response
		decode(t, w, &er)
		if er.Error != "block not accepted: rejected: broken linkage" {
			t.Fatalf("\t%s\tShould get the rejection reason, got %q.", failed, er.Error)
		}
		t.Logf("\t%s\tShould reject a block that does not link to the tail.", success)

		if n.chain.Len() != 2 {
			t.Fatalf("\t%s\tShould have 2 blocks, got %d.", failed, n.chain.Len())
		}
		t.Logf("\t%s\tShould have 2 blocks.", success)

		w = n.do(t, http.MethodGet, "/v1/blocks/list", nil)
		var list []database.BlockData
		decode(t, w, &list)
		if len(list) != 2 || list[1].Hash != app.Hash || list[1].Header.PrevBlockHash != list[0].Hash {
			t.Fatalf("\t%s\tShould list both blocks in order.", failed)
		}
		t.Logf("\t%s\tShould list both blocks in order.", success)

		w = n.do(t, http.MethodGet, "/v1/blocks/1", nil)
		var bd database.BlockData
		decode(t, w, &bd)
		if bd.Number != 1 || bd.Hash != app.Hash {
			t.Fatalf("\t%s\tShould get block 1, got %+v.", failed, bd)
		}
		t.Logf("\t%s\tShould get block 1.", success)

		if w = n.do(t, http.MethodGet, "/v1/blocks/9", nil); w.Code != http.StatusNotFound {
			t.Fatalf("\t%s\tShould not find block 9, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould not find block 9.", success)

		w = n.do(t, http.MethodGet, "/v1/blocks/1/proof/2", nil)
		var proof public.Proof
		decode(t, w, &proof)
		if !proof.Verified || proof.Tx != "b!=c" {
			t.Fatalf("\t%s\tShould get a verified proof, got %+v.", failed, proof)
		}
		t.Logf("\t%s\tShould get a verified proof.", success)

		if w = n.do(t, http.MethodGet, "/v1/blocks/1/proof/3", nil); w.Code != http.StatusNotFound {
			t.Fatalf("\t%s\tShould not find a proof past the last transaction, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould not find a proof past the last transaction.", success)

		w = n.do(t, http.MethodGet, "/v1/chain/verify", nil)
		var status public.ChainStatus
		decode(t, w, &status)
		if w.Code != http.StatusOK || status.Blocks != 2 {
			t.Fatalf("\t%s\tShould verify the chain, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould verify the chain.", success)
	}
}

func Test_Validation(t *testing.T) {
	t.Log("Given the need to validate block requests.")
	{
		n := newNode(t)

		nb := public.NewBlock{
			PrevBlockHash: "not-a-hash",
			Trans:         []string{},
		}

		w := n.do(t, http.MethodPost, "/v1/blocks/add", nb)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a malformed previous hash, got %d.", failed, w.Code)
		}
		var er errs.Response
		decode(t, w, &er)
		if _, exists := er.Fields["previous_hash"]; !exists {
			t.Fatalf("\t%s\tShould name the previous_hash field, got %+v.", failed, er)
		}
		t.Logf("\t%s\tShould reject a malformed previous hash.", success)

		w = n.do(t, http.MethodPost, "/v1/blocks/add", map[string]any{"previous_hash": "0"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a request without transactions, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject a request without transactions.", success)

		if w = n.do(t, http.MethodPost, "/v1/blocks/add", "not a block"); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a body that is not a block, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject a body that is not a block.", success)

		nb = public.NewBlock{
			PrevBlockHash: n.chain.Genesis().Hash(),
			Trans:         []string{},
			Nonce:         -1,
			TimeStamp:     -1,
		}
		if w = n.do(t, http.MethodPost, "/v1/blocks/add", nb); w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould accept an empty block with negative values, got %d: %s", failed, w.Code, w.Body.String())
		}
		t.Logf("\t%s\tShould accept an empty block with negative values.", success)
	}
}

func Test_ProposeTampered(t *testing.T) {
	t.Log("Given the need to check the hash of a proposed block.")
	{
		n := newNode(t)

		block := database.NewBlock(n.chain.Genesis().Hash(), []string{"a->b"}, 1, 1700000000)
		bd := database.NewBlockData(1, block)

		pb := public.ProposedBlock{
			Hash:   bd.Hash,
			Header: bd.Header,
			Trans:  bd.Trans,
		}
		pb.Header.Nonce = 2

		w := n.do(t, http.MethodPost, "/v1/blocks/propose", pb)
		if w.Code != http.StatusNotAcceptable {
			t.Fatalf("\t%s\tShould reject a tampered block, got %d.", failed, w.Code)
		}
		var er errs.Response
		decode(t, w, &er)
		if er.Error != "block not accepted: rejected: tamper" {
			t.Fatalf("\t%s\tShould get the tamper reason, got %q.", failed, er.Error)
		}
		t.Logf("\t%s\tShould reject a tampered block.", success)

		pb.Header.Nonce = 1
		pb.Trans = []string{"a->z"}
		if w = n.do(t, http.MethodPost, "/v1/blocks/propose", pb); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject transactions that do not match the root, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject transactions that do not match the root.", success)

		pb.Trans = bd.Trans
		if w = n.do(t, http.MethodPost, "/v1/blocks/propose", pb); w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould accept the untouched block, got %d: %s", failed, w.Code, w.Body.String())
		}
		t.Logf("\t%s\tShould accept the untouched block.", success)

		if n.chain.Len() != 2 {
			t.Fatalf("\t%s\tShould have 2 blocks, got %d.", failed, n.chain.Len())
		}
		t.Logf("\t%s\tShould have 2 blocks.", success)
	}
}

func Test_Debug(t *testing.T) {
	t.Log("Given the need to check the health of a node.")
	{
		n := newNode(t)
		mux := handlers.DebugMux("test", zap.NewNop().Sugar(), n.chain)

		for _, path := range []string{"/debug/readiness", "/debug/liveness"} {
			r := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tShould get a 200 from %s, got %d.", failed, path, w.Code)
			}
			t.Logf("\t%s\tShould get a 200 from %s.", success, path)
		}
	}
}
