package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	prev      string
	trans     []string
	nonce     int64
	timeStamp int64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Build a block from the flags and submit it to a node.",
	RunE:  addRun,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&prev, "prev", "p", "", "Hash of the block to build on, defaults to the latest block.")
	addCmd.Flags().StringArrayVarP(&trans, "tx", "t", nil, "Transaction to include, can be repeated.")
	addCmd.Flags().Int64VarP(&nonce, "nonce", "n", 0, "Nonce for the block.")
	addCmd.Flags().Int64Var(&timeStamp, "ts", 0, "Timestamp for the block, defaults to now.")
}

func addRun(cmd *cobra.Command, args []string) error {
	if prev == "" {
		latest, err := latestHash()
		if err != nil {
			return err
		}
		prev = latest
	}

	if !cmd.Flags().Changed("ts") {
		timeStamp = time.Now().Unix()
	}

	nb := public.NewBlock{
		PrevBlockHash: prev,
		Trans:         trans,
		Nonce:         nonce,
		TimeStamp:     timeStamp,
	}
	if nb.Trans == nil {
		nb.Trans = []string{}
	}

	data, err := json.Marshal(nb)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/blocks/add", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var app public.Appended
	if err := decodeResponse(resp, &app); err != nil {
		pterm.Error.Println(err)
		return fmt.Errorf("adding block: %w", err)
	}

	log.Infow("add", "url", url, "status", app.Status, "hash", app.Hash)

	pterm.Success.Printfln("%s: %s", app.Status, app.Hash)

	return nil
}

// latestHash asks the node for its chain and returns the hash of the tail.
func latestHash() (string, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/verify", url))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var status public.ChainStatus
	if err := decodeResponse(resp, &status); err != nil {
		return "", fmt.Errorf("reading latest block: %w", err)
	}

	return status.LatestHash, nil
}
