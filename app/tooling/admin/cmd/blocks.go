package cmd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List the blocks held by a node.",
	RunE:  blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
}

func blocksRun(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(fmt.Sprintf("%s/v1/blocks/list", url))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var blocks []database.BlockData
	if err := decodeResponse(resp, &blocks); err != nil {
		return fmt.Errorf("listing blocks: %w", err)
	}

	log.Infow("blocks", "url", url, "count", len(blocks))

	renderBlocks(blocks)

	return nil
}

// renderBlocks prints the blocks as a table, one row per block.
func renderBlocks(blocks []database.BlockData) {
	data := pterm.TableData{
		{"Number", "Hash", "Prev Hash", "Merkle Root", "Nonce", "Timestamp", "Trans"},
	}

	for _, bd := range blocks {
		data = append(data, []string{
			strconv.FormatUint(bd.Number, 10),
			bd.Hash,
			bd.Header.PrevBlockHash,
			bd.Header.MerkleRoot,
			strconv.FormatInt(bd.Header.Nonce, 10),
			strconv.FormatInt(bd.Header.TimeStamp, 10),
			strconv.Itoa(len(bd.Trans)),
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
