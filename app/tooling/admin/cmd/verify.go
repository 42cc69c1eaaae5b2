package cmd

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var dbPath string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay the blocks on disk and verify the chain.",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&dbPath, "db", "d", "zblock/blocks/", "Path to the block storage.")
}

func verifyRun(cmd *cobra.Command, args []string) error {
	strg, err := disk.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...))
	}

	spinner, _ := pterm.DefaultSpinner.Start("Replaying blocks from ", dbPath)

	chain, err := database.New(database.Config{
		Storage:   strg,
		EvHandler: ev,
	})
	if err != nil {
		spinner.Fail(err.Error())
		return fmt.Errorf("loading chain: %w", err)
	}
	defer chain.Close()

	if err := chain.Verify(); err != nil {
		spinner.Fail(err.Error())
		return fmt.Errorf("verifying chain: %w", err)
	}

	spinner.Success(fmt.Sprintf("chain valid: %d blocks, latest %s", chain.Len(), chain.Latest().Hash()))

	return nil
}
