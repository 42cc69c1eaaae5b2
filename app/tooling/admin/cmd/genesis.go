package cmd

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Print the genesis block every chain starts from.",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderBlocks([]database.BlockData{database.NewBlockData(0, database.Genesis())})

		for i, tx := range database.Genesis().Transactions() {
			pterm.Info.Printfln("tx[%d]: %s", i, tx)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(genesisCmd)
}
