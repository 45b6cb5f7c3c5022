package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the registry against a market ledger",
	Long: `Binds the market ledger and marks the registry live. Runs exactly once
per registry database; rerunning fails. The market identity comes from
--market or the 'market' config key.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("market", "", "market identity the ledger records resources under")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}

	market, _ := cmd.Flags().GetString("market")
	if market == "" {
		market = cfg.Market
	}
	if market == "" {
		return fmt.Errorf("no market identity: set --market or 'market' in the config")
	}

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	ledger, err := newLedger(r, identity.Address(market))
	if err != nil {
		return err
	}

	if err := r.container.Initialize(cmd.Context(), who, ledger); err != nil {
		return err
	}

	fmt.Printf("Registry initialized for market %s\n", market)
	return nil
}
