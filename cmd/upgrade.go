package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade --to <version>",
	Short: "Swap the active logic module in place",
	Long: `Replaces the registry's logic module with another version from the
module catalog. The candidate must belong to the registry's module
family; state, the pause flag, and the access policy survive the swap.`,
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().String("to", "", "catalog version to upgrade to (required)")
	upgradeCmd.Flags().String("init-data", "", "opaque migration data applied atomically with the swap")
	_ = upgradeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	target, _ := cmd.Flags().GetString("to")
	initData, _ := cmd.Flags().GetString("init-data")

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	candidate, err := r.catalog.Resolve(target)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(r.catalog.Versions(), ", "))
	}

	if err := r.container.UpgradeTo(cmd.Context(), who, candidate, []byte(initData)); err != nil {
		return err
	}

	family, version := r.container.ActiveModule()
	fmt.Printf("Active module: %s %s\n", family, version)
	return nil
}
