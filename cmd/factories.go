package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/registry"
)

var factoriesCmd = &cobra.Command{
	Use:   "factories",
	Short: "Inspect and configure per-category factories",
}

var factoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured factories by category",
	RunE:  runFactoriesList,
}

var factoriesSetCmd = &cobra.Command{
	Use:   "set <category> <factory>",
	Short: "Configure the factory for a category",
	Long: `Configures the factory a category creates resources through.
Categories: credit_line, liquidity_pool. Setting the factory already
configured for the category is rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: runFactoriesSet,
}

var factoriesClearCmd = &cobra.Command{
	Use:   "clear <category>",
	Short: "Unconfigure the factory for a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runFactoriesClear,
}

func init() {
	factoriesCmd.AddCommand(factoriesListCmd, factoriesSetCmd, factoriesClearCmd)
	rootCmd.AddCommand(factoriesCmd)
}

func parseCategory(arg string) (registry.Category, error) {
	category := registry.Category(arg)
	if !category.Valid() {
		return "", fmt.Errorf("unknown category %q (valid: credit_line, liquidity_pool)", arg)
	}
	return category, nil
}

func runFactoriesList(cmd *cobra.Command, args []string) error {
	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	snap := r.container.Status()
	fmt.Printf("%-16s %s\n", "credit_line", orUnset(snap.CreditLineFactory))
	fmt.Printf("%-16s %s\n", "liquidity_pool", orUnset(snap.LiquidityPoolFactory))
	return nil
}

func runFactoriesSet(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	category, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	addr := identity.Address(args[1])
	if addr.IsZero() {
		return &identity.ZeroAddressError{Field: "factory"}
	}

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	switch category {
	case registry.CategoryCreditLine:
		err = r.container.ConfigureCreditLineFactory(cmd.Context(), who, factory.NewInMemoryCreditLineFactory(addr))
	case registry.CategoryLiquidityPool:
		err = r.container.ConfigureLiquidityPoolFactory(cmd.Context(), who, factory.NewInMemoryLiquidityPoolFactory(addr))
	}
	if err != nil {
		return err
	}

	fmt.Printf("Factory for %s set to %s\n", category, addr)
	return nil
}

func runFactoriesClear(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	category, err := parseCategory(args[0])
	if err != nil {
		return err
	}

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	switch category {
	case registry.CategoryCreditLine:
		err = r.container.ConfigureCreditLineFactory(cmd.Context(), who, nil)
	case registry.CategoryLiquidityPool:
		err = r.container.ConfigureLiquidityPoolFactory(cmd.Context(), who, nil)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Factory for %s cleared\n", category)
	return nil
}
