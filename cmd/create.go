package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create sub-resources through the configured factories",
}

var createCreditLineCmd = &cobra.Command{
	Use:   "credit-line",
	Short: "Create a credit line and register it with the ledger",
	RunE:  runCreateCreditLine,
}

var createPoolCmd = &cobra.Command{
	Use:   "liquidity-pool",
	Short: "Create a liquidity pool and register it with the ledger",
	RunE:  runCreatePool,
}

func init() {
	createCreditLineCmd.Flags().String("token", "", "token identity the credit line is denominated in (required)")
	createCreditLineCmd.Flags().Uint8("kind", 0, "factory-specific resource kind")
	createCreditLineCmd.Flags().String("data", "", "opaque initialization data passed to the factory")
	_ = createCreditLineCmd.MarkFlagRequired("token")

	createPoolCmd.Flags().Uint8("kind", 0, "factory-specific resource kind")
	createPoolCmd.Flags().String("data", "", "opaque initialization data passed to the factory")

	createCmd.AddCommand(createCreditLineCmd, createPoolCmd)
	rootCmd.AddCommand(createCmd)
}

func runCreateCreditLine(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	token, _ := cmd.Flags().GetString("token")
	kind, _ := cmd.Flags().GetUint8("kind")
	data, _ := cmd.Flags().GetString("data")

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	resource, err := r.container.CreateCreditLine(
		cmd.Context(), who, identity.Address(token), factory.Kind(kind), []byte(data))
	if err != nil {
		return err
	}

	fmt.Printf("Created credit line %s\n", resource)
	return nil
}

func runCreatePool(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetUint8("kind")
	data, _ := cmd.Flags().GetString("data")

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	resource, err := r.container.CreateLiquidityPool(
		cmd.Context(), who, factory.Kind(kind), []byte(data))
	if err != nil {
		return err
	}

	fmt.Printf("Created liquidity pool %s\n", resource)
	return nil
}
