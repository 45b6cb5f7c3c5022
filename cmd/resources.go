package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/cachemanager"
	"github.com/cloudwalk/lending-registry/internal/flags"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/infrastructure/sqlite"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List resources recorded in the market ledger",
}

var resourcesCreditLinesCmd = &cobra.Command{
	Use:   "credit-lines",
	Short: "List registered credit lines",
	RunE:  runResources("credit_lines"),
}

var resourcesPoolsCmd = &cobra.Command{
	Use:   "liquidity-pools",
	Short: "List registered liquidity pools",
	RunE:  runResources("liquidity_pools"),
}

func init() {
	for _, c := range []*cobra.Command{resourcesCreditLinesCmd, resourcesPoolsCmd} {
		c.Flags().String("creator", "", "only resources created by this identity")
	}
	resourcesCmd.AddCommand(resourcesCreditLinesCmd, resourcesPoolsCmd)
	rootCmd.AddCommand(resourcesCmd)
}

func runResources(table string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		creator, _ := cmd.Flags().GetString("creator")

		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		if r.ledger == nil {
			return fmt.Errorf("registry is not initialized")
		}

		load := func(ctx context.Context, by identity.Address) ([]sqlite.Registration, error) {
			if table == "credit_lines" {
				return r.ledger.CreditLines(ctx, by)
			}
			return r.ledger.LiquidityPools(ctx, by)
		}

		// Repeated listings inside one invocation (follow loops, scripted
		// subcommands) read through the cache.
		cache := cachemanager.NewReadThroughCache[string, []sqlite.Registration, identity.Address](
			cachemanager.NewInMemoryCacheManager[string, []sqlite.Registration](
				"resources", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
			load,
			cachemanager.DefaultExpiration,
			!r.features.Enabled(flags.FlagResourceCache),
		)

		regs, err := cache.Get(cmd.Context(), table+":"+creator, identity.Address(creator))
		if err != nil {
			return err
		}

		if len(regs) == 0 {
			fmt.Println("No resources registered")
			return nil
		}
		for _, reg := range regs {
			fmt.Printf("%s  %-40s created by %s\n",
				reg.RegisteredAt.Format("2006-01-02 15:04:05"), reg.Resource, reg.Creator)
		}
		return nil
	}
}
