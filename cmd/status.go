package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registry state, active module, and access policy",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	snap := r.container.Status()

	fmt.Printf("Database:       %s\n", r.db.Path())
	fmt.Printf("Initialized:    %v\n", snap.Initialized)
	if snap.Initialized {
		fmt.Printf("Market:         %s\n", snap.Ledger)
	}
	fmt.Printf("Paused:         %v\n", snap.Paused)
	fmt.Printf("Module:         %s %s\n", snap.ModuleFamily, snap.ModuleVersion)
	fmt.Printf("Policy:         %s (%s)\n", snap.Policy, joinAddresses(snap.Holders))
	fmt.Printf("Credit lines:   %s\n", orUnset(snap.CreditLineFactory))
	fmt.Printf("Pools:          %s\n", orUnset(snap.LiquidityPoolFactory))

	last, err := r.journal.LastSeq()
	if err != nil {
		return err
	}
	fmt.Printf("Journal events: %d\n", last)
	return nil
}

func orUnset(addr identity.Address) string {
	if addr.IsZero() {
		return "(not configured)"
	}
	return addr.String()
}

func joinAddresses(addrs []identity.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
