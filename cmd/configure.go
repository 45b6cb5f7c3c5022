package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the lendreg configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	RunE:  runConfigInit,
}

var configAccessCmd = &cobra.Command{
	Use:   "access",
	Short: "Update the access section of the config file",
	Long: `Rewrites the access section in place, preserving comments and other
sections. Only seeds the policy for a fresh registry; once a snapshot
exists the persisted policy wins.`,
	RunE: runConfigAccess,
}

func init() {
	configAccessCmd.Flags().String("policy", "", "access policy: owner or role")
	configAccessCmd.Flags().String("owner", "", "owner / initial role holder")
	configAccessCmd.Flags().String("role", "", "role name under the role policy")

	configCmd.AddCommand(configInitCmd, configAccessCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runConfigAccess(cmd *cobra.Command, args []string) error {
	next := cfg.Access
	if v, _ := cmd.Flags().GetString("policy"); v != "" {
		next.Policy = v
	}
	if v, _ := cmd.Flags().GetString("owner"); v != "" {
		next.Owner = v
	}
	if v, _ := cmd.Flags().GetString("role"); v != "" {
		next.Role = v
	}

	if err := config.ValidateAccess(next); err != nil {
		return err
	}

	path := configFilePath()
	if err := config.SaveAccess(path, next); err != nil {
		return err
	}
	fmt.Printf("Updated access policy in %s\n", path)
	return nil
}
