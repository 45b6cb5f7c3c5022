package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage the owner under the single-owner policy",
}

var ownerTransferCmd = &cobra.Command{
	Use:   "transfer <next-owner>",
	Short: "Transfer ownership to another identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runOwnerTransfer,
}

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage holders under the role-based policy",
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant <member>",
	Short: "Grant the privileged role to an identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleGrant,
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <member>",
	Short: "Revoke the privileged role from an identity",
	Long: `Removes an identity from the privileged role. Revoking the last
holder is rejected so the registry cannot lock itself out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoleRevoke,
}

func init() {
	ownerCmd.AddCommand(ownerTransferCmd)
	roleCmd.AddCommand(roleGrantCmd, roleRevokeCmd)
	rootCmd.AddCommand(ownerCmd, roleCmd)
}

func runOwnerTransfer(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	next := identity.Address(args[0])

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.container.TransferOwnership(cmd.Context(), who, next); err != nil {
		return err
	}
	fmt.Printf("Ownership transferred to %s\n", next)
	return nil
}

func runRoleGrant(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	member := identity.Address(args[0])

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.container.GrantRole(cmd.Context(), who, member); err != nil {
		return err
	}
	fmt.Printf("Role granted to %s\n", member)
	return nil
}

func runRoleRevoke(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}
	member := identity.Address(args[0])

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.container.RevokeRole(cmd.Context(), who, member); err != nil {
		return err
	}
	fmt.Printf("Role revoked from %s\n", member)
	return nil
}
