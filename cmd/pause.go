package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the registry",
	Long: `Blocks factory configuration, resource creation, and upgrades until
'lendreg unpause'. Pausing an already-paused registry fails.`,
	RunE: runPause,
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Unpause the registry",
	RunE:  runUnpause,
}

func init() {
	rootCmd.AddCommand(pauseCmd, unpauseCmd)
}

func runPause(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.container.Pause(cmd.Context(), who); err != nil {
		return err
	}
	fmt.Println("Registry paused")
	return nil
}

func runUnpause(cmd *cobra.Command, args []string) error {
	who, err := caller()
	if err != nil {
		return err
	}

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.container.Unpause(cmd.Context(), who); err != nil {
		return err
	}
	fmt.Println("Registry unpaused")
	return nil
}
