// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// verbosity is bound to the persistent -v flag.
var verbosity int

// Root returns the root command for the wpfleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wpfleet",
		Short:         "Provision batches of WordPress sites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log detail (-v per-site detail, -vv delegated commands)")

	// Batch commands
	cmd.AddCommand(Validate())
	cmd.AddCommand(CreateDatabases())
	cmd.AddCommand(Install())
	cmd.AddCommand(SetPermissions())
	cmd.AddCommand(Deploy())

	// Destructive commands
	cmd.AddCommand(CleanupDatabases())
	cmd.AddCommand(CleanupWordPress())

	// Utility commands
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
