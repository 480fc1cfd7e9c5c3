package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

// SetPermissions returns the command that re-applies file permissions.
func SetPermissions() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "set-permissions",
		Short: "Re-apply file permissions to existing installations",
		Long: `Re-apply the permission model to every site directory:
directories 0755, files 0644, wp-config.php 0600, and a writable
wp-content/uploads. Failures are reported as warnings.

Examples:
  wpfleet set-permissions -c sites.csv
  sudo wpfleet set-permissions -c sites.csv --web-user www-data:www-data`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			return handlers.SetPermissions(cmd.Context(), opts)
		},
	}

	addBatchFlags(cmd, &opts)
	addPermissionFlags(cmd, &opts)

	return cmd
}
