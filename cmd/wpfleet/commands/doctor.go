package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

// Doctor returns the command that checks batch preconditions.
//
// Required flags:
//
//	--config, -c: Path to the site list
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that a batch can run on this host",
		Long: `Check the preconditions of a batch without touching any site.

  - Validates the site list
  - Connects to MySQL with the administrative credentials
  - Looks up WP-CLI and PHP and checks that the installer responds

Examples:
  wpfleet doctor -c sites.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, verbosity)
		},
	}

	addConfigFlag(cmd, &configPath)

	return cmd
}
