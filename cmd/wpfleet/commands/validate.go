package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

// Validate returns the command that checks a site list without side effects.
//
// Required flags:
//
//	--config, -c: Path to the site list
func Validate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a site list",
		Long: `Validate a site list and print the resolved sites.

Every problem is reported at once: missing fields, invalid identifiers,
duplicate site names, databases, users or directories, and conflicting
shared credentials. Nothing is created or changed.

Examples:
  wpfleet validate -c sites.csv
  WPFLEET_MYSQL_ROOT_PASSWORD=secret wpfleet validate -c sites.yaml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Validate(configPath)
		},
	}

	addConfigFlag(cmd, &configPath)

	return cmd
}
