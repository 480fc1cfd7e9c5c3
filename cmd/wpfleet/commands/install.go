package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

// Install returns the command that installs WordPress against existing databases.
//
// Environment variables:
//
//	WPFLEET_WP_ADMIN_PASSWORD, WPFLEET_WP_ADMIN_EMAIL: administrator credentials
//	WPFLEET_S3_*: object storage for s3:// archives and result uploads
func Install() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Stage, configure and install WordPress into every directory",
		Long: `Install WordPress into every site directory.

Stages run one at a time across all sites: staging, configure,
permissions, install, then finalize. Databases must already exist; use
'wpfleet deploy' to create them in the same run.

Non-empty directories are refused unless --cleanup-policy allows
replacing them. With "confirm" each directory is shown before deletion;
without a terminal the answer is always no.

Examples:
  wpfleet install -c sites.csv
  wpfleet install -c sites.csv --cleanup-policy auto --base-domain example.com
  wpfleet install -c sites.csv --archive ./wordpress-6.5.tar.gz --parallel 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			return handlers.Install(cmd.Context(), opts)
		},
	}

	addBatchFlags(cmd, &opts)
	addInstallFlags(cmd, &opts)

	return cmd
}

// Deploy returns the command that runs every stage.
func Deploy() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create databases and install WordPress for every site",
		Long: `Run the complete pipeline for every site: database, staging,
configure, permissions, install and finalize.

A stage runs for every site before the next stage starts. Sites that
fail drop out; the batch stops when a database or staging failure makes
continuing pointless (any such failure with --strict).

Examples:
  wpfleet deploy -c sites.csv
  wpfleet deploy -c sites.toml --strict --output results.json
  wpfleet deploy -c sites.csv --app-passwords --web-user www-data`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	addBatchFlags(cmd, &opts)
	addDatabaseFlags(cmd, &opts)
	addInstallFlags(cmd, &opts)

	return cmd
}
