package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

// CreateDatabases returns the command that creates every site's database and user.
//
// Environment variables:
//
//	WPFLEET_MYSQL_HOST, WPFLEET_MYSQL_PORT, WPFLEET_MYSQL_ROOT_USER,
//	WPFLEET_MYSQL_ROOT_PASSWORD, WPFLEET_SHARED_DB_PASSWORD: defaults for
//	shared credentials missing from the site list
func CreateDatabases() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "create-databases",
		Short: "Create the database and user of every site",
		Long: `Create the database and user of every site.

By default existing databases and users are dropped and recreated. With
--use-existing-databases they are kept and only missing objects and
grants are added.

Examples:
  wpfleet create-databases -c sites.csv
  wpfleet create-databases -c sites.yaml --use-existing-databases`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			return handlers.CreateDatabases(cmd.Context(), opts)
		},
	}

	addBatchFlags(cmd, &opts)
	addDatabaseFlags(cmd, &opts)

	return cmd
}

// CleanupDatabases returns the command that drops every site's database and user.
//
// Required flags:
//
//	--yes: Confirm the deletion
func CleanupDatabases() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "cleanup-databases",
		Short: "Drop the database and user of every site",
		Long: `Drop the database and user of every site in the list.

This permanently deletes data and refuses to run without --yes.

Examples:
  wpfleet cleanup-databases -c sites.csv --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			return handlers.CleanupDatabases(cmd.Context(), opts)
		},
	}

	addBatchFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "Confirm that databases and users may be dropped")

	return cmd
}
