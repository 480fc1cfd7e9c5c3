package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

// CleanupWordPress returns the command that empties every site directory.
//
// Required flags:
//
//	--yes: Confirm the deletion
func CleanupWordPress() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "cleanup-wordpress",
		Short: "Delete the content of every site directory",
		Long: `Delete the content of every site directory in the list.

The directories themselves are kept. This permanently deletes files and
refuses to run without --yes.

Examples:
  wpfleet cleanup-wordpress -c sites.csv --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			return handlers.CleanupWordPress(cmd.Context(), opts)
		},
	}

	addBatchFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "Confirm that directory contents may be deleted")

	return cmd
}
