package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wpfleet/cmd/wpfleet/handlers"
)

func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", "", "Path to the site list (.csv, .json, .yaml or .toml)")
	_ = cmd.MarkFlagRequired("config")
}

// addBatchFlags binds the flags every batch command accepts.
func addBatchFlags(cmd *cobra.Command, opts *handlers.Options) {
	addConfigFlag(cmd, &opts.ConfigPath)
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 1, "Number of sites processed concurrently within a stage")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Abort when any site fails a batch-critical stage")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write results as JSON to a file or s3://bucket/key (includes credentials)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile collector format")
}

func addDatabaseFlags(cmd *cobra.Command, opts *handlers.Options) {
	cmd.Flags().BoolVar(&opts.UseExistingDatabases, "use-existing-databases", false, "Keep existing databases and users instead of recreating them")
}

// addInstallFlags binds the staging, configuration and install flags.
func addInstallFlags(cmd *cobra.Command, opts *handlers.Options) {
	cmd.Flags().StringVar(&opts.CleanupPolicy, "cleanup-policy", "deny", "What to do with non-empty directories: deny, confirm or auto")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "WordPress archive: https URL, file path or s3://bucket/key (default: latest release)")
	cmd.Flags().StringVar(&opts.ArchiveSHA256, "archive-sha256", "", "Expected SHA-256 digest of the archive")
	cmd.Flags().StringVar(&opts.BaseDomain, "base-domain", "", "Domain used to infer site URLs as <site>.<base-domain>")
	cmd.Flags().BoolVar(&opts.AppPasswords, "app-passwords", false, "Create an application password for each administrator")
	addPermissionFlags(cmd, opts)
}

func addPermissionFlags(cmd *cobra.Command, opts *handlers.Options) {
	cmd.Flags().StringVar(&opts.WebUser, "web-user", "", "Owner applied to site files, as user[:group]")
}
