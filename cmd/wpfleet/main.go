// Package main is the entry point for the wpfleet CLI.
//
// wpfleet provisions batches of WordPress sites on a single host: it creates
// the MySQL database and user of every site, stages the WordPress codebase,
// writes wp-config.php, hardens permissions and runs the installer. Sites
// are described in a CSV, JSON, YAML or TOML site list.
//
// Commands: validate, create-databases, install, set-permissions, deploy,
// cleanup-databases, cleanup-wordpress, doctor.
//
// For detailed usage information, run:
//
//	wpfleet --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/wpfleet/cmd/wpfleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
