// Package handlers implements the business logic behind the CLI commands.
//
// Handlers are framework-agnostic: they receive plain values from the
// commands package, build the stage pipeline for the requested operation and
// run it through the orchestrator. External collaborators are created through
// package-level factory variables so tests can substitute fakes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/orchestration"
	"github.com/imamik/wpfleet/internal/platform/execx"
	"github.com/imamik/wpfleet/internal/platform/s3"
	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/database"
	"github.com/imamik/wpfleet/internal/provisioning/filesystem"
	"github.com/imamik/wpfleet/internal/provisioning/installer"
	"github.com/imamik/wpfleet/internal/ui/prompt"
	"github.com/imamik/wpfleet/internal/ui/report"
)

// Options carries the flags shared by the batch commands.
type Options struct {
	ConfigPath string
	Verbosity  int

	Parallel int
	Strict   bool

	// Database stage.
	UseExistingDatabases bool

	// Staging stage.
	CleanupPolicy string
	Archive       string
	ArchiveSHA256 string

	BaseDomain   string
	WebUser      string
	AppPasswords bool

	Output      string
	MetricsFile string

	// Yes confirms destructive cleanup commands.
	Yes bool
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig reads and validates a site list.
	loadConfig = config.Load

	// loadTimeouts reads timeouts and retry settings from the environment.
	loadTimeouts = config.LoadTimeouts

	// newObserver creates the observer that receives pipeline logs.
	newObserver = func(verbosity int) provisioning.Observer {
		return provisioning.NewLogrObserver(provisioning.NewConsoleLogger(os.Stderr, verbosity))
	}

	// openDatabase opens the administrative MySQL connection.
	openDatabase database.Opener = database.Open

	// newSiteInstaller creates the installer used by the install stages.
	newSiteInstaller = func(observer provisioning.Observer) installer.SiteInstaller {
		return installer.NewWPCLI(execx.LoggingRunner{
			Delegate: execx.ExecRunner{},
			Logf:     observer.Debugf,
		})
	}

	// newConfirmer creates the operator prompt for the confirm cleanup policy.
	newConfirmer = func() filesystem.Confirmer {
		return prompt.NewConfirmer()
	}

	// newObjectClient creates the S3 client for s3:// archives and result uploads.
	newObjectClient = func(ctx context.Context, settings config.ObjectStorage) (*s3.Client, error) {
		return s3.NewClient(ctx, settings)
	}

	// stdout receives reports and command output.
	stdout io.Writer = os.Stdout
)

// batchEnv holds what every batch command needs once the config is loaded.
type batchEnv struct {
	opts     Options
	cfg      *config.Config
	observer provisioning.Observer
	timeouts *config.Timeouts
	storage  config.ObjectStorage
}

// loadBatch loads the site list and the environment-derived settings.
func loadBatch(opts Options) (*batchEnv, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	env, err := config.CredentialEnvironment(filepath.Dir(opts.ConfigPath))
	if err != nil {
		return nil, err
	}

	return &batchEnv{
		opts:     opts,
		cfg:      cfg,
		observer: newObserver(opts.Verbosity),
		timeouts: loadTimeouts(),
		storage:  config.LoadObjectStorage(env),
	}, nil
}

// objectOpener returns a lazily created S3 client for archive sources.
func (b *batchEnv) objectOpener(ctx context.Context) func() (filesystem.ObjectOpener, error) {
	return func() (filesystem.ObjectOpener, error) {
		return newObjectClient(ctx, b.storage)
	}
}

// objectPutter returns a lazily created S3 client for result uploads.
func (b *batchEnv) objectPutter(ctx context.Context) func() (report.ObjectPutter, error) {
	return func() (report.ObjectPutter, error) {
		return newObjectClient(ctx, b.storage)
	}
}

// run executes stages over every site, prints the report and writes the
// optional result and metrics files. It returns an error whenever the
// process should exit non-zero.
func (b *batchEnv) run(ctx context.Context, stages []provisioning.Stage) error {
	metrics := provisioning.NewMetrics()
	orch := orchestration.New(b.cfg.Shared, b.observer, stages, orchestration.Options{
		Parallel: b.opts.Parallel,
		Strict:   b.opts.Strict,
		Metrics:  metrics,
		Timeouts: b.timeouts,
	})

	rep, runErr := orch.Run(ctx, b.cfg.Sites)

	if err := report.Write(stdout, rep); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	var errs []error
	if b.opts.Output != "" {
		// The batch may have been cancelled; the results are still worth keeping.
		if err := report.Export(context.WithoutCancel(ctx), b.opts.Output, rep, b.objectPutter(context.WithoutCancel(ctx))); err != nil {
			errs = append(errs, err)
		} else {
			b.observer.Printf("Results written to %s", b.opts.Output)
		}
	}
	if b.opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(b.opts.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}

	switch {
	case runErr != nil:
		errs = append([]error{runErr}, errs...)
	case rep.ExitCode() != 0:
		errs = append([]error{fmt.Errorf("%d site(s) failed a batch-critical stage", rep.CriticalFailures())}, errs...)
	}
	return errors.Join(errs...)
}
