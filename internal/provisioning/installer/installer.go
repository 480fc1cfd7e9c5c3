// Package installer completes WordPress installations through WP-CLI.
//
// The installer is an external capability: the pipeline only depends on
// SiteInstaller, and the WP-CLI adapter talks to the wp binary through an
// execx.Runner.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/imamik/wpfleet/internal/platform/execx"
	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/util/prerequisites"
)

// Request carries everything needed to install one site.
type Request struct {
	Path          string
	Database      provisioning.DatabaseInfo
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	Title         string
	URL           string
}

// SiteInstaller completes a WordPress installation.
type SiteInstaller interface {
	// Available checks the capability once per batch. Errors are
	// *provisioning.InstallerUnavailableError.
	Available(ctx context.Context) error

	// Install installs and verifies one site. Errors are
	// *provisioning.InstallError.
	Install(ctx context.Context, req Request) error

	// CreateApplicationPassword returns a new application password for user.
	CreateApplicationPassword(ctx context.Context, path, user, name string) (string, error)
}

// WPCLI implements SiteInstaller with the wp binary.
type WPCLI struct {
	Runner execx.Runner
	Binary string
	// AllowRoot passes --allow-root, which WP-CLI requires when run as root.
	AllowRoot bool
	// CheckTools verifies host prerequisites. Defaults to the WP-CLI and PHP checks.
	CheckTools func() error
}

// NewWPCLI creates the WP-CLI adapter. A nil runner executes real processes.
func NewWPCLI(runner execx.Runner) *WPCLI {
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	return &WPCLI{
		Runner:    runner,
		Binary:    "wp",
		AllowRoot: os.Geteuid() == 0,
		CheckTools: func() error {
			return prerequisites.CheckDefault().Error()
		},
	}
}

func (w *WPCLI) command(secrets []string, args ...string) execx.Command {
	if w.AllowRoot {
		args = append(args, "--allow-root")
	}
	return execx.Command{Name: w.Binary, Args: args, Secrets: secrets}
}

// Available implements SiteInstaller.
func (w *WPCLI) Available(ctx context.Context) error {
	if w.CheckTools != nil {
		if err := w.CheckTools(); err != nil {
			return &provisioning.InstallerUnavailableError{Tool: w.Binary, Err: err}
		}
	}
	if _, err := w.Runner.Run(ctx, w.command(nil, "--info")); err != nil {
		return &provisioning.InstallerUnavailableError{Tool: w.Binary, Err: err}
	}
	return nil
}

// Install implements SiteInstaller.
func (w *WPCLI) Install(ctx context.Context, req Request) error {
	install := w.command([]string{req.AdminPassword, req.Database.Password},
		"core", "install",
		"--path="+req.Path,
		"--url="+req.URL,
		"--title="+req.Title,
		"--admin_user="+req.AdminUsername,
		"--admin_password="+req.AdminPassword,
		"--admin_email="+req.AdminEmail,
		"--skip-email",
	)
	if res, err := w.Runner.Run(ctx, install); err != nil {
		return installError(install, res, err)
	}

	verify := w.command(nil, "core", "is-installed", "--path="+req.Path)
	if res, err := w.Runner.Run(ctx, verify); err != nil {
		ie := installError(verify, res, err)
		ie.Err = fmt.Errorf("installation could not be verified: %w", ie.Err)
		return ie
	}
	return nil
}

// CreateApplicationPassword implements SiteInstaller.
func (w *WPCLI) CreateApplicationPassword(ctx context.Context, path, user, name string) (string, error) {
	cmd := w.command(nil, "user", "application-password", "create", user, name, "--porcelain", "--path="+path)
	res, err := w.Runner.Run(ctx, cmd)
	if err != nil {
		return "", installError(cmd, res, err)
	}
	password := strings.TrimSpace(res.Stdout)
	if password == "" {
		return "", &provisioning.InstallError{Command: cmd.String(), Err: errors.New("no password in output")}
	}
	return password, nil
}

func installError(cmd execx.Command, res execx.Result, err error) *provisioning.InstallError {
	ie := &provisioning.InstallError{Command: cmd.String(), ExitCode: res.ExitCode, Err: err}
	var exitErr *execx.ExitError
	if errors.As(err, &exitErr) {
		ie.ExitCode = exitErr.ExitCode
		ie.Stderr = exitErr.Stderr
	}
	return ie
}
