package installer

import (
	"context"

	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/database"
	"github.com/imamik/wpfleet/internal/provisioning/wpconfig"
)

const (
	// StageName is the name of the install stage.
	StageName = "install"
	// AppPasswordStageName is the name of the application password stage.
	AppPasswordStageName = "app-passwords"

	appPasswordLabel = "wpfleet"
)

// Stage runs the installer for every configured site.
type Stage struct {
	installer SiteInstaller
}

// NewStage creates the install stage.
func NewStage(installer SiteInstaller) *Stage {
	return &Stage{installer: installer}
}

// Name implements provisioning.Stage.
func (s *Stage) Name() string { return StageName }

// Criticality implements provisioning.Stage.
func (s *Stage) Criticality() provisioning.Criticality { return provisioning.SiteCritical }

// Reaches implements provisioning.Stage.
func (s *Stage) Reaches() provisioning.SiteState { return provisioning.StateInstalled }

// Preflight fails the batch if the installer cannot run on this host.
func (s *Stage) Preflight(ctx *provisioning.Context) error {
	if err := s.installer.Available(ctx); err != nil {
		return err
	}
	ctx.Observer.Debugf("Installer is available")
	return nil
}

// ProvisionSite implements provisioning.Stage.
func (s *Stage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	if run.Database == nil {
		run.Database = database.Describe(run.Site, ctx.Shared.MySQL)
	}
	if run.InstalledPath == "" {
		run.InstalledPath = run.Site.DirectoryPath
	}
	if run.SiteURL == "" {
		run.SiteURL = wpconfig.InferSiteURL(run.Site, "")
	}

	var execCtx context.Context = ctx
	if ctx.Timeouts != nil && ctx.Timeouts.Install > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, ctx.Timeouts.Install)
		defer cancel()
	}

	req := Request{
		Path:          run.InstalledPath,
		Database:      *run.Database,
		AdminUsername: run.Site.AdminUsername,
		AdminPassword: ctx.Shared.WordPress.AdminPassword,
		AdminEmail:    ctx.Shared.WordPress.AdminEmail,
		Title:         run.Site.SiteTitle,
		URL:           run.SiteURL,
	}
	if err := s.installer.Install(execCtx, req); err != nil {
		return err
	}
	ctx.Observer.Printf("Installed %s at %s", run.Site.SiteTitle, run.SiteURL)
	return nil
}

// AppPasswordStage creates an application password for each site's admin.
type AppPasswordStage struct {
	installer SiteInstaller
}

// NewAppPasswordStage creates the application password stage.
func NewAppPasswordStage(installer SiteInstaller) *AppPasswordStage {
	return &AppPasswordStage{installer: installer}
}

// Name implements provisioning.Stage.
func (s *AppPasswordStage) Name() string { return AppPasswordStageName }

// Criticality implements provisioning.Stage.
func (s *AppPasswordStage) Criticality() provisioning.Criticality { return provisioning.Advisory }

// Reaches implements provisioning.Stage.
func (s *AppPasswordStage) Reaches() provisioning.SiteState { return provisioning.StateInstalled }

// ProvisionSite implements provisioning.Stage.
func (s *AppPasswordStage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	path := run.InstalledPath
	if path == "" {
		path = run.Site.DirectoryPath
	}
	password, err := s.installer.CreateApplicationPassword(ctx, path, run.Site.AdminUsername, appPasswordLabel)
	if err != nil {
		return err
	}
	run.ApplicationPassword = password
	ctx.Observer.Printf("Created application password for %s", run.Site.AdminUsername)
	return nil
}
