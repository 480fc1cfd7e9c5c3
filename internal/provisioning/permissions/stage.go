package permissions

import (
	"path/filepath"

	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/wpconfig"
)

const (
	// StageName is the name of the hardening stage.
	StageName = "permissions"
	// FinalizeStageName is the name of the configuration tightening stage.
	FinalizeStageName = "finalize"
)

// Stage hardens every site's tree. Failures only downgrade the site.
type Stage struct {
	hardener *Hardener
}

// NewStage creates the hardening stage.
func NewStage(hardener *Hardener) *Stage {
	if hardener == nil {
		hardener = &Hardener{}
	}
	return &Stage{hardener: hardener}
}

// Name implements provisioning.Stage.
func (s *Stage) Name() string { return StageName }

// Criticality implements provisioning.Stage.
func (s *Stage) Criticality() provisioning.Criticality { return provisioning.Advisory }

// Reaches implements provisioning.Stage.
func (s *Stage) Reaches() provisioning.SiteState { return provisioning.StateHardened }

// ProvisionSite implements provisioning.Stage.
func (s *Stage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	dir := siteDir(run)
	changed, err := s.hardener.Harden(dir)
	if err != nil {
		return err
	}
	if s.hardener.Owner != nil {
		ctx.Observer.Printf("Applied modes and owner %s to %d entries in %s", s.hardener.Owner.Name, changed, dir)
	} else {
		ctx.Observer.Printf("Applied modes to %d entries in %s", changed, dir)
	}
	return nil
}

// FinalizeStage restricts wp-config.php once the installer no longer needs it.
type FinalizeStage struct{}

// NewFinalizeStage creates the configuration tightening stage.
func NewFinalizeStage() *FinalizeStage { return &FinalizeStage{} }

// Name implements provisioning.Stage.
func (s *FinalizeStage) Name() string { return FinalizeStageName }

// Criticality implements provisioning.Stage.
func (s *FinalizeStage) Criticality() provisioning.Criticality { return provisioning.Advisory }

// Reaches implements provisioning.Stage.
func (s *FinalizeStage) Reaches() provisioning.SiteState { return provisioning.StateDone }

// ProvisionSite implements provisioning.Stage.
func (s *FinalizeStage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	path := filepath.Join(siteDir(run), wpconfig.FileName)
	if err := Tighten(path); err != nil {
		return err
	}
	ctx.Observer.Debugf("Restricted %s to %o", path, ConfigMode)
	return nil
}

func siteDir(run *provisioning.SiteRun) string {
	if run.InstalledPath != "" {
		return run.InstalledPath
	}
	return run.Site.DirectoryPath
}
