package filesystem

import (
	"fmt"
	"os"

	"github.com/imamik/wpfleet/internal/provisioning"
)

const (
	// StageName is the name of the staging stage.
	StageName = "staging"
	// RemoveStageName is the name of the file cleanup stage.
	RemoveStageName = "remove-files"
)

// Stage stages every site's directory.
type Stage struct {
	stager *Stager
}

// NewStage creates the staging stage.
func NewStage(stager *Stager) *Stage {
	return &Stage{stager: stager}
}

// Name implements provisioning.Stage.
func (s *Stage) Name() string { return StageName }

// Criticality implements provisioning.Stage.
func (s *Stage) Criticality() provisioning.Criticality { return provisioning.BatchCritical }

// Reaches implements provisioning.Stage.
func (s *Stage) Reaches() provisioning.SiteState { return provisioning.StateStaged }

// Serial keeps confirmation prompts from interleaving.
func (s *Stage) Serial() bool { return s.stager.Policy == PolicyConfirm }

// ProvisionSite implements provisioning.Stage.
func (s *Stage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	staged, err := s.stager.Stage(ctx, run.Site.DirectoryPath, ctx.Observer)
	if err != nil {
		return err
	}
	run.InstalledPath = staged.Path
	run.WordPressVersion = staged.Version
	if len(staged.Skipped) > 0 {
		run.Warn(StageName, &provisioning.PermissionError{
			Path: staged.Path,
			Err:  fmt.Errorf("left protected entries in place: %v", staged.Skipped),
		})
	}
	if staged.Version != "" {
		ctx.Observer.Printf("Staged WordPress %s in %s", staged.Version, staged.Path)
	} else {
		ctx.Observer.Printf("Staged WordPress in %s", staged.Path)
	}
	return nil
}

// Finish removes the downloaded archive.
func (s *Stage) Finish(ctx *provisioning.Context) error {
	if s.stager.Archive == nil {
		return nil
	}
	ctx.Observer.Debugf("Removing downloaded archive")
	return s.stager.Archive.Close()
}

// RemoveStage deletes the content of every site's directory.
type RemoveStage struct{}

// NewRemoveStage creates the file cleanup stage.
func NewRemoveStage() *RemoveStage { return &RemoveStage{} }

// Name implements provisioning.Stage.
func (s *RemoveStage) Name() string { return RemoveStageName }

// Criticality implements provisioning.Stage.
func (s *RemoveStage) Criticality() provisioning.Criticality { return provisioning.SiteCritical }

// Reaches implements provisioning.Stage.
func (s *RemoveStage) Reaches() provisioning.SiteState { return provisioning.StateDone }

// ProvisionSite implements provisioning.Stage.
func (s *RemoveStage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	dir := run.Site.DirectoryPath
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		ctx.Observer.Printf("Nothing to remove in %s", dir)
		return nil
	}
	skipped, err := Clean(dir)
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		run.Warn(RemoveStageName, &provisioning.PermissionError{
			Path: dir,
			Err:  fmt.Errorf("left protected entries in place: %v", skipped),
		})
	}
	ctx.Observer.Printf("Removed files in %s", dir)
	return nil
}
