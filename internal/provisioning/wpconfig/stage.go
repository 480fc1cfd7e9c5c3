package wpconfig

import (
	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/database"
)

// StageName is the name of the configuration stage.
const StageName = "configure"

// Stage writes wp-config.php for every staged site.
type Stage struct {
	writer     *Writer
	baseDomain string
}

// NewStage creates the configuration stage. baseDomain may be empty.
func NewStage(writer *Writer, baseDomain string) *Stage {
	if writer == nil {
		writer = &Writer{}
	}
	return &Stage{writer: writer, baseDomain: baseDomain}
}

// Name implements provisioning.Stage.
func (s *Stage) Name() string { return StageName }

// Criticality implements provisioning.Stage.
func (s *Stage) Criticality() provisioning.Criticality { return provisioning.SiteCritical }

// Reaches implements provisioning.Stage.
func (s *Stage) Reaches() provisioning.SiteState { return provisioning.StateConfigured }

// ProvisionSite implements provisioning.Stage.
func (s *Stage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	dir := run.InstalledPath
	if dir == "" {
		dir = run.Site.DirectoryPath
	}
	if run.Database == nil {
		// Pipelines without the database stage use the derived identity.
		run.Database = database.Describe(run.Site, ctx.Shared.MySQL)
	}
	siteURL := InferSiteURL(run.Site, s.baseDomain)

	path, err := s.writer.Write(dir, *run.Database, siteURL)
	if err != nil {
		return err
	}
	run.InstalledPath = dir
	run.SiteURL = siteURL
	ctx.Observer.Printf("Wrote %s for %s", path, siteURL)
	ctx.Observer.Debugf("Database %s", run.Database)
	return nil
}
