package provisioning

import "github.com/imamik/wpfleet/internal/config"

// SiteRun carries one site through the pipeline. Stages record their
// outputs on it; the orchestrator turns it into a ProvisioningResult.
// A SiteRun is only ever touched by the goroutine processing its site.
type SiteRun struct {
	Site config.SiteDescriptor

	Database            *DatabaseInfo
	InstalledPath       string
	SiteURL             string
	WordPressVersion    string
	ApplicationPassword string

	state       SiteState
	failedStage string
	errors      []SiteError
	warnings    []SiteError
}

// NewSiteRun starts a site in StatePending.
func NewSiteRun(site config.SiteDescriptor) *SiteRun {
	return &SiteRun{Site: site, state: StatePending}
}

// State returns the current pipeline state.
func (r *SiteRun) State() SiteState { return r.state }

// Failed reports whether the site has left the happy path.
func (r *SiteRun) Failed() bool { return r.state == StateFailed }

// Advance moves the site forward. It never leaves StateFailed and never moves backwards.
func (r *SiteRun) Advance(state SiteState) {
	if r.state == StateFailed || state == StateFailed || state <= r.state {
		return
	}
	r.state = state
}

// Fail terminates the site's pipeline at stage.
func (r *SiteRun) Fail(stage string, err error) {
	if r.state == StateFailed {
		return
	}
	r.state = StateFailed
	r.failedStage = stage
	r.errors = append(r.errors, NewSiteError(stage, err))
}

// Warn records a non-fatal problem; the site stays on the happy path.
func (r *SiteRun) Warn(stage string, err error) {
	r.warnings = append(r.warnings, NewSiteError(stage, err))
}

// Warnings returns the warnings recorded so far.
func (r *SiteRun) Warnings() []SiteError {
	return append([]SiteError(nil), r.warnings...)
}

// Snapshot returns the site's result as of now. A site that has neither
// failed nor finished is reported as successful so far.
func (r *SiteRun) Snapshot() ProvisioningResult {
	res := ProvisioningResult{
		SiteName:            r.Site.SiteName,
		State:               r.state,
		FailedStage:         r.failedStage,
		InstalledPath:       r.InstalledPath,
		SiteURL:             r.SiteURL,
		WordPressVersion:    r.WordPressVersion,
		ApplicationPassword: r.ApplicationPassword,
		Errors:              append([]SiteError(nil), r.errors...),
		Warnings:            append([]SiteError(nil), r.warnings...),
	}
	if r.Database != nil {
		db := *r.Database
		res.Database = &db
	}

	switch {
	case r.state == StateFailed:
		res.Status = StatusFailed
	case len(r.warnings) > 0:
		res.Status = StatusSuccessWithWarnings
	default:
		res.Status = StatusSuccess
	}
	return res
}

// Finalize returns the final result. complete reports whether every stage
// of the pipeline ran for this site; a site that did not fail but did not
// complete (batch abort, cancellation) is skipped.
func (r *SiteRun) Finalize(complete bool) ProvisioningResult {
	res := r.Snapshot()
	if res.Status != StatusFailed && !complete {
		res.Status = StatusSkipped
	}
	return res
}
