package provisioning

import "fmt"

// Status is the final outcome of a site.
type Status string

const (
	StatusSuccess             Status = "success"
	StatusSuccessWithWarnings Status = "success_with_warnings"
	StatusFailed              Status = "failed"
	StatusSkipped             Status = "skipped"
)

// DatabaseInfo describes the database provisioned for a site.
type DatabaseInfo struct {
	Name     string `json:"databaseName"`
	User     string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

// HostWithPort returns the DB_HOST value WordPress expects.
// The port is omitted for the MySQL default.
func (d DatabaseInfo) HostWithPort() string {
	if d.Port == 0 || d.Port == 3306 {
		return d.Host
	}
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// String never includes the password.
func (d DatabaseInfo) String() string {
	return fmt.Sprintf("%s@%s/%s", d.User, d.HostWithPort(), d.Name)
}

// SiteError attributes an error to a stage.
type SiteError struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`

	err error
}

// NewSiteError wraps err with the stage it happened in.
func NewSiteError(stage string, err error) SiteError {
	return SiteError{Stage: stage, Kind: Kind(err), Message: err.Error(), err: err}
}

// Unwrap returns the original error, if still available.
func (e SiteError) Unwrap() error { return e.err }

func (e SiteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// ProvisioningResult is the outcome of one site for one pipeline run.
// It is a snapshot: later changes to the SiteRun it came from do not affect it.
type ProvisioningResult struct {
	SiteName            string        `json:"siteName"`
	Status              Status        `json:"status"`
	State               SiteState     `json:"state"`
	FailedStage         string        `json:"failedStage,omitempty"`
	Database            *DatabaseInfo `json:"databaseInfo,omitempty"`
	InstalledPath       string        `json:"installedPath,omitempty"`
	SiteURL             string        `json:"siteUrl,omitempty"`
	WordPressVersion    string        `json:"wordpressVersion,omitempty"`
	ApplicationPassword string        `json:"applicationPassword,omitempty"`
	Errors              []SiteError   `json:"errors,omitempty"`
	Warnings            []SiteError   `json:"warnings,omitempty"`
}

// Succeeded reports whether the site ended in a success status.
func (r ProvisioningResult) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusSuccessWithWarnings
}
