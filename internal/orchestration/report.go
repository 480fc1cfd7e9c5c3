package orchestration

import (
	"time"

	"github.com/imamik/wpfleet/internal/provisioning"
)

// Report is the outcome of a batch run.
type Report struct {
	// Results holds one entry per site, in input order.
	Results []provisioning.ProvisioningResult `json:"results"`
	// Stages holds the summary of every stage that ran.
	Stages  []provisioning.StageSummary `json:"stages"`
	Summary provisioning.BatchSummary   `json:"summary"`

	Aborted            bool   `json:"aborted"`
	AbortStage         string `json:"abortStage,omitempty"`
	Reason             string `json:"reason,omitempty"`
	PreconditionFailed bool   `json:"preconditionFailed,omitempty"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`

	criticalFailures int
}

// ExitCode returns the process exit code for the run: 1 if the batch
// aborted, a precondition failed, or any site failed a batch-critical
// stage, 0 otherwise.
func (r *Report) ExitCode() int {
	if r.Aborted || r.PreconditionFailed || r.criticalFailures > 0 {
		return 1
	}
	return 0
}

// CriticalFailures returns the number of sites that failed a batch-critical stage.
func (r *Report) CriticalFailures() int {
	return r.criticalFailures
}
