package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/util/async"
)

// Options tune a batch run.
type Options struct {
	// Parallel is the number of sites processed concurrently within a
	// stage. Values below 2 run sites one at a time in input order.
	Parallel int
	// Strict aborts on any failure in a batch-critical stage instead of
	// only when every attempted site failed it.
	Strict bool
	// Metrics records stage and batch outcomes. Optional.
	Metrics *provisioning.Metrics
	// Timeouts override the environment defaults. Optional.
	Timeouts *config.Timeouts
}

// Orchestrator runs a fixed list of stages over a batch of sites.
type Orchestrator struct {
	shared   config.SharedCredentials
	observer provisioning.Observer
	stages   []provisioning.Stage
	opts     Options
}

// New creates an Orchestrator. observer may be nil.
func New(shared config.SharedCredentials, observer provisioning.Observer, stages []provisioning.Stage, opts Options) *Orchestrator {
	if observer == nil {
		observer = provisioning.NewDiscardObserver()
	}
	return &Orchestrator{shared: shared, observer: observer, stages: stages, opts: opts}
}

// batch is the mutable state of one Run.
type batch struct {
	runs []*provisioning.SiteRun
	// done counts the stages each site has been through.
	done     []int
	finished map[int]bool
	report   *Report
}

// Run provisions sites. The returned Report is never nil and lists every
// site in input order. A non-nil error is an *AbortError and means later
// stages were not attempted.
func (o *Orchestrator) Run(ctx context.Context, sites []config.SiteDescriptor) (*Report, error) {
	pctx := provisioning.NewContext(ctx, o.shared, o.observer)
	if o.opts.Timeouts != nil {
		pctx.Timeouts = o.opts.Timeouts
	}

	b := &batch{
		runs:     make([]*provisioning.SiteRun, len(sites)),
		done:     make([]int, len(sites)),
		finished: make(map[int]bool),
		report:   &Report{StartedAt: time.Now()},
	}
	for i, site := range sites {
		b.runs[i] = provisioning.NewSiteRun(site)
	}

	abortErr := o.execute(pctx, b)
	if abortErr != nil {
		b.report.Aborted = true
		b.report.AbortStage = abortErr.Stage
		b.report.Reason = abortErr.Reason
		provisioning.LogBatchAborted(o.observer, abortErr.Stage, abortErr)
	}
	o.finishAll(pctx, b)

	b.report.Results = make([]provisioning.ProvisioningResult, len(b.runs))
	for i, run := range b.runs {
		b.report.Results[i] = run.Finalize(b.done[i] == len(o.stages))
		if res := b.report.Results[i]; res.Status == provisioning.StatusFailed && o.isBatchCritical(res.FailedStage) {
			b.report.criticalFailures++
		}
	}
	b.report.Summary = provisioning.Summarize(b.report.Results)
	b.report.Duration = time.Since(b.report.StartedAt)
	o.opts.Metrics.RecordBatch(b.report.Results, b.report.Aborted)

	if abortErr != nil {
		return b.report, abortErr
	}
	return b.report, nil
}

// execute runs preflight and every column, returning the reason to abort.
func (o *Orchestrator) execute(pctx *provisioning.Context, b *batch) *AbortError {
	for _, stage := range o.stages {
		p, ok := stage.(provisioning.Preflighter)
		if !ok {
			continue
		}
		o.observer.Debugf("Preflight: %s", stage.Name())
		if err := p.Preflight(pctx); err != nil {
			b.report.PreconditionFailed = true
			return &AbortError{Stage: stage.Name(), Reason: "precondition failed: " + err.Error(), Err: err}
		}
	}

	for idx, stage := range o.stages {
		if err := pctx.Err(); err != nil {
			return &AbortError{Stage: stage.Name(), Reason: "cancelled", Err: err}
		}

		summary, batchErr := o.runColumn(pctx, stage, b)
		b.report.Stages = append(b.report.Stages, summary)
		o.finish(pctx, b, idx)

		if batchErr != nil {
			provisioning.LogStageFailed(o.observer, stage.Name(), batchErr)
			return &AbortError{Stage: stage.Name(), Reason: batchErr.Error(), Err: batchErr}
		}
		if err := pctx.Err(); err != nil {
			return &AbortError{Stage: stage.Name(), Reason: "cancelled", Err: err}
		}
		if stage.Criticality() == provisioning.BatchCritical && o.gateTripped(summary) {
			err := fmt.Errorf("%d of %d attempted site(s) failed", summary.Failed, summary.Total-summary.Skipped)
			provisioning.LogStageFailed(o.observer, stage.Name(), err)
			return &AbortError{Stage: stage.Name(), Reason: err.Error(), Err: err}
		}
	}
	return nil
}

func (o *Orchestrator) gateTripped(summary provisioning.StageSummary) bool {
	if o.opts.Strict {
		return summary.Failed > 0
	}
	return summary.AllFailed()
}

// runColumn runs stage for every live site. It returns the stage summary
// and, if a site hit a batch-level error, that error.
func (o *Orchestrator) runColumn(pctx *provisioning.Context, stage provisioning.Stage, b *batch) (provisioning.StageSummary, error) {
	name := stage.Name()
	started := time.Now()

	var live []int
	for i, run := range b.runs {
		if !run.Failed() {
			live = append(live, i)
		}
	}
	provisioning.LogStageStart(o.observer, name, len(live))

	limit := o.opts.Parallel
	if s, ok := stage.(provisioning.Serializer); ok && s.Serial() {
		limit = 1
	}

	attempted := make([]bool, len(b.runs))
	var (
		mu       sync.Mutex
		progress int
	)
	err := async.ForEach(pctx, len(live), limit, func(ctx context.Context, n int) error {
		i := live[n]
		run := b.runs[i]
		sctx := pctx.ForSite(run.Site.SiteName)
		sctx.Context = ctx

		mu.Lock()
		attempted[i] = true
		mu.Unlock()

		err := o.runSite(sctx, stage, run)

		mu.Lock()
		b.done[i]++
		progress++
		o.observer.Progress(name, progress, len(live))
		mu.Unlock()

		if err != nil && stage.Criticality() != provisioning.Advisory && provisioning.IsBatchLevel(err) {
			return err
		}
		return nil
	}, func(n int) {
		provisioning.LogSiteSkipped(o.observer, name, b.runs[live[n]].Site.SiteName, "batch stopped")
	})

	results := make([]provisioning.ProvisioningResult, len(b.runs))
	for i, run := range b.runs {
		if attempted[i] {
			results[i] = run.Snapshot()
		} else {
			results[i] = run.Finalize(false)
		}
	}
	summary := provisioning.SummarizeStage(name, results)
	duration := time.Since(started)
	provisioning.LogStageComplete(o.observer, summary, duration)
	o.opts.Metrics.RecordStage(summary, duration)

	if err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}
	return summary, nil
}

// runSite runs one stage for one site and records the outcome on run.
// A panic in the stage is treated like a returned error.
func (o *Orchestrator) runSite(ctx *provisioning.Context, stage provisioning.Stage, run *provisioning.SiteRun) error {
	name := stage.Name()
	site := run.Site.SiteName
	ctx.Observer.Event(provisioning.Event{Type: provisioning.EventSiteStarted, Stage: name, Site: site, Message: "started"})

	err := provisionSite(ctx, stage, run)
	if err != nil && ctx.Err() != nil && !errors.Is(err, provisioning.ErrCanceled) {
		err = fmt.Errorf("%w: %w", provisioning.ErrCanceled, err)
	}
	switch {
	case err == nil:
		run.Advance(stage.Reaches())
		ctx.Observer.Event(provisioning.Event{Type: provisioning.EventSiteCompleted, Stage: name, Site: site, Message: "completed"})
	case stage.Criticality() == provisioning.Advisory:
		run.Warn(name, err)
		run.Advance(stage.Reaches())
		provisioning.LogSiteWarning(ctx.Observer, name, site, err)
		err = nil
	default:
		run.Fail(name, err)
		provisioning.LogSiteFailed(ctx.Observer, name, site, err)
	}
	return err
}

func provisionSite(ctx *provisioning.Context, stage provisioning.Stage, run *provisioning.SiteRun) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return stage.ProvisionSite(ctx, run)
}

// finish releases the resources of stage idx once.
func (o *Orchestrator) finish(pctx *provisioning.Context, b *batch, idx int) {
	if b.finished[idx] {
		return
	}
	b.finished[idx] = true
	f, ok := o.stages[idx].(provisioning.Finisher)
	if !ok {
		return
	}
	// Resources are released even if the run was cancelled.
	fctx := *pctx
	fctx.Context = context.WithoutCancel(pctx.Context)
	if err := f.Finish(&fctx); err != nil {
		o.observer.Printf("Warning: failed to release %s resources: %v", o.stages[idx].Name(), err)
	}
}

// finishAll releases the resources of stages that never ran.
func (o *Orchestrator) finishAll(pctx *provisioning.Context, b *batch) {
	for idx := range o.stages {
		o.finish(pctx, b, idx)
	}
}

func (o *Orchestrator) isBatchCritical(stage string) bool {
	for _, s := range o.stages {
		if s.Name() == stage {
			return s.Criticality() == provisioning.BatchCritical
		}
	}
	return false
}
