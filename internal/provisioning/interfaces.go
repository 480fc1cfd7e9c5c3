package provisioning

// Criticality classifies how a stage failure propagates.
type Criticality int

const (
	// BatchCritical stages fail the site, and a stage-wide failure aborts
	// the batch before any later stage starts for any site.
	BatchCritical Criticality = iota
	// SiteCritical stages fail only the affected site.
	SiteCritical
	// Advisory stages never fail a site; errors downgrade it to
	// success_with_warnings.
	Advisory
)

func (c Criticality) String() string {
	switch c {
	case BatchCritical:
		return "batch-critical"
	case SiteCritical:
		return "site-critical"
	case Advisory:
		return "advisory"
	default:
		return "unknown"
	}
}

// Stage defines one step of the per-site pipeline.
type Stage interface {
	// Name returns the human-readable name of this stage.
	Name() string

	// Criticality reports how failures of this stage propagate.
	Criticality() Criticality

	// Reaches is the state a site enters when this stage completes for it.
	Reaches() SiteState

	// ProvisionSite runs the stage for a single site. Results are recorded
	// on run; a returned error terminates the site's pipeline unless the
	// stage is Advisory.
	ProvisionSite(ctx *Context, run *SiteRun) error
}

// Preflighter is implemented by stages with a batch-level precondition,
// such as reaching the database server. Preflight runs for every stage of
// the pipeline before any site work starts; a failure aborts the batch.
type Preflighter interface {
	Preflight(ctx *Context) error
}

// Finisher is implemented by stages that hold a resource for the duration
// of their column. Finish runs once after the stage has completed for every
// site, or when the batch aborts before the stage runs.
type Finisher interface {
	Finish(ctx *Context) error
}

// Serializer is implemented by stages whose sites must run one at a time
// even when the batch runs with parallelism, such as stages sharing a
// single connection.
type Serializer interface {
	Serial() bool
}
