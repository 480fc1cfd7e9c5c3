// Package orchestration runs the provisioning pipeline for a batch of sites.
//
// The pipeline is processed column by column: one stage runs for every site
// before the next stage starts for any site. After each column the
// Orchestrator summarizes the stage and decides whether the batch may
// continue.
//
// # Workflow
//
// The Orchestrator executes the following steps:
//  1. Preflight - batch-level preconditions of every stage (database
//     connectivity, installer availability)
//  2. Columns - each stage for every live site, sequentially or with a
//     bounded worker pool
//  3. Gate - abort if a batch-critical stage failed stage-wide (or at all
//     in strict mode), or a batch-level error occurred
//  4. Finalize - release stage resources and build the Report
//
// # Usage
//
//	orch := orchestration.New(shared, observer, stages, orchestration.Options{Parallel: 4})
//	report, err := orch.Run(ctx, cfg.Sites)
//
// Sites are independent units of failure: a failing site never affects the
// result of another site, and nothing is rolled back.
package orchestration
