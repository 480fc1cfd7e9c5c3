// Package provisioning provides shared types and interfaces for the site
// provisioning pipeline.
//
// # Subpackages
//
//   - database/: per-site MySQL database and user (clean-slate or use-existing)
//   - filesystem/: directory preparation and WordPress codebase acquisition
//   - wpconfig/: wp-config.php rendering, secrets and site URL inference
//   - permissions/: file mode policy and configuration tightening
//   - installer/: delegated WordPress installation through WP-CLI
//
// # Core Types
//
// Stage is one column of the batch: it runs once per site and declares how
// critical its failures are. SiteRun threads a single site's outcome through
// the stages and produces an immutable ProvisioningResult. StageSummary
// aggregates results so the orchestrator can decide whether to continue.
// Context carries shared credentials, timeouts and the Observer.
package provisioning
