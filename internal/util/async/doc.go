// Package async provides utilities for bounded parallel execution.
//
// It is used by the orchestrator to run one stage across many sites with a
// configurable concurrency limit.
package async
