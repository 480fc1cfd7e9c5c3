// Package retry provides exponential backoff retry logic for transient failures.
//
// The [WithExponentialBackoff] function retries an operation with configurable
// attempts, initial delay, and maximum delay. It is used for archive downloads
// and other operations that may fail transiently. A predicate set with
// [WithRetryIf] limits retries to errors the caller knows to be transient.
package retry
