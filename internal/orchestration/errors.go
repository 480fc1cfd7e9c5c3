package orchestration

import "fmt"

// AbortError reports a batch that stopped before running every stage.
type AbortError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *AbortError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("batch aborted: %s", e.Reason)
	}
	return fmt.Sprintf("batch aborted at stage %s: %s", e.Stage, e.Reason)
}

func (e *AbortError) Unwrap() error { return e.Err }
