// Package execx runs external processes behind a narrow interface so
// callers can substitute a fake in tests.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const redacted = "********"

// Command is one process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Secrets are masked in String and in error messages.
	Secrets []string
}

// String renders the command line with secrets masked.
func (c Command) String() string {
	return c.Redact(strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " ")))
}

// Redact masks every secret in s.
func (c Command) Redact(s string) string {
	for _, secret := range c.Secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, redacted)
		}
	}
	return s
}

// Result is the captured outcome of a process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts process execution.
type Runner interface {
	// Run executes cmd. A non-zero exit is reported as an *ExitError
	// together with the captured Result.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExitError reports a process that ran but did not succeed.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// ExecRunner executes commands using os/exec.
type ExecRunner struct {
	DryRun bool
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if r.DryRun {
		return Result{Stdout: "dry-run: " + c.String()}, nil
	}
	// Command name and args come from wpfleet-owned call sites.
	//nolint:gosec // G204
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: c.Redact(strings.TrimSpace(stderr.String())),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return res, fmt.Errorf("%s: %w", c.String(), ctx.Err())
		}
		return res, &ExitError{Command: c.String(), ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	res.ExitCode = -1
	return res, fmt.Errorf("%s: %w", c.String(), err)
}

// LoggingRunner logs every command line, its duration and its outcome.
type LoggingRunner struct {
	Delegate Runner
	Logf     func(format string, args ...interface{})
}

// Run implements Runner.
func (r LoggingRunner) Run(ctx context.Context, c Command) (Result, error) {
	line := c.String()
	startedAt := time.Now()
	r.logf("[command] start: %s", line)
	res, err := r.Delegate.Run(ctx, c)
	duration := time.Since(startedAt).Round(time.Millisecond)
	if err != nil {
		r.logf("[command] failed after %s: %s: %v", duration, line, err)
		return res, err
	}
	r.logf("[command] ok after %s: %s", duration, line)
	return res, nil
}

func (r LoggingRunner) logf(format string, args ...interface{}) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}
