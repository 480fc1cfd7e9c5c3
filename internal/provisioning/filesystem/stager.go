package filesystem

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/imamik/wpfleet/internal/provisioning"
)

const stagingPrefix = ".wpfleet-staging-"

// Staged is the outcome of staging one directory.
type Staged struct {
	Path    string
	Version string

	// Skipped lists entries cleanup could not remove.
	Skipped []string
}

// Stager prepares directories and materializes the codebase into them.
type Stager struct {
	Policy         CleanupPolicy
	Confirmer      Confirmer
	Archive        *Acquirer
	ExtractTimeout time.Duration
}

// Stage prepares dir and installs the codebase into it.
func (s *Stager) Stage(ctx context.Context, dir string, log provisioning.Logger) (*Staged, error) {
	if log == nil {
		log = nopLogger{}
	}

	in, err := Inspect(dir)
	if err != nil {
		return nil, err
	}
	if in.Created {
		log.Printf("Created %s", in.Path)
	}
	res := &Staged{Path: in.Path}
	if !in.Empty() {
		proceed, err := s.allowCleanup(ctx, in)
		if err != nil {
			return nil, err
		}
		if !proceed {
			return nil, conflict(in, "cleanup declined")
		}
		skipped, err := Clean(in.Path)
		if err != nil {
			return nil, err
		}
		for _, name := range skipped {
			log.Printf("Skipped protected entry %s", name)
		}
		res.Skipped = skipped
	}

	if stale, err := removeStale(in.Path); err != nil {
		return nil, err
	} else if len(stale) > 0 {
		log.Printf("Removed %d leftover staging entries", len(stale))
	}

	if err := ProbeWritable(in.Path); err != nil {
		return nil, err
	}

	archive, err := s.Archive.Path(ctx, log)
	if err != nil {
		return nil, err
	}
	if err := s.unpack(ctx, archive, in.Path); err != nil {
		return nil, err
	}

	version, err := Verify(in.Path)
	if err != nil {
		return nil, err
	}
	res.Version = version
	return res, nil
}

// allowCleanup applies the policy to non-empty content. Content that is not
// a recognizable installation is never removed without asking.
func (s *Stager) allowCleanup(ctx context.Context, in *Inspection) (bool, error) {
	switch s.Policy {
	case PolicyAuto:
		if !in.PriorInstall() {
			return false, conflict(in, "directory contains content that is not a WordPress installation")
		}
		return true, nil
	case PolicyConfirm:
		if s.Confirmer == nil {
			return false, conflict(in, "confirmation required but no confirmer is available")
		}
		ok, err := s.Confirmer.ConfirmCleanup(ctx, in.Path, in.Visible)
		if err != nil {
			return false, fmt.Errorf("confirmation failed: %w", err)
		}
		return ok, nil
	default:
		if in.PriorInstall() {
			return false, conflict(in, "directory contains an existing WordPress installation")
		}
		return false, conflict(in, "directory is not empty")
	}
}

// unpack extracts into a hidden staging directory inside target and moves
// the codebase root into place. The staging directory is always removed.
func (s *Stager) unpack(ctx context.Context, archive, target string) error {
	if s.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ExtractTimeout)
		defer cancel()
	}

	staging, err := os.MkdirTemp(target, stagingPrefix+"*")
	if err != nil {
		return &provisioning.ExtractionError{Archive: archive, Err: err}
	}
	defer os.RemoveAll(staging)

	if err := Extract(ctx, archive, staging); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("extraction timed out after %v: %w", s.ExtractTimeout, err)
		}
		return &provisioning.ExtractionError{Archive: archive, Err: err}
	}
	root, err := codebaseRoot(staging)
	if err != nil {
		return &provisioning.ExtractionError{Archive: archive, Err: err}
	}
	if err := promote(root, target); err != nil {
		return &provisioning.ExtractionError{Archive: archive, Err: err}
	}
	return nil
}

func conflict(in *Inspection, reason string) error {
	return &provisioning.DirectoryConflictError{Path: in.Path, Reason: reason, Entries: in.Visible}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}
