package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/util/retry"
)

const (
	// DefaultMinArchiveSize rejects truncated or error-page downloads.
	DefaultMinArchiveSize int64 = 1 << 20

	maxArchiveSize int64 = 1 << 30
)

// Acquirer fetches the archive once and hands out the verified local copy.
// It is safe for concurrent use.
type Acquirer struct {
	Source  Source
	MinSize int64
	// SHA256 is the expected hex digest; empty disables the check.
	SHA256 string

	Timeout      time.Duration
	MaxAttempts  int
	InitialDelay time.Duration

	mu   sync.Mutex
	dir  string
	path string
	err  error
}

// Path returns the local archive, fetching it on first use.
func (a *Acquirer) Path(ctx context.Context, log provisioning.Logger) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.path != "" {
		return a.path, nil
	}
	if a.err != nil {
		return "", a.err
	}
	if a.dir == "" {
		dir, err := os.MkdirTemp("", "wpfleet-archive-*")
		if err != nil {
			return "", &provisioning.AcquisitionError{Source: a.Source.String(), Err: err}
		}
		a.dir = dir
	}

	var path string
	err := retry.WithExponentialBackoff(ctx, func() error {
		p, err := a.fetchOnce(ctx)
		if err != nil {
			return err
		}
		path = p
		return nil
	},
		retry.WithMaxAttempts(a.MaxAttempts),
		retry.WithInitialDelay(a.InitialDelay),
		retry.WithRetryIf(provisioning.IsRetryable),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			if log != nil {
				log.Printf("Download attempt %d failed, retrying in %v: %v", attempt, delay, err)
			}
		}),
	)
	if err != nil {
		var acqErr *provisioning.AcquisitionError
		if !errors.As(err, &acqErr) {
			err = &provisioning.AcquisitionError{Source: a.Source.String(), Err: err}
		}
		// Later sites get the same answer instead of repeating the retries.
		if ctx.Err() == nil {
			a.err = err
		}
		return "", err
	}
	a.path = path
	if log != nil {
		log.Printf("Fetched %s", a.Source)
	}
	return path, nil
}

// Close removes the local copy.
func (a *Acquirer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dir == "" {
		return nil
	}
	err := os.RemoveAll(a.dir)
	a.dir, a.path, a.err = "", "", nil
	return err
}

func (a *Acquirer) fetchOnce(ctx context.Context) (string, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	fail := func(retryable bool, err error) (string, error) {
		return "", &provisioning.AcquisitionError{Source: a.Source.String(), Retryable: retryable, Err: err}
	}

	body, _, err := a.Source.Open(ctx)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(a.dir, "download-*"+archiveSuffix(a.Source.String()))
	if err != nil {
		return fail(false, err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), io.LimitReader(body, maxArchiveSize+1))
	if err != nil {
		return fail(ctx.Err() == nil || errors.Is(ctx.Err(), context.DeadlineExceeded), fmt.Errorf("download interrupted after %d bytes: %w", n, err))
	}
	if n > maxArchiveSize {
		return fail(false, fmt.Errorf("archive exceeds %d bytes", maxArchiveSize))
	}
	minSize := a.MinSize
	if minSize <= 0 {
		minSize = DefaultMinArchiveSize
	}
	if n < minSize {
		return fail(true, fmt.Errorf("archive is %d bytes, below the minimum of %d", n, minSize))
	}
	if want := strings.ToLower(strings.TrimSpace(a.SHA256)); want != "" {
		if got := hex.EncodeToString(hash.Sum(nil)); got != want {
			return fail(false, fmt.Errorf("sha256 mismatch: got %s, want %s", got, want))
		}
	}
	if err := tmp.Close(); err != nil {
		return fail(false, err)
	}
	keep = true
	return tmp.Name(), nil
}

func archiveSuffix(ref string) string {
	ref = strings.ToLower(ref)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	switch {
	case strings.HasSuffix(ref, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(ref, ".tgz"):
		return ".tgz"
	case strings.HasSuffix(ref, ".zip"):
		return ".zip"
	default:
		return filepath.Ext(ref)
	}
}
