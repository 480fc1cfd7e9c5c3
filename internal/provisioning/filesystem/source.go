package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/imamik/wpfleet/internal/platform/s3"
	"github.com/imamik/wpfleet/internal/provisioning"
)

// DefaultArchiveURL is the upstream WordPress release archive.
const DefaultArchiveURL = "https://wordpress.org/latest.tar.gz"

// Source provides the codebase archive.
type Source interface {
	// String identifies the source in logs and errors.
	String() string

	// Open starts reading the archive. size is -1 if unknown.
	// Errors are *provisioning.AcquisitionError.
	Open(ctx context.Context) (body io.ReadCloser, size int64, err error)
}

// HTTPSource downloads the archive over HTTP(S).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) String() string { return s.URL }

// Open implements Source.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, 0, &provisioning.AcquisitionError{Source: s.URL, Err: err}
	}
	req.Header.Set("User-Agent", "wpfleet")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &provisioning.AcquisitionError{Source: s.URL, Retryable: retryableNetErr(ctx, err), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, &provisioning.AcquisitionError{
			Source:    s.URL,
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return resp.Body, resp.ContentLength, nil
}

// retryableNetErr treats transport failures as transient unless the
// caller gave up.
func retryableNetErr(ctx context.Context, err error) bool {
	return ctx.Err() == nil && !errors.Is(err, context.Canceled)
}

// FileSource reads the archive from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

// Open implements Source.
func (s *FileSource) Open(context.Context) (io.ReadCloser, int64, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, 0, &provisioning.AcquisitionError{Source: s.Path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, &provisioning.AcquisitionError{Source: s.Path, Err: err}
	}
	return f, info.Size(), nil
}

// ObjectOpener streams objects from S3-compatible storage.
type ObjectOpener interface {
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
}

// S3Source reads the archive from object storage.
type S3Source struct {
	Bucket string
	Key    string
	Client ObjectOpener
}

func (s *S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// Open implements Source.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	body, size, err := s.Client.OpenObject(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, 0, &provisioning.AcquisitionError{
			Source:    s.String(),
			Retryable: ctx.Err() == nil && !s3.IsPermanent(err),
			Err:       err,
		}
	}
	return body, size, nil
}

// ParseSource resolves an archive reference: http(s) URL, file:// URL,
// s3://bucket/key or a local path. objects is only called for s3 references.
func ParseSource(ref string, objects func() (ObjectOpener, error)) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = DefaultArchiveURL
	}
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return &HTTPSource{URL: ref}, nil
	case strings.HasPrefix(lower, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid archive URL %q: %w", ref, err)
		}
		return &FileSource{Path: u.Path}, nil
	case strings.HasPrefix(lower, "s3://"):
		bucket, key, err := s3.ParseURL(ref)
		if err != nil {
			return nil, err
		}
		if objects == nil {
			return nil, fmt.Errorf("object storage is not configured for %s", ref)
		}
		client, err := objects()
		if err != nil {
			return nil, fmt.Errorf("failed to create object storage client: %w", err)
		}
		return &S3Source{Bucket: bucket, Key: key, Client: client}, nil
	case strings.Contains(ref, "://"):
		return nil, fmt.Errorf("unsupported archive source %q", ref)
	default:
		return &FileSource{Path: ref}, nil
	}
}
