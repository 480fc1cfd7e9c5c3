package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/imamik/wpfleet/internal/orchestration"
	"github.com/imamik/wpfleet/internal/platform/s3"
)

// ObjectPutter uploads objects to S3-compatible storage.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// Marshal encodes r as indented JSON. Unlike Render, the output includes
// the credentials handed out to each site.
func Marshal(r *orchestration.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return append(data, '\n'), nil
}

// Export writes r as JSON to dest, a local path or an s3://bucket/key URL.
// Local files are created with mode 0600. objects is only called for s3 URLs.
func Export(ctx context.Context, dest string, r *orchestration.Report, objects func() (ObjectPutter, error)) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	if strings.HasPrefix(strings.ToLower(dest), "s3://") {
		bucket, key, err := s3.ParseURL(dest)
		if err != nil {
			return err
		}
		if objects == nil {
			return fmt.Errorf("object storage is not configured for %s", dest)
		}
		client, err := objects()
		if err != nil {
			return fmt.Errorf("failed to create object storage client: %w", err)
		}
		if err := client.PutObject(ctx, bucket, key, data); err != nil {
			return fmt.Errorf("failed to upload results to %s: %w", dest, err)
		}
		return nil
	}

	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
