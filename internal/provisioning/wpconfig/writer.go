package wpconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/wpfleet/internal/provisioning"
)

// Writer writes wp-config.php into a staged codebase.
type Writer struct {
	// Secrets generates the key and salt values. Defaults to GenerateSecrets.
	Secrets func() (map[string]string, error)
}

// Write renders dir/wp-config-sample.php into dir/wp-config.php with mode
// 0644. The file is replaced atomically. Errors are *provisioning.ConfigWriteError.
func (w *Writer) Write(dir string, db provisioning.DatabaseInfo, siteURL string) (string, error) {
	target := filepath.Join(dir, FileName)
	fail := func(err error) (string, error) {
		return "", &provisioning.ConfigWriteError{Path: target, Err: err}
	}

	sample, err := os.ReadFile(filepath.Join(dir, SampleName))
	if err != nil {
		return fail(fmt.Errorf("failed to read template: %w", err))
	}

	generate := w.Secrets
	if generate == nil {
		generate = GenerateSecrets
	}
	secrets, err := generate()
	if err != nil {
		return fail(fmt.Errorf("failed to generate secrets: %w", err))
	}

	content, err := Render(string(sample), Values{Database: db, SiteURL: siteURL, Secrets: secrets})
	if err != nil {
		return fail(err)
	}

	tmp, err := os.CreateTemp(dir, ".wp-config-*.php")
	if err != nil {
		return fail(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fail(err)
	}
	return target, nil
}
