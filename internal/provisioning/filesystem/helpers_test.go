package filesystem

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// codebaseFiles is a minimal WordPress release layout.
func codebaseFiles(version string) map[string]string {
	return map[string]string{
		"wp-load.php":             "<?php\n",
		"wp-settings.php":         "<?php\n",
		"wp-config-sample.php":    "<?php\ndefine( 'DB_NAME', 'database_name_here' );\n",
		"wp-admin/index.php":      "<?php\n",
		"wp-includes/version.php": "<?php\n$wp_version = '" + version + "';\n",
		"index.php":               "<?php\n",
	}
}

func sortedNames(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildTarGz(t *testing.T, prefix string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if prefix != "" {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: prefix + "/", Typeflag: tar.TypeDir, Mode: 0o755}))
	}
	for _, name := range sortedNames(files) {
		full := name
		if prefix != "" {
			full = prefix + "/" + name
		}
		body := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: full, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, prefix string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedNames(files) {
		w, err := zw.Create(prefix + "/" + name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func localAcquirer(path string) *Acquirer {
	return &Acquirer{Source: &FileSource{Path: path}, MinSize: 1, MaxAttempts: 1}
}

func newStager(t *testing.T, policy CleanupPolicy, archive []byte) *Stager {
	t.Helper()
	acq := localAcquirer(writeArchive(t, "latest.tar.gz", archive))
	t.Cleanup(func() { _ = acq.Close() })
	return &Stager{Policy: policy, Archive: acq}
}

type fakeConfirmer struct {
	answer  bool
	asked   []string
	entries []string
}

func (f *fakeConfirmer) ConfirmCleanup(_ context.Context, dir string, entries []string) (bool, error) {
	f.asked = append(f.asked, dir)
	f.entries = entries
	return f.answer, nil
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
