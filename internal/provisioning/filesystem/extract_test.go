package filesystem

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_TarGz(t *testing.T) {
	t.Parallel()
	archive := writeArchive(t, "latest.tar.gz", buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))
	dest := t.TempDir()

	require.NoError(t, Extract(context.Background(), archive, dest))

	assert.FileExists(t, filepath.Join(dest, "wordpress", "wp-includes", "version.php"))
}

func TestExtract_ZipDetectedByContent(t *testing.T) {
	t.Parallel()
	archive := writeArchive(t, "download", buildZip(t, "wordpress", codebaseFiles("6.5.2")))
	dest := t.TempDir()

	require.NoError(t, Extract(context.Background(), archive, dest))

	assert.FileExists(t, filepath.Join(dest, "wordpress", "wp-load.php"))
}

func TestExtract_RejectsTraversal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../escape.php", Typeflag: tar.TypeReg, Mode: 0o644, Size: 1}))
	_, _ = tw.Write([]byte("x"))
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")
	require.NoError(t, os.Mkdir(dest, 0o755))

	err := Extract(context.Background(), writeArchive(t, "evil.tar.gz", buf.Bytes()), dest)

	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(parent, "escape.php"))
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	archive := writeArchive(t, "latest.tar.gz", []byte("<html>not found</html>"))

	err := Extract(context.Background(), archive, t.TempDir())
	assert.ErrorContains(t, err, "unsupported archive format")
}

func TestExtract_StopsWhenContextDone(t *testing.T) {
	t.Parallel()
	archive := writeArchive(t, "latest.tar.gz", buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Extract(ctx, archive, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArchiveFileMode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, os.FileMode(0o644), archiveFileMode(0o666))
	assert.Equal(t, os.FileMode(0o755), archiveFileMode(0o777|os.ModeSetuid))
	assert.Equal(t, os.FileMode(0o600), archiveFileMode(0o000))
}

func TestCodebaseRoot(t *testing.T) {
	t.Parallel()
	wrapped := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(wrapped, "wordpress"), 0o755))
	root, err := codebaseRoot(wrapped)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wrapped, "wordpress"), root)

	flat := t.TempDir()
	writeTree(t, flat, map[string]string{"wp-load.php": "", "wp-admin/index.php": ""})
	root, err = codebaseRoot(flat)
	require.NoError(t, err)
	assert.Equal(t, flat, root)
}

func TestVerify(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, dir, codebaseFiles("6.5.2"))

	version, err := Verify(dir)
	require.NoError(t, err)
	assert.Equal(t, "6.5.2", version)

	require.NoError(t, os.Remove(filepath.Join(dir, "wp-settings.php")))
	_, err = Verify(dir)
	assert.ErrorContains(t, err, "wp-settings.php")
}

func TestPromote_FailureRemovesMovedEntries(t *testing.T) {
	t.Parallel()
	src := t.TempDir()
	dst := t.TempDir()
	for _, name := range []string{"a.php", "b.php", "c.php"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte("<?php\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dst, "keep.txt"), []byte("x"), 0o644))

	failing := func(from, to string) error {
		if filepath.Base(from) == "c.php" {
			return errors.New("cross-device link")
		}
		return os.Rename(from, to)
	}

	err := promoteWith(src, dst, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.php")

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())
}
