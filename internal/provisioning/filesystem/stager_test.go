package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/wpfleet/internal/provisioning"
)

func priorInstall() map[string]string {
	return map[string]string{
		"wp-config.php":            "<?php // custom\n",
		"wp-load.php":              "<?php\n",
		"wp-includes/version.php":  "<?php\n$wp_version = '5.0';\n",
		"wp-content/uploads/a.jpg": "jpeg",
	}
}

func assertNoStaging(t *testing.T, dir string) {
	t.Helper()
	for _, name := range listDir(t, dir) {
		assert.False(t, strings.HasPrefix(name, stagingPrefix), "staging directory %s left behind", name)
	}
}

func TestStager_EmptyDirectory(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "acme.example.com")
	stager := newStager(t, PolicyDeny, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))

	staged, err := stager.Stage(context.Background(), dir, nil)

	require.NoError(t, err)
	assert.Equal(t, dir, staged.Path)
	assert.Equal(t, "6.5.2", staged.Version)
	assert.FileExists(t, filepath.Join(dir, "wp-config-sample.php"))
	assert.NoDirExists(t, filepath.Join(dir, "wordpress"))
	assertNoStaging(t, dir)
}

func TestStager_HiddenEntriesDoNotBlock(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{".well-known/acme": "token"})
	stager := newStager(t, PolicyDeny, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))

	_, err := stager.Stage(context.Background(), dir, nil)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".well-known", "acme"))
}

func TestStager_DenyLeavesPriorInstallUntouched(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, dir, priorInstall())
	stale := filepath.Join(dir, stagingPrefix+"old")
	require.NoError(t, os.Mkdir(stale, 0o755))
	stager := newStager(t, PolicyDeny, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))

	_, err := stager.Stage(context.Background(), dir, nil)

	var conflictErr *provisioning.DirectoryConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, dir, conflictErr.Path)
	assert.Contains(t, conflictErr.Entries, "wp-config.php")
	for name, body := range priorInstall() {
		data, readErr := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, readErr)
		assert.Equal(t, body, string(data))
	}
	assert.DirExists(t, stale)
}

func TestStager_AutoReplacesPriorInstall(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, dir, priorInstall())
	stager := newStager(t, PolicyAuto, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))

	staged, err := stager.Stage(context.Background(), dir, nil)

	require.NoError(t, err)
	assert.Equal(t, "6.5.2", staged.Version)
	assert.NoFileExists(t, filepath.Join(dir, "wp-config.php"))
	assert.NoDirExists(t, filepath.Join(dir, "wp-content"))
}

func TestStager_AutoRefusesUnknownContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"notes.txt": "keep me"})
	stager := newStager(t, PolicyAuto, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))

	_, err := stager.Stage(context.Background(), dir, nil)

	var conflictErr *provisioning.DirectoryConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestStager_Confirm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		answer bool
	}{
		{name: "accepted", answer: true},
		{name: "declined", answer: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeTree(t, dir, map[string]string{"index.html": "hello"})
			confirmer := &fakeConfirmer{answer: tt.answer}
			stager := newStager(t, PolicyConfirm, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))
			stager.Confirmer = confirmer

			_, err := stager.Stage(context.Background(), dir, nil)

			assert.Equal(t, []string{dir}, confirmer.asked)
			assert.Equal(t, []string{"index.html"}, confirmer.entries)
			if tt.answer {
				require.NoError(t, err)
				assert.NoFileExists(t, filepath.Join(dir, "index.html"))
				return
			}
			var conflictErr *provisioning.DirectoryConflictError
			require.ErrorAs(t, err, &conflictErr)
			assert.Equal(t, "cleanup declined", conflictErr.Reason)
			assert.FileExists(t, filepath.Join(dir, "index.html"))
		})
	}
}

func TestStager_ConfirmWithoutConfirmer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "hello"})
	stager := newStager(t, PolicyConfirm, buildTarGz(t, "wordpress", codebaseFiles("6.5.2")))

	_, err := stager.Stage(context.Background(), dir, nil)

	var conflictErr *provisioning.DirectoryConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestStager_ExtractionFailureCleansUp(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	stager := newStager(t, PolicyDeny, []byte("<html>503 Service Unavailable</html>"))

	_, err := stager.Stage(context.Background(), dir, nil)

	var extractErr *provisioning.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Empty(t, listDir(t, dir))
}

func TestStager_VerificationFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := codebaseFiles("6.5.2")
	delete(files, "wp-settings.php")
	stager := newStager(t, PolicyDeny, buildTarGz(t, "wordpress", files))

	_, err := stager.Stage(context.Background(), dir, nil)

	var verifyErr *provisioning.VerificationError
	require.ErrorAs(t, err, &verifyErr)
	assert.Equal(t, []string{"wp-settings.php"}, verifyErr.Missing)
	assertNoStaging(t, dir)
}

func TestStager_ArchiveFailureIsShared(t *testing.T) {
	t.Parallel()
	acq := localAcquirer(filepath.Join(t.TempDir(), "missing.tar.gz"))
	t.Cleanup(func() { _ = acq.Close() })
	stager := &Stager{Policy: PolicyDeny, Archive: acq}

	_, first := stager.Stage(context.Background(), t.TempDir(), nil)
	_, second := stager.Stage(context.Background(), t.TempDir(), nil)

	var acqErr *provisioning.AcquisitionError
	require.ErrorAs(t, first, &acqErr)
	assert.Equal(t, first, second)
}
