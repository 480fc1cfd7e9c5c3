package provisioning

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ConnectionError{Address: "localhost:3306", Err: errors.New("refused")}, "connection"},
		{&DatabaseError{Database: "acme_db", Op: "create database", Err: errors.New("x")}, "database"},
		{&DirectoryConflictError{Path: "/srv"}, "directory_conflict"},
		{&AcquisitionError{Source: "https://wordpress.org/latest.tar.gz"}, "acquisition"},
		{&ExtractionError{Archive: "latest.tar.gz"}, "extraction"},
		{&VerificationError{Path: "/srv", Missing: []string{"wp-load.php"}}, "verification"},
		{&InstallerUnavailableError{Tool: "wp"}, "installer_unavailable"},
		{&InstallError{Command: "wp core install"}, "install"},
		{&ConfigWriteError{Path: "wp-config.php"}, "config_write"},
		{&PermissionError{Path: "wp-content"}, "permission"},
		{fmt.Errorf("stage: %w", ErrCanceled), "canceled"},
		{errors.New("plain"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), "%v", tt.err)
	}
}

func TestKind_Wrapped(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("site acme: %w", &DatabaseError{Database: "acme_db", Op: "grant", Err: errors.New("denied")})
	assert.Equal(t, "database", Kind(err))
}

func TestIsBatchLevel(t *testing.T) {
	t.Parallel()
	assert.True(t, IsBatchLevel(&ConnectionError{Err: errors.New("x")}))
	assert.True(t, IsBatchLevel(fmt.Errorf("preflight: %w", &InstallerUnavailableError{Tool: "wp"})))
	assert.False(t, IsBatchLevel(&DatabaseError{Err: errors.New("x")}))
	assert.False(t, IsBatchLevel(&InstallError{}))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, IsRetryable(&AcquisitionError{Retryable: true, Err: errors.New("503")}))
	assert.False(t, IsRetryable(&AcquisitionError{Retryable: false, Err: errors.New("404")}))
	assert.False(t, IsRetryable(&ExtractionError{Err: errors.New("x")}))
}

func TestInstallError_Message(t *testing.T) {
	t.Parallel()
	withStderr := &InstallError{Command: "wp core install", ExitCode: 1, Stderr: "Error: Database connection"}
	assert.Equal(t, "wp core install exited 1: Error: Database connection", withStderr.Error())

	noStderr := &InstallError{Command: "wp core install", ExitCode: -1, Err: errors.New("signal: killed")}
	assert.Equal(t, "wp core install: signal: killed", noStderr.Error())
}
