package provisioning

import (
	"errors"
	"fmt"
)

// ConnectionError means the MySQL server could not be reached or refused
// the administrative login. It is batch-level: no site can proceed.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to mysql at %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DatabaseError is a failed statement while provisioning one site's database.
type DatabaseError struct {
	Database string
	Op       string
	Err      error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s: %s: %v", e.Database, e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// DirectoryConflictError means the target directory holds content the
// staging policy does not allow replacing.
type DirectoryConflictError struct {
	Path    string
	Reason  string
	Entries []string
}

func (e *DirectoryConflictError) Error() string {
	return fmt.Sprintf("directory %s: %s", e.Path, e.Reason)
}

// AcquisitionError means the distribution archive could not be obtained.
type AcquisitionError struct {
	Source    string
	Retryable bool
	Err       error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ExtractionError means the archive could not be unpacked or moved into place.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// VerificationError means the staged tree lacks an expected marker.
type VerificationError struct {
	Path    string
	Missing []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verify %s: missing %v", e.Path, e.Missing)
}

// InstallerUnavailableError means the install tool cannot be run.
type InstallerUnavailableError struct {
	Tool string
	Err  error
}

func (e *InstallerUnavailableError) Error() string {
	return fmt.Sprintf("installer %s unavailable: %v", e.Tool, e.Err)
}

func (e *InstallerUnavailableError) Unwrap() error { return e.Err }

// InstallError is a failed install tool invocation.
type InstallError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InstallError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// ConfigWriteError means wp-config.php could not be produced.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("write config %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }

// PermissionError is a failed mode or ownership change.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permissions %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// IsBatchLevel reports whether err prevents every site from proceeding,
// regardless of which site surfaced it.
func IsBatchLevel(err error) bool {
	var connErr *ConnectionError
	var toolErr *InstallerUnavailableError
	return errors.As(err, &connErr) || errors.As(err, &toolErr)
}

// IsRetryable reports whether err is a transient acquisition failure.
func IsRetryable(err error) bool {
	var acqErr *AcquisitionError
	return errors.As(err, &acqErr) && acqErr.Retryable
}

// Kind names the category of err for reports.
func Kind(err error) string {
	var (
		connErr     *ConnectionError
		dbErr       *DatabaseError
		conflictErr *DirectoryConflictError
		acqErr      *AcquisitionError
		extractErr  *ExtractionError
		verifyErr   *VerificationError
		toolErr     *InstallerUnavailableError
		installErr  *InstallError
		writeErr    *ConfigWriteError
		permErr     *PermissionError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &dbErr):
		return "database"
	case errors.As(err, &conflictErr):
		return "directory_conflict"
	case errors.As(err, &acqErr):
		return "acquisition"
	case errors.As(err, &extractErr):
		return "extraction"
	case errors.As(err, &verifyErr):
		return "verification"
	case errors.As(err, &toolErr):
		return "installer_unavailable"
	case errors.As(err, &installErr):
		return "install"
	case errors.As(err, &writeErr):
		return "config_write"
	case errors.As(err, &permErr):
		return "permission"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	default:
		return "internal"
	}
}

// ErrCanceled marks work stopped by cancellation of the batch context.
var ErrCanceled = errors.New("canceled")
