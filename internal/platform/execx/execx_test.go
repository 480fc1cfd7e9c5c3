package execx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()
	c := Command{Name: "wp", Args: []string{"core", "install", "--admin_password=hunter2"}, Secrets: []string{"hunter2", ""}}

	assert.Equal(t, "wp core install --admin_password=********", c.String())
	assert.Equal(t, "bad password ********", c.Redact("bad password hunter2"))
}

func TestExecRunner_Success(t *testing.T) {
	t.Parallel()
	requireShell(t)
	dir := t.TempDir()

	res, err := ExecRunner{}.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd; echo warn >&2"}, Dir: dir})

	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
	assert.Equal(t, "warn", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecRunner_ExitCode(t *testing.T) {
	t.Parallel()
	requireShell(t)

	res, err := ExecRunner{}.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "echo 'Error: access denied for s3cret' >&2; exit 3"},
		Secrets: []string{"s3cret"},
	})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "Error: access denied for ********", exitErr.Stderr)
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	res, err := ExecRunner{}.Run(context.Background(), Command{Name: "wpfleet-no-such-binary"})

	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestExecRunner_DryRun(t *testing.T) {
	t.Parallel()
	res, err := ExecRunner{DryRun: true}.Run(context.Background(), Command{Name: "wp", Args: []string{"--info"}})
	require.NoError(t, err)
	assert.Equal(t, "dry-run: wp --info", res.Stdout)
}

type stubRunner struct{ err error }

func (s stubRunner) Run(context.Context, Command) (Result, error) { return Result{}, s.err }

func TestLoggingRunner(t *testing.T) {
	t.Parallel()
	var lines []string
	logf := func(format string, args ...interface{}) { lines = append(lines, fmt.Sprintf(format, args...)) }
	cmd := Command{Name: "wp", Args: []string{"--admin_password=pw1"}, Secrets: []string{"pw1"}}

	_, err := LoggingRunner{Delegate: stubRunner{}, Logf: logf}.Run(context.Background(), cmd)
	require.NoError(t, err)
	_, err = LoggingRunner{Delegate: stubRunner{err: errors.New("boom")}, Logf: logf}.Run(context.Background(), cmd)
	require.Error(t, err)

	require.Len(t, lines, 4)
	assert.Equal(t, "[command] start: wp --admin_password=********", lines[0])
	assert.Contains(t, lines[3], "failed after")
	for _, l := range lines {
		assert.NotContains(t, l, "pw1")
	}
}
