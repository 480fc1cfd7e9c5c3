package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/util/prerequisites"
)

func withDoctorFakes(t *testing.T, probeErr error, missingRequired bool) *fakes {
	t.Helper()
	f := withFakes(t, testConfig(t, "alpha", "beta"))

	origProbe := probeTCP
	origTools := checkTools
	t.Cleanup(func() {
		probeTCP = origProbe
		checkTools = origTools
	})

	probeTCP = func(context.Context, string, time.Duration) error { return probeErr }
	checkTools = func() *prerequisites.CheckResults {
		wp := prerequisites.Tool{Name: "wp", Required: true, InstallURL: "https://wp-cli.org/#installing"}
		mysql := prerequisites.Tool{Name: "mysql"}
		res := &prerequisites.CheckResults{
			Results: []prerequisites.CheckResult{
				{Tool: wp, Found: !missingRequired, Version: "WP-CLI 2.10.0"},
				{Tool: mysql},
			},
			Missing: []prerequisites.Tool{mysql},
		}
		if missingRequired {
			res.Missing = append(res.Missing, wp)
		}
		return res
	}
	return f
}

func TestDoctor_AllChecksPass(t *testing.T) {
	f := withDoctorFakes(t, nil, false)

	require.NoError(t, Doctor(context.Background(), "sites.csv", 0))

	out := f.out.String()
	assert.Contains(t, out, "[OK]  Configuration")
	assert.Contains(t, out, "2 site(s)")
	assert.Contains(t, out, "[OK]  MySQL login")
	assert.Contains(t, out, "WP-CLI 2.10.0")
	assert.Contains(t, out, "optional, not installed")
	assert.Contains(t, out, "All checks passed.")
	assert.True(t, f.conn.closed)
}

func TestDoctor_UnreachableMySQL(t *testing.T) {
	f := withDoctorFakes(t, errors.New("timeout connecting to localhost:3306"), false)

	err := Doctor(context.Background(), "sites.csv", 0)
	require.ErrorIs(t, err, errDoctorFailed)

	out := f.out.String()
	assert.Contains(t, out, "[!!]  MySQL reachable")
	assert.NotContains(t, out, "MySQL login")
	assert.Zero(t, f.opened)
}

func TestDoctor_LoginRejected(t *testing.T) {
	f := withDoctorFakes(t, nil, false)
	f.openErr = &provisioning.ConnectionError{Address: "localhost:3306", Err: errors.New("access denied for root")}

	err := Doctor(context.Background(), "sites.csv", 0)
	require.ErrorIs(t, err, errDoctorFailed)
	assert.Contains(t, f.out.String(), "access denied for root")
}

func TestDoctor_MissingToolsAndInstaller(t *testing.T) {
	f := withDoctorFakes(t, nil, true)
	f.installer.available = &provisioning.InstallerUnavailableError{Tool: "wp", Err: errors.New("not found")}

	err := Doctor(context.Background(), "sites.csv", 0)
	require.ErrorIs(t, err, errDoctorFailed)

	out := f.out.String()
	assert.Contains(t, out, "not found, see https://wp-cli.org/#installing")
	assert.Contains(t, out, "[!!]  Installer")
	assert.NotContains(t, out, "All checks passed.")
}

func TestDoctor_InvalidConfig(t *testing.T) {
	f := withDoctorFakes(t, nil, false)
	loadConfig = func(string) (*config.Config, error) {
		return nil, &config.ConfigError{Violations: []config.Violation{{Index: 1, Field: "directory_path", Message: "is required"}}}
	}

	err := Doctor(context.Background(), "sites.csv", 0)
	require.ErrorIs(t, err, errDoctorFailed)
	assert.Contains(t, f.out.String(), "[!!]  Configuration")
}
