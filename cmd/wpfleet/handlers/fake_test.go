package handlers

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/rand"
	"database/sql"
	"database/sql/driver"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/database"
	"github.com/imamik/wpfleet/internal/provisioning/installer"
)

type fakeConn struct {
	mu         sync.Mutex
	statements []string
	closed     bool
}

func (c *fakeConn) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = append(c.statements, query)
	return driver.RowsAffected(0), nil
}

func (c *fakeConn) PingContext(context.Context) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type fakeInstaller struct {
	mu        sync.Mutex
	available error
	failFor   map[string]error
	installed []string
}

func (f *fakeInstaller) Available(context.Context) error { return f.available }

func (f *fakeInstaller) Install(_ context.Context, req installer.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[req.Title]; err != nil {
		return err
	}
	f.installed = append(f.installed, req.Title)
	return nil
}

func (f *fakeInstaller) CreateApplicationPassword(context.Context, string, string, string) (string, error) {
	return "abcd efgh ijkl mnop", nil
}

// fakes swaps every factory for a test double and restores them on cleanup.
type fakes struct {
	cfg       *config.Config
	conn      *fakeConn
	openErr   error
	opened    int
	installer *fakeInstaller
	out       *bytes.Buffer
}

func withFakes(t *testing.T, cfg *config.Config) *fakes {
	t.Helper()
	origLoad := loadConfig
	origTimeouts := loadTimeouts
	origObserver := newObserver
	origOpen := openDatabase
	origInstaller := newSiteInstaller
	origStdout := stdout
	t.Cleanup(func() {
		loadConfig = origLoad
		loadTimeouts = origTimeouts
		newObserver = origObserver
		openDatabase = origOpen
		newSiteInstaller = origInstaller
		stdout = origStdout
	})

	f := &fakes{
		cfg:       cfg,
		conn:      &fakeConn{},
		installer: &fakeInstaller{},
		out:       &bytes.Buffer{},
	}
	loadConfig = func(string) (*config.Config, error) { return f.cfg, nil }
	loadTimeouts = func() *config.Timeouts {
		return &config.Timeouts{Connect: time.Second, RetryMaxAttempts: 1, RetryInitialDelay: time.Millisecond}
	}
	newObserver = func(int) provisioning.Observer { return provisioning.NewDiscardObserver() }
	openDatabase = func(context.Context, config.MySQLCredentials, time.Duration) (database.Conn, error) {
		f.opened++
		if f.openErr != nil {
			return nil, f.openErr
		}
		return f.conn, nil
	}
	newSiteInstaller = func(provisioning.Observer) installer.SiteInstaller { return f.installer }
	stdout = f.out
	return f
}

// testConfig returns a validated config whose sites live under a temp dir.
func testConfig(t *testing.T, names ...string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Shared: config.SharedCredentials{
			MySQL: config.MySQLCredentials{
				Host:             "localhost",
				Port:             3306,
				RootUser:         "root",
				RootPassword:     "root-secret",
				SharedDBPassword: "site-secret",
			},
			WordPress: config.WordPressCredentials{
				AdminPassword: "admin-secret",
				AdminEmail:    "admin@example.com",
			},
		},
		Path: filepath.Join(root, "sites.csv"),
	}
	for _, name := range names {
		cfg.Sites = append(cfg.Sites, config.SiteDescriptor{
			SiteName:      name,
			DirectoryPath: filepath.Join(root, "www", name, "public_html"),
			DatabaseName:  config.DefaultDatabaseName(name),
			DatabaseUser:  config.DefaultDatabaseUser(name),
			SiteTitle:     name,
			AdminUsername: config.DefaultAdminUsername,
		})
	}
	return cfg
}

// testArchive writes a WordPress-shaped tar.gz large enough to pass the
// download size check and returns its path.
func testArchive(t *testing.T) string {
	t.Helper()
	padding := make([]byte, 1<<20+4096)
	_, err := rand.Read(padding)
	require.NoError(t, err)

	files := map[string][]byte{
		"wp-load.php":             []byte("<?php\n"),
		"wp-settings.php":         []byte("<?php\n"),
		"wp-config-sample.php":    []byte("<?php\ndefine( 'DB_NAME', 'database_name_here' );\n/* That's all, stop editing! Happy publishing. */\nrequire_once ABSPATH . 'wp-settings.php';\n"),
		"wp-admin/index.php":      []byte("<?php\n"),
		"wp-includes/version.php": []byte("<?php\n$wp_version = '6.5.2';\n"),
		"wp-content/padding.bin":  padding,
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range names {
		body := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: "wordpress/" + name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}))
		_, err := tw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "wordpress.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}
