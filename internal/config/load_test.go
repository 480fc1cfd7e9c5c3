package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"sites.csv", FormatCSV, false},
		{"sites.JSON", FormatJSON, false},
		{"sites.yaml", FormatYAML, false},
		{"sites.yml", FormatYAML, false},
		{"sites.toml", FormatTOML, false},
		{"sites.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const jsonSiteList = `{
  "mysql": {"host": "db.internal", "port": 3307, "rootUser": "admin", "rootPassword": "r00t", "sharedDbPassword": "shared"},
  "wordpress": {"adminPassword": "wp-pass", "adminEmail": "ops@example.com"},
  "sites": [
    {"site_name": "acme", "directory_path": "/srv/www/acme"},
    {"site_name": "globex", "directory_path": "/srv/www/globex", "database_name": "gx_db", "db_user": "gx_user"}
  ]
}`

func TestLoad_JSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sites.json", jsonSiteList)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "db.internal", cfg.Shared.MySQL.Host)
	assert.Equal(t, 3307, cfg.Shared.MySQL.Port)
	assert.Equal(t, "admin", cfg.Shared.MySQL.RootUser)
	assert.Equal(t, "db.internal:3307", cfg.Shared.MySQL.Address())
	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, "acme_db", cfg.Sites[0].DatabaseName)
	assert.Equal(t, "gx_db", cfg.Sites[1].DatabaseName)
	assert.Equal(t, "gx_user", cfg.Sites[1].DatabaseUser)
	assert.Equal(t, []string{"acme", "globex"}, cfg.SiteNames())
}

func TestLoad_JSONUnknownFieldIsConfigError(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sites.json", `{"mysql": {"hots": "x"}, "sites": []}`)

	_, err := Load(path)
	cfgErr := requireConfigError(t, err)
	assert.Equal(t, "file", cfgErr.Violations[0].Field)
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sites.yaml", `
mysql:
  host: localhost
  rootUser: root
  sharedDbPassword: shared
wordpress:
  adminPassword: wp-pass
  adminEmail: ops@example.com
sites:
  - site_name: acme
    directory_path: /srv/www/acme
    site_title: Acme Inc
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMySQLPort, cfg.Shared.MySQL.Port)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "Acme Inc", cfg.Sites[0].SiteTitle)
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sites.toml", `
[mysql]
host = "localhost"
port = 3306
rootUser = "root"
sharedDbPassword = "shared"

[wordpress]
adminPassword = "wp-pass"
adminEmail = "ops@example.com"

[[sites]]
site_name = "acme"
directory_path = "/srv/www/acme"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "acme_user", cfg.Sites[0].DatabaseUser)
}

func TestLoad_CSVWithDotenvCredentials(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "sites.csv", "site_name,directory_path,site_title,admin_username\nacme,/srv/www/acme,,\n")
	writeFile(t, dir, ".env", `WPFLEET_MYSQL_ROOT_PASSWORD=r00t
WPFLEET_SHARED_DB_PASSWORD=shared
WPFLEET_WP_ADMIN_PASSWORD=wp-pass
WPFLEET_WP_ADMIN_EMAIL=ops@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sites, 1)

	site := cfg.Sites[0]
	assert.Equal(t, "acme", site.SiteName)
	assert.Equal(t, "/srv/www/acme", site.DirectoryPath)
	assert.Equal(t, "acme_db", site.DatabaseName)
	assert.Equal(t, "acme_user", site.DatabaseUser)
	assert.Equal(t, "localhost", cfg.Shared.MySQL.Host)
	assert.Equal(t, "r00t", cfg.Shared.MySQL.RootPassword)
	assert.Equal(t, "shared", cfg.Shared.MySQL.SharedDBPassword)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
