package config

import (
	"net"
	"strconv"
)

const (
	// DefaultMySQLHost is used when no MySQL host is configured.
	DefaultMySQLHost = "localhost"
	// DefaultMySQLPort is the standard MySQL port.
	DefaultMySQLPort = 3306
	// DefaultRootUser is the administrative MySQL account used when none is configured.
	DefaultRootUser = "root"
	// DefaultAdminUsername is the WordPress administrator login used when a site does not set one.
	DefaultAdminUsername = "admin"

	databaseSuffix = "_db"
	userSuffix     = "_user"
)

// SiteDescriptor is one requested WordPress deployment.
// Descriptors are built once by Validate and are read-only afterwards.
type SiteDescriptor struct {
	SiteName      string `json:"site_name"`
	DirectoryPath string `json:"directory_path"`
	DatabaseName  string `json:"database_name"`
	DatabaseUser  string `json:"db_user"`
	SiteTitle     string `json:"site_title"`
	AdminUsername string `json:"admin_username"`

	// SiteURL overrides the URL inferred from DirectoryPath when set.
	SiteURL string `json:"site_url,omitempty"`
}

// MySQLCredentials holds the administrative connection parameters and the
// password shared by every per-site database user.
type MySQLCredentials struct {
	Host             string
	Port             int
	RootUser         string
	RootPassword     string
	SharedDBPassword string
}

// Address returns host:port for the administrative connection.
func (c MySQLCredentials) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsLocal reports whether the server runs on the provisioning host.
// Per-site users are then bound to 'localhost' instead of '%'.
func (c MySQLCredentials) IsLocal() bool {
	switch c.Host {
	case "localhost", "127.0.0.1", "::1", "":
		return true
	}
	return false
}

// WordPressCredentials holds the administrator password and email applied to every site.
type WordPressCredentials struct {
	AdminPassword string
	AdminEmail    string
}

// SharedCredentials are applied to every site in the batch.
type SharedCredentials struct {
	MySQL     MySQLCredentials
	WordPress WordPressCredentials
}

// Config is a validated site list.
type Config struct {
	Shared SharedCredentials
	Sites  []SiteDescriptor

	// Path is the file the configuration was loaded from, if any.
	Path string
}

// SiteNames returns the site names in input order.
func (c *Config) SiteNames() []string {
	names := make([]string, 0, len(c.Sites))
	for _, s := range c.Sites {
		names = append(names, s.SiteName)
	}
	return names
}

// DefaultDatabaseName derives the database name for a site.
func DefaultDatabaseName(siteName string) string {
	return siteName + databaseSuffix
}

// DefaultDatabaseUser derives the database user for a site.
func DefaultDatabaseUser(siteName string) string {
	return siteName + userSuffix
}
