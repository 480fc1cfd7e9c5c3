package config

// RawConfig is a site list as decoded from a file, before defaults and validation.
// The JSON shape is the canonical one; YAML and TOML use the same keys.
type RawConfig struct {
	MySQL     RawMySQL     `json:"mysql" yaml:"mysql" toml:"mysql"`
	WordPress RawWordPress `json:"wordpress" yaml:"wordpress" toml:"wordpress"`
	Sites     []RawSite    `json:"sites" yaml:"sites" toml:"sites"`

	// decodeViolations are problems found while decoding that Validate reports
	// together with its own findings (e.g. a non-numeric CSV port cell).
	decodeViolations []Violation
}

// RawMySQL is the mysql section of a site list.
type RawMySQL struct {
	Host             string `json:"host" yaml:"host" toml:"host"`
	Port             int    `json:"port" yaml:"port" toml:"port"`
	RootUser         string `json:"rootUser" yaml:"rootUser" toml:"rootUser"`
	RootPassword     string `json:"rootPassword" yaml:"rootPassword" toml:"rootPassword"`
	SharedDBPassword string `json:"sharedDbPassword" yaml:"sharedDbPassword" toml:"sharedDbPassword"`
}

// RawWordPress is the wordpress section of a site list.
type RawWordPress struct {
	AdminPassword string `json:"adminPassword" yaml:"adminPassword" toml:"adminPassword"`
	AdminEmail    string `json:"adminEmail" yaml:"adminEmail" toml:"adminEmail"`
}

// RawSite is one entry of the sites list.
type RawSite struct {
	SiteName      string `json:"site_name" yaml:"site_name" toml:"site_name"`
	DirectoryPath string `json:"directory_path" yaml:"directory_path" toml:"directory_path"`
	DatabaseName  string `json:"database_name,omitempty" yaml:"database_name,omitempty" toml:"database_name,omitempty"`
	DBUser        string `json:"db_user,omitempty" yaml:"db_user,omitempty" toml:"db_user,omitempty"`
	SiteTitle     string `json:"site_title,omitempty" yaml:"site_title,omitempty" toml:"site_title,omitempty"`
	AdminUsername string `json:"admin_username,omitempty" yaml:"admin_username,omitempty" toml:"admin_username,omitempty"`
	SiteURL       string `json:"site_url,omitempty" yaml:"site_url,omitempty" toml:"site_url,omitempty"`
}
