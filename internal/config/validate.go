package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	maxDatabaseNameLen = 64
	maxDatabaseUserLen = 32
)

var (
	// siteNamePattern is the character class shared by site names and the
	// MySQL identifiers derived from them.
	siteNamePattern      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	adminUsernamePattern = regexp.MustCompile(`^[A-Za-z0-9 _.@-]+$`)
)

// Validate checks a decoded site list and resolves derived fields.
// It has no side effects and reports every violation it finds, not only the first.
func Validate(raw *RawConfig) (*Config, error) {
	v := &validator{}
	v.violations = append(v.violations, raw.decodeViolations...)

	v.validateShared(raw)

	if len(raw.Sites) == 0 {
		v.add(SharedIndex, "sites", "at least one site is required")
	}

	sites := make([]SiteDescriptor, 0, len(raw.Sites))
	for i, rs := range raw.Sites {
		sites = append(sites, v.validateSite(i, rs))
	}

	v.checkUnique("site_name", sites, func(s SiteDescriptor) string { return s.SiteName })
	v.checkUnique("database_name", sites, func(s SiteDescriptor) string { return s.DatabaseName })
	v.checkUnique("db_user", sites, func(s SiteDescriptor) string { return s.DatabaseUser })
	v.checkUnique("directory_path", sites, func(s SiteDescriptor) string {
		if s.DirectoryPath == "" {
			return ""
		}
		return filepath.Clean(s.DirectoryPath)
	})
	v.checkNested(sites)

	if len(v.violations) > 0 {
		return nil, &ConfigError{Violations: v.violations}
	}

	return &Config{
		Shared: SharedCredentials{
			MySQL: MySQLCredentials{
				Host:             raw.MySQL.Host,
				Port:             raw.MySQL.Port,
				RootUser:         raw.MySQL.RootUser,
				RootPassword:     raw.MySQL.RootPassword,
				SharedDBPassword: raw.MySQL.SharedDBPassword,
			},
			WordPress: WordPressCredentials{
				AdminPassword: raw.WordPress.AdminPassword,
				AdminEmail:    raw.WordPress.AdminEmail,
			},
		},
		Sites: sites,
	}, nil
}

type validator struct {
	violations []Violation
}

func (v *validator) add(index int, field, format string, args ...any) {
	v.violations = append(v.violations, Violation{Index: index, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) validateShared(raw *RawConfig) {
	if strings.TrimSpace(raw.MySQL.Host) == "" {
		v.add(SharedIndex, "mysql.host", "is required")
	}
	if raw.MySQL.Port < 1 || raw.MySQL.Port > 65535 {
		v.add(SharedIndex, "mysql.port", "must be between 1 and 65535, got %d", raw.MySQL.Port)
	}
	if strings.TrimSpace(raw.MySQL.RootUser) == "" {
		v.add(SharedIndex, "mysql.rootUser", "is required")
	}
	if raw.MySQL.SharedDBPassword == "" {
		v.add(SharedIndex, "mysql.sharedDbPassword", "is required")
	}
	if raw.WordPress.AdminPassword == "" {
		v.add(SharedIndex, "wordpress.adminPassword", "is required")
	}
	switch email := strings.TrimSpace(raw.WordPress.AdminEmail); {
	case email == "":
		v.add(SharedIndex, "wordpress.adminEmail", "is required")
	case !isEmail(email):
		v.add(SharedIndex, "wordpress.adminEmail", "%q is not a valid email address", email)
	}
}

func (v *validator) validateSite(i int, rs RawSite) SiteDescriptor {
	site := SiteDescriptor{
		SiteName:      strings.TrimSpace(rs.SiteName),
		DirectoryPath: strings.TrimSpace(rs.DirectoryPath),
		DatabaseName:  strings.TrimSpace(rs.DatabaseName),
		DatabaseUser:  strings.TrimSpace(rs.DBUser),
		SiteTitle:     strings.TrimSpace(rs.SiteTitle),
		AdminUsername: strings.TrimSpace(rs.AdminUsername),
		SiteURL:       strings.TrimSpace(rs.SiteURL),
	}

	switch {
	case site.SiteName == "":
		v.add(i, "site_name", "is required")
	case !siteNamePattern.MatchString(site.SiteName):
		v.add(i, "site_name", "%q may only contain letters, digits, '_' and '-'", site.SiteName)
	}

	if site.DirectoryPath == "" {
		v.add(i, "directory_path", "is required")
	}

	// Derived identifiers are only meaningful for a valid site name.
	nameOK := site.SiteName != "" && siteNamePattern.MatchString(site.SiteName)
	if site.DatabaseName == "" && nameOK {
		site.DatabaseName = DefaultDatabaseName(site.SiteName)
	}
	if site.DatabaseUser == "" && nameOK {
		site.DatabaseUser = DefaultDatabaseUser(site.SiteName)
	}
	v.checkIdentifier(i, "database_name", site.DatabaseName, maxDatabaseNameLen)
	v.checkIdentifier(i, "db_user", site.DatabaseUser, maxDatabaseUserLen)

	if site.SiteTitle == "" {
		site.SiteTitle = site.SiteName
	}
	if site.AdminUsername == "" {
		site.AdminUsername = DefaultAdminUsername
	} else if !adminUsernamePattern.MatchString(site.AdminUsername) {
		v.add(i, "admin_username", "%q contains characters WordPress does not allow in logins", site.AdminUsername)
	}

	if site.SiteURL != "" {
		u, err := url.Parse(site.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.add(i, "site_url", "%q must be an absolute http(s) URL", site.SiteURL)
		} else {
			site.SiteURL = strings.TrimRight(site.SiteURL, "/")
		}
	}

	return site
}

func (v *validator) checkIdentifier(i int, field, value string, maxLen int) {
	if value == "" {
		return
	}
	if !siteNamePattern.MatchString(value) {
		v.add(i, field, "%q may only contain letters, digits, '_' and '-'", value)
		return
	}
	if len(value) > maxLen {
		v.add(i, field, "%q is longer than %d characters", value, maxLen)
	}
}

// checkUnique reports every site whose key is shared with another site.
// Comparison is case-insensitive because MySQL identifiers may be on
// case-insensitive filesystems.
func (v *validator) checkUnique(field string, sites []SiteDescriptor, key func(SiteDescriptor) string) {
	groups := make(map[string][]int)
	for i, s := range sites {
		k := strings.ToLower(key(s))
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], i)
	}

	keys := make([]string, 0, len(groups))
	for k, idx := range groups {
		if len(idx) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(a, b int) bool { return groups[keys[a]][0] < groups[keys[b]][0] })

	for _, k := range keys {
		indices := groups[k]
		for _, i := range indices {
			v.add(i, field, "%q is used by more than one site (sites%s)", key(sites[i]), formatIndices(indices))
		}
	}
}

// checkNested reports sites whose directory lies inside another site's
// directory. Cleaning one site must never reach into another.
func (v *validator) checkNested(sites []SiteDescriptor) {
	dirs := make([]string, len(sites))
	for i, s := range sites {
		if s.DirectoryPath == "" {
			continue
		}
		dir, err := filepath.Abs(s.DirectoryPath)
		if err != nil {
			dir = filepath.Clean(s.DirectoryPath)
		}
		dirs[i] = strings.ToLower(dir)
	}

	for i, outer := range dirs {
		if outer == "" {
			continue
		}
		prefix := outer
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		for j, inner := range dirs {
			if i == j || !strings.HasPrefix(inner, prefix) {
				continue
			}
			v.add(j, "directory_path", "%q is inside the directory of site %d (%q)", sites[j].DirectoryPath, i, sites[i].DirectoryPath)
		}
	}
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, fmt.Sprintf("%d", i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}
