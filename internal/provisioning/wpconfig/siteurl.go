package wpconfig

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/imamik/wpfleet/internal/config"
)

// webrootNames are conventional document-root directory names that say
// nothing about the domain.
var webrootNames = map[string]bool{
	"public_html": true,
	"htdocs":      true,
	"www":         true,
	"html":        true,
	"public":      true,
	"web":         true,
}

var domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)

// InferSiteURL derives the site URL. In order of preference: the site's
// explicit URL, a domain-like directory name (e.g. /srv/www/example.com/public_html),
// a subdomain of baseDomain, and finally http://localhost/<site>.
func InferSiteURL(site config.SiteDescriptor, baseDomain string) string {
	if u := strings.TrimSpace(site.SiteURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if domain := domainFromPath(site.DirectoryPath); domain != "" {
		return "https://" + domain
	}
	host := strings.ToLower(strings.ReplaceAll(site.SiteName, "_", "-"))
	if base := strings.Trim(strings.TrimSpace(baseDomain), "."); base != "" {
		return "https://" + host + "." + strings.ToLower(base)
	}
	return "http://localhost/" + host
}

// domainFromPath returns the nearest non-webroot path component if it
// looks like a domain name.
func domainFromPath(dir string) string {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		name := strings.ToLower(parts[i])
		if name == "" || name == "." || webrootNames[name] {
			continue
		}
		if domainPattern.MatchString(name) {
			return name
		}
		return ""
	}
	return ""
}
