// Package wpconfig renders wp-config.php for a staged site.
//
// The file is derived from the release's wp-config-sample.php by literal
// substitution: database credentials, the eight authentication keys and
// salts, and the WP_HOME / WP_SITEURL directives. The site URL is inferred
// from the site's directory when it is not configured explicitly.
package wpconfig
