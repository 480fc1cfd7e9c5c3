package filesystem

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/imamik/wpfleet/internal/provisioning"
)

// codebaseMarkers must exist in a staged codebase.
var codebaseMarkers = []string{
	"wp-load.php",
	"wp-settings.php",
	"wp-config-sample.php",
	"wp-admin",
	"wp-includes/version.php",
}

var versionPattern = regexp.MustCompile(`\$wp_version\s*=\s*'([^']+)'`)

// Verify checks the marker files and returns the WordPress version, which
// is empty if it cannot be read.
func Verify(dir string) (string, error) {
	var missing []string
	for _, m := range codebaseMarkers {
		if _, err := os.Stat(filepath.Join(dir, m)); err != nil {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return "", &provisioning.VerificationError{Path: dir, Missing: missing}
	}
	return ReadVersion(dir), nil
}

// ReadVersion parses $wp_version from wp-includes/version.php.
func ReadVersion(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "wp-includes", "version.php"))
	if err != nil {
		return ""
	}
	if m := versionPattern.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}
