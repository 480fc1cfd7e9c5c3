package wpconfig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/util/keygen"
)

const (
	// FileName is the generated configuration file.
	FileName = "wp-config.php"
	// SampleName is the template shipped with every release.
	SampleName = "wp-config-sample.php"

	secretLength = 64
)

// SecretKeys are the authentication keys and salts, in file order.
var SecretKeys = []string{
	"AUTH_KEY",
	"SECURE_AUTH_KEY",
	"LOGGED_IN_KEY",
	"NONCE_KEY",
	"AUTH_SALT",
	"SECURE_AUTH_SALT",
	"LOGGED_IN_SALT",
	"NONCE_SALT",
}

// Insertion anchors for directives the sample does not define.
var (
	stopEditingAnchor = regexp.MustCompile(`(?m)^/\*\s*That's all, stop editing!`)
	settingsAnchor    = regexp.MustCompile(`(?m)^require_once\s+ABSPATH\s*\.\s*'wp-settings\.php';`)
)

// Values are the substitutions applied to the sample.
type Values struct {
	Database provisioning.DatabaseInfo
	SiteURL  string
	// Secrets maps each of SecretKeys to its value.
	Secrets map[string]string
}

// GenerateSecrets returns an independent random value for every secret key.
// Values never contain characters that need escaping in a PHP string.
func GenerateSecrets() (map[string]string, error) {
	secrets := make(map[string]string, len(SecretKeys))
	seen := make(map[string]bool, len(SecretKeys))
	for _, key := range SecretKeys {
		for {
			s, err := keygen.Secret(secretLength, keygen.PHPSafe)
			if err != nil {
				return nil, err
			}
			if !seen[s] {
				seen[s] = true
				secrets[key] = s
				break
			}
		}
	}
	return secrets, nil
}

// Render applies v to the sample content.
func Render(sample string, v Values) (string, error) {
	for _, key := range SecretKeys {
		if v.Secrets[key] == "" {
			return "", fmt.Errorf("missing value for %s", key)
		}
	}
	if v.SiteURL == "" {
		return "", fmt.Errorf("site URL is required")
	}

	out := sample
	out = setDefine(out, "DB_NAME", v.Database.Name)
	out = setDefine(out, "DB_USER", v.Database.User)
	out = setDefine(out, "DB_PASSWORD", v.Database.Password)
	out = setDefine(out, "DB_HOST", v.Database.HostWithPort())
	for _, key := range SecretKeys {
		out = setDefine(out, key, v.Secrets[key])
	}
	out = setDefine(out, "WP_HOME", v.SiteURL)
	out = setDefine(out, "WP_SITEURL", v.SiteURL)
	return out, nil
}

// setDefine replaces the value of an existing define( 'NAME', '...' ) or
// inserts one before the stop-editing marker.
func setDefine(content, name, value string) string {
	line := fmt.Sprintf("define( '%s', '%s' );", name, phpQuote(value))
	existing := regexp.MustCompile(`define\(\s*'` + regexp.QuoteMeta(name) + `'\s*,\s*'(?:[^'\\]|\\.)*'\s*\);`)
	if loc := existing.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + line + content[loc[1]:]
	}

	for _, anchor := range []*regexp.Regexp{stopEditingAnchor, settingsAnchor} {
		if loc := anchor.FindStringIndex(content); loc != nil {
			return content[:loc[0]] + line + "\n\n" + content[loc[0]:]
		}
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}

// phpQuote escapes a value for a single-quoted PHP string.
func phpQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
