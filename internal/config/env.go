package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that provide shared credentials when the site list omits them.
const (
	EnvMySQLHost        = "WPFLEET_MYSQL_HOST"
	EnvMySQLPort        = "WPFLEET_MYSQL_PORT"
	EnvMySQLRootUser    = "WPFLEET_MYSQL_ROOT_USER"
	EnvMySQLRootPass    = "WPFLEET_MYSQL_ROOT_PASSWORD"
	EnvSharedDBPassword = "WPFLEET_SHARED_DB_PASSWORD"
	EnvWPAdminPassword  = "WPFLEET_WP_ADMIN_PASSWORD"
	EnvWPAdminEmail     = "WPFLEET_WP_ADMIN_EMAIL"

	envPrefix  = "WPFLEET_"
	dotenvName = ".env"
)

// CredentialEnvironment collects WPFLEET_* values from the process
// environment and from a .env file in dir. Values from the .env file take
// precedence. The process environment is never modified.
func CredentialEnvironment(dir string) (map[string]string, error) {
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, envPrefix) {
			values[key] = value
		}
	}

	path := filepath.Join(dir, dotenvName)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return values, nil
	}

	fileValues, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for key, value := range fileValues {
		if strings.HasPrefix(key, envPrefix) {
			values[key] = value
		}
	}
	return values, nil
}

// ApplyCredentialDefaults fills empty shared credential fields, first from
// env and then from the built-in defaults. Values present in the file win.
func ApplyCredentialDefaults(raw *RawConfig, env map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(env[key])
		}
	}

	fill(&raw.MySQL.Host, EnvMySQLHost)
	fill(&raw.MySQL.RootUser, EnvMySQLRootUser)
	fill(&raw.MySQL.SharedDBPassword, EnvSharedDBPassword)
	fill(&raw.WordPress.AdminPassword, EnvWPAdminPassword)
	fill(&raw.WordPress.AdminEmail, EnvWPAdminEmail)
	if raw.MySQL.RootPassword == "" {
		// Passwords may legitimately contain surrounding whitespace.
		raw.MySQL.RootPassword = env[EnvMySQLRootPass]
	}

	if raw.MySQL.Port == 0 {
		if port := strings.TrimSpace(env[EnvMySQLPort]); port != "" {
			p, err := strconv.Atoi(port)
			if err != nil {
				raw.decodeViolations = append(raw.decodeViolations, Violation{
					Index:   SharedIndex,
					Field:   "mysql.port",
					Message: fmt.Sprintf("%s=%q is not a number", EnvMySQLPort, port),
				})
			} else {
				raw.MySQL.Port = p
			}
		}
	}

	if raw.MySQL.Host == "" {
		raw.MySQL.Host = DefaultMySQLHost
	}
	if raw.MySQL.Port == 0 {
		raw.MySQL.Port = DefaultMySQLPort
	}
	if raw.MySQL.RootUser == "" {
		raw.MySQL.RootUser = DefaultRootUser
	}
}
