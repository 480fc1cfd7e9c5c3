package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV column names.
const (
	colSiteName         = "site_name"
	colDirectoryPath    = "directory_path"
	colSiteTitle        = "site_title"
	colAdminUsername    = "admin_username"
	colDatabaseName     = "database_name"
	colDBUser           = "db_user"
	colSiteURL          = "site_url"
	colMySQLHost        = "mysql_host"
	colMySQLPort        = "mysql_port"
	colMySQLRootUser    = "mysql_root_user"
	colMySQLRootPass    = "mysql_root_password"
	colSharedDBPassword = "shared_db_password"
	colWPAdminPassword  = "wp_admin_password"
	colWPAdminEmail     = "wp_admin_email"
)

// sharedColumns are per-row copies of the shared credentials. Every row
// that sets one must agree with every other row that sets it.
var sharedColumns = []string{
	colMySQLHost,
	colMySQLPort,
	colMySQLRootUser,
	colMySQLRootPass,
	colSharedDBPassword,
	colWPAdminPassword,
	colWPAdminEmail,
}

func decodeCSV(r io.Reader) (*RawConfig, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ConfigError{Violations: []Violation{{Index: SharedIndex, Field: "file", Message: "CSV file is empty"}}}
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}

	var missing []Violation
	for _, required := range []string{colSiteName, colDirectoryPath} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, Violation{Index: SharedIndex, Field: "header", Message: fmt.Sprintf("missing required column %q", required)})
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Violations: missing}
	}

	raw := &RawConfig{}
	shared := make(map[string]string)
	sharedFrom := make(map[string]int)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlankRecord(record) {
			continue
		}

		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		index := len(raw.Sites)
		raw.Sites = append(raw.Sites, RawSite{
			SiteName:      cell(colSiteName),
			DirectoryPath: cell(colDirectoryPath),
			DatabaseName:  cell(colDatabaseName),
			DBUser:        cell(colDBUser),
			SiteTitle:     cell(colSiteTitle),
			AdminUsername: cell(colAdminUsername),
			SiteURL:       cell(colSiteURL),
		})

		for _, name := range sharedColumns {
			value := cell(name)
			if value == "" {
				continue
			}
			prev, seen := shared[name]
			if !seen {
				shared[name] = value
				sharedFrom[name] = index
				continue
			}
			if prev != value {
				raw.decodeViolations = append(raw.decodeViolations, Violation{
					Index:   index,
					Field:   name,
					Message: fmt.Sprintf("conflicts with the value set on sites[%d]; shared columns must be identical on every row that sets them", sharedFrom[name]),
				})
			}
		}
	}

	raw.MySQL = RawMySQL{
		Host:             shared[colMySQLHost],
		RootUser:         shared[colMySQLRootUser],
		RootPassword:     shared[colMySQLRootPass],
		SharedDBPassword: shared[colSharedDBPassword],
	}
	raw.WordPress = RawWordPress{
		AdminPassword: shared[colWPAdminPassword],
		AdminEmail:    shared[colWPAdminEmail],
	}
	if port, ok := shared[colMySQLPort]; ok {
		p, err := strconv.Atoi(port)
		if err != nil {
			raw.decodeViolations = append(raw.decodeViolations, Violation{
				Index:   sharedFrom[colMySQLPort],
				Field:   colMySQLPort,
				Message: fmt.Sprintf("port %q is not a number", port),
			})
		} else {
			raw.MySQL.Port = p
		}
	}

	return raw, nil
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
