package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/provisioning"
)

// Mode selects how existing databases and users are treated.
type Mode int

const (
	// ModeCleanSlate drops and recreates the database and user.
	ModeCleanSlate Mode = iota
	// ModeUseExisting keeps existing data and only ensures objects and grants.
	ModeUseExisting
)

func (m Mode) String() string {
	if m == ModeUseExisting {
		return "use-existing"
	}
	return "clean-slate"
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const redacted = "********"

// Statement is one step of a provisioning plan.
type Statement struct {
	Op  string
	SQL string

	// Display is SQL with the password redacted, for logs.
	Display string
}

// Provisioner issues the statements for one site at a time over a shared connection.
type Provisioner struct {
	conn Conn
	mode Mode
}

// NewProvisioner creates a provisioner using conn.
func NewProvisioner(conn Conn, mode Mode) *Provisioner {
	return &Provisioner{conn: conn, mode: mode}
}

// Describe returns the database identity a site uses, without touching the server.
func Describe(site config.SiteDescriptor, creds config.MySQLCredentials) *provisioning.DatabaseInfo {
	return &provisioning.DatabaseInfo{
		Name:     site.DatabaseName,
		User:     site.DatabaseUser,
		Password: creds.SharedDBPassword,
		Host:     creds.Host,
		Port:     creds.Port,
	}
}

// Plan returns the statements Provision would run for site.
func Plan(mode Mode, site config.SiteDescriptor, creds config.MySQLCredentials) ([]Statement, error) {
	db, user, host, err := identity(site, creds)
	if err != nil {
		return nil, err
	}
	account := fmt.Sprintf("'%s'@'%s'", user, host)

	build := func(password string) []string {
		var sql []string
		switch mode {
		case ModeUseExisting:
			sql = append(sql,
				fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", db),
				fmt.Sprintf("CREATE USER IF NOT EXISTS %s IDENTIFIED BY '%s'", account, password),
				fmt.Sprintf("ALTER USER %s IDENTIFIED BY '%s'", account, password),
			)
		default:
			sql = append(sql,
				fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", db),
				fmt.Sprintf("DROP USER IF EXISTS %s", account),
				fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", db),
				fmt.Sprintf("CREATE USER %s IDENTIFIED BY '%s'", account, password),
			)
		}
		return append(sql,
			fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO %s", db, account),
			"FLUSH PRIVILEGES",
		)
	}

	ops := []string{"drop database", "drop user", "create database", "create user", "grant", "flush privileges"}
	if mode == ModeUseExisting {
		ops = []string{"create database", "create user", "set password", "grant", "flush privileges"}
	}

	stmts := build(quoteString(creds.SharedDBPassword))
	display := build(redacted)
	plan := make([]Statement, len(stmts))
	for i := range stmts {
		plan[i] = Statement{Op: ops[i], SQL: stmts[i], Display: display[i]}
	}
	return plan, nil
}

// DropPlan returns the statements that remove a site's database and user.
func DropPlan(site config.SiteDescriptor, creds config.MySQLCredentials) ([]Statement, error) {
	db, user, host, err := identity(site, creds)
	if err != nil {
		return nil, err
	}
	account := fmt.Sprintf("'%s'@'%s'", user, host)
	plan := []Statement{
		{Op: "drop database", SQL: fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", db)},
		{Op: "drop user", SQL: fmt.Sprintf("DROP USER IF EXISTS %s", account)},
		{Op: "flush privileges", SQL: "FLUSH PRIVILEGES"},
	}
	for i := range plan {
		plan[i].Display = plan[i].SQL
	}
	return plan, nil
}

// Provision creates the site's database and user and returns its identity.
func (p *Provisioner) Provision(ctx context.Context, site config.SiteDescriptor, creds config.MySQLCredentials, log provisioning.Logger) (*provisioning.DatabaseInfo, error) {
	plan, err := Plan(p.mode, site, creds)
	if err != nil {
		return nil, err
	}
	if err := p.run(ctx, creds.Address(), site.DatabaseName, plan, log); err != nil {
		return nil, err
	}
	return Describe(site, creds), nil
}

// Drop removes the site's database and user. Missing objects are not an error.
func (p *Provisioner) Drop(ctx context.Context, site config.SiteDescriptor, creds config.MySQLCredentials, log provisioning.Logger) error {
	plan, err := DropPlan(site, creds)
	if err != nil {
		return err
	}
	return p.run(ctx, creds.Address(), site.DatabaseName, plan, log)
}

func (p *Provisioner) run(ctx context.Context, address, database string, plan []Statement, log provisioning.Logger) error {
	for _, stmt := range plan {
		if log != nil {
			log.Printf("%s", stmt.Display)
		}
		if _, err := p.conn.ExecContext(ctx, stmt.SQL); err != nil {
			return classify(ctx, address, database, stmt.Op, err)
		}
	}
	return nil
}

// classify separates per-site SQL failures from a lost server connection,
// which affects every remaining site.
func classify(ctx context.Context, address, database, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s %s: %w", op, database, errors.Join(provisioning.ErrCanceled, ctx.Err()))
	}
	if _, ok := asMySQLError(err); ok {
		return &provisioning.DatabaseError{Database: database, Op: op, Err: err}
	}
	return &provisioning.ConnectionError{Address: address, Err: fmt.Errorf("%s %s: %w", op, database, err)}
}

func identity(site config.SiteDescriptor, creds config.MySQLCredentials) (db, user, host string, err error) {
	db = strings.TrimSpace(site.DatabaseName)
	user = strings.TrimSpace(site.DatabaseUser)
	if !identifierPattern.MatchString(db) {
		return "", "", "", &provisioning.DatabaseError{Database: db, Op: "validate", Err: errors.New("invalid database name")}
	}
	if !identifierPattern.MatchString(user) {
		return "", "", "", &provisioning.DatabaseError{Database: db, Op: "validate", Err: fmt.Errorf("invalid database user %q", user)}
	}
	if creds.SharedDBPassword == "" {
		return "", "", "", &provisioning.DatabaseError{Database: db, Op: "validate", Err: errors.New("shared database password is required")}
	}
	host = "%"
	if creds.IsLocal() {
		host = "localhost"
	}
	return db, user, host, nil
}

// quoteString escapes s for a single-quoted MySQL string literal.
func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}

func asMySQLError(err error) (*mysql.MySQLError, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
