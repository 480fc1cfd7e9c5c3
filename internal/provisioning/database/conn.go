package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/provisioning"
)

// Conn is the administrative connection. *sql.DB satisfies it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// Opener opens and verifies an administrative connection.
type Opener func(ctx context.Context, creds config.MySQLCredentials, timeout time.Duration) (Conn, error)

// Open connects to MySQL as the administrative user and verifies the login.
// Any failure is reported as a *provisioning.ConnectionError.
func Open(ctx context.Context, creds config.MySQLCredentials, timeout time.Duration) (Conn, error) {
	cfg := mysql.NewConfig()
	cfg.User = creds.RootUser
	cfg.Passwd = creds.RootPassword
	cfg.Net = "tcp"
	cfg.Addr = creds.Address()
	cfg.Timeout = timeout
	cfg.ReadTimeout = 5 * time.Minute
	cfg.WriteTimeout = 5 * time.Minute
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, &provisioning.ConnectionError{Address: cfg.Addr, Err: err}
	}

	db := sql.OpenDB(connector)
	// One session: statements run strictly in order and FLUSH PRIVILEGES
	// applies to the same server thread that issued the grants.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &provisioning.ConnectionError{Address: cfg.Addr, Err: describeConnectError(err)}
	}
	return db, nil
}

// describeConnectError turns well-known server errors into actionable messages.
func describeConnectError(err error) error {
	if me, ok := asMySQLError(err); ok {
		switch me.Number {
		case 1045:
			return fmt.Errorf("access denied for administrative user: %w", err)
		case 1130:
			return fmt.Errorf("this host is not allowed to connect: %w", err)
		}
	}
	return err
}
