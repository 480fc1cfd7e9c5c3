package database

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/imamik/wpfleet/internal/config"
)

// fakeConn records statements and fails those matching failOn.
type fakeConn struct {
	mu      sync.Mutex
	queries []string
	failOn  map[string]error
	closed  int
	pingErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{failOn: map[string]error{}}
}

func (f *fakeConn) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	for needle, err := range f.failOn {
		if strings.Contains(query, needle) {
			return nil, err
		}
	}
	return fakeResult{}, nil
}

func (f *fakeConn) PingContext(context.Context) error { return f.pingErr }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeConn) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = nil
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 0, nil }

func openerFor(conn *fakeConn, err error) Opener {
	return func(context.Context, config.MySQLCredentials, time.Duration) (Conn, error) {
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

func testSite(name string) config.SiteDescriptor {
	return config.SiteDescriptor{
		SiteName:     name,
		DatabaseName: config.DefaultDatabaseName(name),
		DatabaseUser: config.DefaultDatabaseUser(name),
	}
}

func testCreds() config.MySQLCredentials {
	return config.MySQLCredentials{
		Host:             "localhost",
		Port:             3306,
		RootUser:         "root",
		RootPassword:     "rootpw",
		SharedDBPassword: "sh4red'pw",
	}
}
