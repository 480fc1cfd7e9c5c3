package database

import (
	"errors"

	"github.com/imamik/wpfleet/internal/provisioning"
)

const (
	// StageName is the name of the provisioning stage.
	StageName = "database"
	// DropStageName is the name of the cleanup stage.
	DropStageName = "drop-databases"
)

// Session owns the administrative connection for one batch.
// It is opened once before any site is attempted and closed once after.
type Session struct {
	open Opener
	conn Conn
}

// NewSession creates a session that connects with open. A nil open uses Open.
func NewSession(open Opener) *Session {
	if open == nil {
		open = Open
	}
	return &Session{open: open}
}

// Preflight opens the connection. A failure aborts the batch.
func (s *Session) Preflight(ctx *provisioning.Context) error {
	if s.conn != nil {
		return nil
	}
	conn, err := s.open(ctx, ctx.Shared.MySQL, ctx.Timeouts.Connect)
	if err != nil {
		return err
	}
	s.conn = conn
	ctx.Observer.Printf("Connected to MySQL at %s as %s", ctx.Shared.MySQL.Address(), ctx.Shared.MySQL.RootUser)
	return nil
}

// Finish closes the connection. It is safe to call more than once.
func (s *Session) Finish(ctx *provisioning.Context) error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	ctx.Observer.Debugf("Closed MySQL administrative connection")
	return err
}

// Serial reports that sites share the connection and run one at a time.
func (s *Session) Serial() bool { return true }

var errNotConnected = errors.New("administrative connection is not open")

func (s *Session) provisioner(mode Mode) (*Provisioner, error) {
	if s.conn == nil {
		return nil, &provisioning.ConnectionError{Address: "mysql", Err: errNotConnected}
	}
	return NewProvisioner(s.conn, mode), nil
}

// Stage creates each site's database and user.
type Stage struct {
	*Session
	mode Mode
}

// NewStage creates the database stage.
func NewStage(session *Session, mode Mode) *Stage {
	return &Stage{Session: session, mode: mode}
}

// Name implements provisioning.Stage.
func (s *Stage) Name() string { return StageName }

// Criticality implements provisioning.Stage.
func (s *Stage) Criticality() provisioning.Criticality { return provisioning.BatchCritical }

// Reaches implements provisioning.Stage.
func (s *Stage) Reaches() provisioning.SiteState { return provisioning.StateDatabaseReady }

// ProvisionSite implements provisioning.Stage.
func (s *Stage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	p, err := s.provisioner(s.mode)
	if err != nil {
		return err
	}
	info, err := p.Provision(ctx, run.Site, ctx.Shared.MySQL, provisioning.DebugLogger(ctx.Observer))
	if err != nil {
		return err
	}
	run.Database = info
	ctx.Observer.Printf("Database %s ready (%s)", info.Name, s.mode)
	return nil
}

// DropStage removes each site's database and user.
type DropStage struct {
	*Session
}

// NewDropStage creates the database cleanup stage.
func NewDropStage(session *Session) *DropStage {
	return &DropStage{Session: session}
}

// Name implements provisioning.Stage.
func (s *DropStage) Name() string { return DropStageName }

// Criticality implements provisioning.Stage.
func (s *DropStage) Criticality() provisioning.Criticality { return provisioning.SiteCritical }

// Reaches implements provisioning.Stage.
func (s *DropStage) Reaches() provisioning.SiteState { return provisioning.StateDone }

// ProvisionSite implements provisioning.Stage.
func (s *DropStage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	p, err := s.provisioner(ModeCleanSlate)
	if err != nil {
		return err
	}
	if err := p.Drop(ctx, run.Site, ctx.Shared.MySQL, provisioning.DebugLogger(ctx.Observer)); err != nil {
		return err
	}
	ctx.Observer.Printf("Dropped database %s and user %s", run.Site.DatabaseName, run.Site.DatabaseUser)
	return nil
}
