package orchestration

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/provisioning"
)

// fakeStage fails the sites listed in failures and records every call.
type fakeStage struct {
	name        string
	criticality provisioning.Criticality
	reaches     provisioning.SiteState
	failures    map[string]error
	serial      bool
	preflight   error
	hook        func(ctx *provisioning.Context, run *provisioning.SiteRun)

	mu        sync.Mutex
	calls     []string
	finished  int
	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeStage(name string, criticality provisioning.Criticality, reaches provisioning.SiteState) *fakeStage {
	return &fakeStage{name: name, criticality: criticality, reaches: reaches, failures: map[string]error{}}
}

func (s *fakeStage) Name() string { return s.name }
func (s *fakeStage) Criticality() provisioning.Criticality { return s.criticality }
func (s *fakeStage) Reaches() provisioning.SiteState { return s.reaches }
func (s *fakeStage) Serial() bool { return s.serial }
func (s *fakeStage) Preflight(*provisioning.Context) error { return s.preflight }
func (s *fakeStage) Finish(*provisioning.Context) error { s.finished++; return nil }
func (s *fakeStage) failSite(site string, err error) *fakeStage { s.failures[site] = err; return s }

func (s *fakeStage) ProvisionSite(ctx *provisioning.Context, run *provisioning.SiteRun) error {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		peak := s.maxActive.Load()
		if n <= peak || s.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, run.Site.SiteName)
	s.mu.Unlock()

	if s.hook != nil {
		s.hook(ctx, run)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failures[run.Site.SiteName]
}

func (s *fakeStage) called() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func sites(names ...string) []config.SiteDescriptor {
	out := make([]config.SiteDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, config.SiteDescriptor{
			SiteName:      n,
			DirectoryPath: "/srv/www/" + n,
			DatabaseName:  config.DefaultDatabaseName(n),
			DatabaseUser:  config.DefaultDatabaseUser(n),
		})
	}
	return out
}

func dbError(site string) error {
	return &provisioning.DatabaseError{Database: site + "_db", Op: "create database", Err: errors.New("access denied")}
}

// pipeline is the deploy stage list built from fakes.
type pipeline struct {
	database, staging, configure, permissions, install, finalize *fakeStage
}

func newPipeline() *pipeline {
	return &pipeline{
		database:    newFakeStage("database", provisioning.BatchCritical, provisioning.StateDatabaseReady),
		staging:     newFakeStage("staging", provisioning.BatchCritical, provisioning.StateStaged),
		configure:   newFakeStage("configure", provisioning.SiteCritical, provisioning.StateConfigured),
		permissions: newFakeStage("permissions", provisioning.Advisory, provisioning.StateHardened),
		install:     newFakeStage("install", provisioning.SiteCritical, provisioning.StateInstalled),
		finalize:    newFakeStage("finalize", provisioning.Advisory, provisioning.StateDone),
	}
}

func (p *pipeline) stages() []provisioning.Stage {
	return []provisioning.Stage{p.database, p.staging, p.configure, p.permissions, p.install, p.finalize}
}

func (p *pipeline) all() []*fakeStage {
	return []*fakeStage{p.database, p.staging, p.configure, p.permissions, p.install, p.finalize}
}

func resultFor(r *Report, site string) provisioning.ProvisioningResult {
	for _, res := range r.Results {
		if res.SiteName == site {
			return res
		}
	}
	panic(fmt.Sprintf("no result for %s", site))
}
