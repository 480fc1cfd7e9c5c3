package provisioning

import (
	"context"

	"github.com/imamik/wpfleet/internal/config"
)

// Context wraps all dependencies needed by a stage.
type Context struct {
	context.Context
	Shared   config.SharedCredentials
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, shared config.SharedCredentials, observer Observer) *Context {
	if observer == nil {
		observer = NewDiscardObserver()
	}
	return &Context{
		Context:  ctx,
		Shared:   shared,
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
	}
}

// ForSite returns a copy of the context whose observer is tagged with the site name.
func (c *Context) ForSite(site string) *Context {
	cp := *c
	cp.Observer = c.Observer.WithFields(map[string]string{"site": site})
	return &cp
}
