package installer

import (
	"context"
	"strings"

	"github.com/imamik/wpfleet/internal/platform/execx"
)

type fakeRunner struct {
	commands []string
	outputs  map[string]execx.Result
	errs     map[string]error
}

// key is the command line without --allow-root and --path flags.
func key(c execx.Command) string {
	var parts []string
	for _, a := range c.Args {
		if a == "--allow-root" || strings.HasPrefix(a, "--path=") {
			continue
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func (r *fakeRunner) Run(_ context.Context, c execx.Command) (execx.Result, error) {
	r.commands = append(r.commands, c.String())
	k := key(c)
	for prefix, err := range r.errs {
		if strings.HasPrefix(k, prefix) {
			return r.outputs[prefix], err
		}
	}
	for prefix, out := range r.outputs {
		if strings.HasPrefix(k, prefix) {
			return out, nil
		}
	}
	return execx.Result{}, nil
}
