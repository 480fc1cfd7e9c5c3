package config

import (
	"fmt"
	"sort"
	"strings"
)

// SharedIndex marks a violation that belongs to the shared credentials rather than a site.
const SharedIndex = -1

// Violation is one problem found in a site list.
type Violation struct {
	Index   int    // site index, or SharedIndex
	Field   string // offending field, e.g. "database_name" or "mysql.port"
	Message string
}

func (v Violation) String() string {
	if v.Index == SharedIndex {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("sites[%d].%s: %s", v.Index, v.Field, v.Message)
}

// ConfigError reports a malformed or ambiguous site list. It is returned
// before any side effect happens and lists every violation found.
type ConfigError struct {
	Violations []Violation
}

func (e *ConfigError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid configuration: " + e.Violations[0].String()
	}
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return fmt.Sprintf("invalid configuration (%d problems):\n  %s", len(e.Violations), strings.Join(lines, "\n  "))
}

// Indices returns the distinct site indices that have violations for field,
// in ascending order.
func (e *ConfigError) Indices(field string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range e.Violations {
		if v.Field != field || v.Index == SharedIndex || seen[v.Index] {
			continue
		}
		seen[v.Index] = true
		out = append(out, v.Index)
	}
	sort.Ints(out)
	return out
}
