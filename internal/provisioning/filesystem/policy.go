package filesystem

import (
	"context"
	"fmt"
	"strings"
)

// CleanupPolicy decides what happens when a target directory is not empty.
type CleanupPolicy string

const (
	// PolicyDeny never removes existing content.
	PolicyDeny CleanupPolicy = "deny"
	// PolicyConfirm asks before removing existing content.
	PolicyConfirm CleanupPolicy = "confirm"
	// PolicyAuto replaces prior installations without asking.
	PolicyAuto CleanupPolicy = "auto"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (CleanupPolicy, error) {
	switch p := CleanupPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyDeny, PolicyConfirm, PolicyAuto:
		return p, nil
	case "":
		return PolicyDeny, nil
	default:
		return "", fmt.Errorf("invalid cleanup policy %q (valid: deny, confirm, auto)", s)
	}
}

// Confirmer asks an operator whether existing content may be removed.
type Confirmer interface {
	ConfirmCleanup(ctx context.Context, dir string, entries []string) (bool, error)
}
