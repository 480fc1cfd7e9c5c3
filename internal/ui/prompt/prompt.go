// Package prompt asks the operator for confirmation on the terminal.
package prompt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// maxListed bounds the entries shown in a prompt description.
const maxListed = 10

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirmer asks before non-empty directories are cleaned. Without a
// terminal every question is answered no.
type Confirmer struct {
	interactive func() bool
	ask         func(ctx context.Context, title, description string) (bool, error)
}

// NewConfirmer creates a Confirmer for the current terminal.
func NewConfirmer() *Confirmer {
	return &Confirmer{interactive: IsInteractive, ask: askHuh}
}

// ConfirmCleanup asks whether the entries of dir may be deleted.
func (c *Confirmer) ConfirmCleanup(ctx context.Context, dir string, entries []string) (bool, error) {
	if !c.interactive() {
		return false, nil
	}
	title := fmt.Sprintf("Delete the contents of %s?", dir)
	return c.ask(ctx, title, describeEntries(entries))
}

func describeEntries(entries []string) string {
	if len(entries) == 0 {
		return "The directory contains only hidden files."
	}
	shown := entries
	if len(shown) > maxListed {
		shown = shown[:maxListed]
	}
	desc := fmt.Sprintf("%d existing entries: %s", len(entries), strings.Join(shown, ", "))
	if len(entries) > maxListed {
		desc += fmt.Sprintf(" and %d more", len(entries)-maxListed)
	}
	return desc
}

func askHuh(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Keep").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}
