package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/wpfleet/internal/config"
)

// WriteConfig renders the validated site list to w, styled when w is a
// terminal.
func WriteConfig(w io.Writer, cfg *config.Config) error {
	_, err := io.WriteString(w, RenderConfig(cfg, IsStyledOutput(w)))
	return err
}

// RenderConfig returns the validated site list as a table. Credentials are
// never included.
func RenderConfig(cfg *config.Config, styled bool) string {
	p := newPalette(styled)
	var b strings.Builder

	mysql := cfg.Shared.MySQL
	b.WriteString(p.ok("Configuration valid:"))
	fmt.Fprintf(&b, " %d site(s), MySQL %s as %s\n", len(cfg.Sites), mysql.Address(), mysql.RootUser)
	if len(cfg.Sites) == 0 {
		return b.String()
	}

	rows := [][]string{{"SITE", "DIRECTORY", "DATABASE", "USER", "ADMIN"}}
	for _, s := range cfg.Sites {
		rows = append(rows, []string{s.SiteName, s.DirectoryPath, s.DatabaseName, s.DatabaseUser, s.AdminUsername})
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	b.WriteString("\n")
	b.WriteString(p.section("  Sites"))
	b.WriteString("\n")
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = lipgloss.NewStyle().Width(widths[j]).Render(cell)
		}
		line := "  " + strings.TrimRight(strings.Join(cells, "  "), " ")
		if i == 0 {
			line = p.dim(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
