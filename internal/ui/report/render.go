// Package report renders batch results for the terminal and exports them
// as JSON.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/imamik/wpfleet/internal/orchestration"
	"github.com/imamik/wpfleet/internal/provisioning"
)

// IsStyledOutput reports whether w is a terminal that should get colors.
func IsStyledOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Write renders r to w, styled when w is a terminal.
func Write(w io.Writer, r *orchestration.Report) error {
	_, err := io.WriteString(w, Render(r, IsStyledOutput(w)))
	return err
}

// Render returns the summary of r. Passwords are never included.
func Render(r *orchestration.Report, styled bool) string {
	p := newPalette(styled)
	var b strings.Builder

	renderHeader(&b, p, r)
	renderSites(&b, p, r)
	renderStages(&b, p, r)
	renderSummary(&b, p, r)

	return b.String()
}

func renderHeader(b *strings.Builder, p palette, r *orchestration.Report) {
	b.WriteString(p.title(fmt.Sprintf("wpfleet: %d site(s)", len(r.Results))))
	b.WriteString(" ")
	switch {
	case r.PreconditionFailed:
		b.WriteString(p.failed("Precondition failed"))
	case r.Aborted:
		b.WriteString(p.failed("Aborted at " + r.AbortStage))
	case r.ExitCode() != 0:
		b.WriteString(p.warning("Completed with failures"))
	default:
		b.WriteString(p.ok("Completed"))
	}
	b.WriteString(p.dim(fmt.Sprintf(" in %s", formatDuration(r.Duration))))
	b.WriteString("\n")
	if r.Reason != "" {
		fmt.Fprintf(b, "  %s\n", p.dim(r.Reason))
	}
}

func renderSites(b *strings.Builder, p palette, r *orchestration.Report) {
	if len(r.Results) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(p.section("  Sites"))
	b.WriteString("\n")

	width := 0
	for _, res := range r.Results {
		if len(res.SiteName) > width {
			width = len(res.SiteName)
		}
	}
	for _, res := range r.Results {
		mark := statusMark(p, res.Status)
		detail := res.SiteURL
		switch res.Status {
		case provisioning.StatusFailed:
			detail = p.failed("failed in " + res.FailedStage)
		case provisioning.StatusSkipped:
			detail = p.dim("skipped at " + res.State.String())
		}
		fmt.Fprintf(b, "  %s %-*s  %s\n", mark, width, res.SiteName, detail)
		if res.Database != nil && res.Status != provisioning.StatusSkipped {
			fmt.Fprintf(b, "       %s\n", p.dim("database "+res.Database.String()))
		}
		for _, e := range res.Errors {
			fmt.Fprintf(b, "       %s\n", p.failed(e.Error()))
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(b, "       %s\n", p.warning("warning: "+w.Error()))
		}
	}
}

func statusMark(p palette, status provisioning.Status) string {
	switch status {
	case provisioning.StatusSuccess:
		return p.ok(checkMark)
	case provisioning.StatusSuccessWithWarnings:
		return p.warning(warnMark)
	case provisioning.StatusFailed:
		return p.failed(crossMark)
	default:
		return p.dim(skipMark)
	}
}

func renderStages(b *strings.Builder, p palette, r *orchestration.Report) {
	if len(r.Stages) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(p.section("  Stages"))
	b.WriteString("\n")
	for _, s := range r.Stages {
		line := fmt.Sprintf("  %-15s %d ok, %d failed, %d skipped", s.Stage, s.Successful, s.Failed, s.Skipped)
		if s.Warnings > 0 {
			line += fmt.Sprintf(", %d warnings", s.Warnings)
		}
		if s.Failed > 0 {
			b.WriteString(p.failed(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
}

func renderSummary(b *strings.Builder, p palette, r *orchestration.Report) {
	s := r.Summary
	b.WriteString("\n")
	fmt.Fprintf(b, "  Total: %d  %s  %s  %s  %s\n",
		s.Total,
		p.ok(fmt.Sprintf("Successful: %d", s.Successful)),
		p.warning(fmt.Sprintf("With warnings: %d", s.SuccessWithWarnings)),
		p.failed(fmt.Sprintf("Failed: %d", s.Failed)),
		p.dim(fmt.Sprintf("Skipped: %d", s.Skipped)),
	)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
