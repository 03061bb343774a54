// Package report renders extraction progress and summaries for a terminal.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/bave/unp7m/internal/extract"
)

// Terminal colors.
const (
	Success = lipgloss.Color("2") // Green
	Warning = lipgloss.Color("3") // Yellow
	Error   = lipgloss.Color("1") // Red
	Muted   = lipgloss.Color("245")
)

// DefaultBarWidth is the width of the progress bar in cells.
const DefaultBarWidth = 24

// Option configures a Printer.
type Option func(*Printer)

// WithFailures controls whether each failed file is printed with its error.
func WithFailures(show bool) Option {
	return func(p *Printer) {
		p.showFailures = show
	}
}

// WithQuiet suppresses per-file lines. The summary is still printed.
func WithQuiet(quiet bool) Option {
	return func(p *Printer) {
		p.quiet = quiet
	}
}

// WithBarWidth sets the progress bar width.
func WithBarWidth(width int) Option {
	return func(p *Printer) {
		p.barWidth = width
	}
}

// Printer writes extraction events as text lines.
type Printer struct {
	out          io.Writer
	showFailures bool
	quiet        bool
	barWidth     int

	bar     progress.Model
	success lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

// New creates a Printer writing to w. Colors are used only when w is a
// terminal that supports them.
func New(w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:          w,
		showFailures: true,
		barWidth:     DefaultBarWidth,
	}

	for _, opt := range opts {
		opt(p)
	}

	r := lipgloss.NewRenderer(w)
	p.success = r.NewStyle().Foreground(Success)
	p.failed = r.NewStyle().Foreground(Error).Bold(true)
	p.skipped = r.NewStyle().Foreground(Warning)
	p.muted = r.NewStyle().Foreground(Muted)
	p.title = r.NewStyle().Bold(true)
	p.bar = progress.New(
		progress.WithWidth(p.barWidth),
		progress.WithoutPercentage(),
		progress.WithSolidFill(string(Success)),
		progress.WithColorProfile(r.ColorProfile()),
	)

	return p
}

// Handle renders an event from extract.Extractor.
func (p *Printer) Handle(ev extract.Event) {
	switch {
	case ev.Progress != nil:
		p.Progress(*ev.Progress)
	case ev.Summary != nil:
		p.Summary(*ev.Summary)
	}
}

// Progress renders the snapshot taken after one file.
func (p *Printer) Progress(pr extract.Progress) {
	if p.quiet {
		if p.showFailures && pr.Outcome.Kind == extract.KindFailed {
			p.failure(pr.Outcome)
		}
		return
	}

	var percent float64
	if pr.Total > 0 {
		percent = float64(pr.Processed) / float64(pr.Total)
	}

	fmt.Fprintf(p.out, "%s %s %s %s\n",
		p.bar.ViewAs(percent),
		p.muted.Render(fmt.Sprintf("%d/%d", pr.Processed, pr.Total)),
		p.kindLabel(pr.Outcome.Kind),
		filepath.Base(pr.Current),
	)

	if p.showFailures && pr.Outcome.Kind == extract.KindFailed {
		p.failure(pr.Outcome)
	}
}

// Summary renders the terminal summary of a batch.
func (p *Printer) Summary(s extract.Summary) {
	if s.Total == 0 {
		fmt.Fprintln(p.out, p.muted.Render("No envelope files to process"))
		return
	}

	parts := []string{p.success.Render(fmt.Sprintf("%d extracted", s.Succeeded))}
	if s.Failed > 0 {
		parts = append(parts, p.failed.Render(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.Skipped > 0 {
		parts = append(parts, p.skipped.Render(fmt.Sprintf("%d skipped", s.Skipped)))
	}

	fmt.Fprintf(p.out, "%s %s\n",
		p.title.Render(fmt.Sprintf("Processed %d/%d:", s.Succeeded+s.Failed+s.Skipped, s.Total)),
		strings.Join(parts, ", "),
	)
}

func (p *Printer) failure(o extract.Outcome) {
	fmt.Fprintf(p.out, "  %s %s: %v\n", p.failed.Render("error"), o.Path, o.Err)
}

func (p *Printer) kindLabel(k extract.Kind) string {
	switch k {
	case extract.KindSuccess:
		return p.success.Render("ok     ")
	case extract.KindFailed:
		return p.failed.Render("failed ")
	case extract.KindSkipped:
		return p.skipped.Render("skipped")
	default:
		return k.String()
	}
}
