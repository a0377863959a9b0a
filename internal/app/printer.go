package app

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// Status glyphs for step outcome lines.
const (
	glyphSuccess     = "✓"
	glyphSkipped     = "↷"
	glyphRecoverable = "!"
	glyphFatal       = "✗"
)

// Printer renders run progress and reports to a terminal. It implements
// pipeline.Observer so it can be handed straight to the runner.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool

	success     lipgloss.Style
	skipped     lipgloss.Style
	recoverable lipgloss.Style
	fatal       lipgloss.Style
	dim         lipgloss.Style
	bold        lipgloss.Style

	// haltCause remembers the result that halted the run so PrintReport
	// can render the full classified error.
	haltCause *pipeline.StepResult
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{out: out, noColor: noColor}
	if noColor {
		plain := lipgloss.NewStyle()
		p.success, p.skipped, p.recoverable, p.fatal, p.dim, p.bold =
			plain, plain, plain, plain, plain, plain
		return p
	}

	p.success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	p.skipped = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	p.recoverable = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	p.fatal = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	p.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	p.bold = lipgloss.NewStyle().Bold(true)
	return p
}

// StepStarted prints the step header before the first attempt and a retry
// note on later ones.
func (p *Printer) StepStarted(name pipeline.StepName, kind pipeline.StepKind, attempt int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if attempt == 1 {
		fmt.Fprintf(p.out, "%s %s %s (%s)\n",
			p.timestamp(), p.dim.Render("→"), name, kind)
		return
	}
	fmt.Fprintf(p.out, "%s %s %s (attempt %d)\n",
		p.timestamp(), p.dim.Render("↻"), name, attempt)
}

// StepFinished prints the step's terminal outcome line.
func (p *Printer) StepFinished(result pipeline.StepResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	glyph, style := p.statusStyle(result.Status())
	line := fmt.Sprintf("%s %s %s %s",
		p.timestamp(), style.Render(glyph), result.Name(),
		p.dim.Render(result.Elapsed().Round(time.Millisecond).String()))
	if msg := result.Message(); msg != "" && result.Status() != pipeline.StatusSuccess {
		line += " " + p.dim.Render("("+msg+")")
	}
	fmt.Fprintln(p.out, line)

	if result.Status().Halts() {
		p.haltCause = &result
	}
}

// PrintReport renders the run summary, including the halt cause when the run
// stopped early.
func (p *Printer) PrintReport(report pipeline.RunReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	summary := report.Summarize()

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s %s\n",
		p.bold.Render("Run:"), report.RunID)
	fmt.Fprintf(p.out, "%s %s on %s%s\n",
		p.bold.Render("Pipeline:"), report.Pipeline, report.Environment, p.dryRunSuffix(report))
	fmt.Fprintf(p.out, "%s %s in %s\n",
		p.bold.Render("Status:"), p.renderStatus(report.Status),
		report.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(p.out, "%s %d steps: %d succeeded, %d skipped, %d recoverable, %d fatal\n",
		p.bold.Render("Steps:"), summary.Total, summary.Succeeded,
		summary.Skipped, summary.Recoverable, summary.Fatal)

	if report.HaltedAt != "" {
		fmt.Fprintf(p.out, "%s %s\n", p.bold.Render("Halted at:"), report.HaltedAt)
		p.printHaltCause()
	}
}

// printHaltCause renders the full classified error that halted the run.
// Callers hold p.mu.
func (p *Printer) printHaltCause() {
	if p.haltCause == nil || p.haltCause.Err() == nil {
		return
	}

	err := p.haltCause.Err()
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		fmt.Fprintln(p.out, p.fatal.Render(perr.Format()))
		return
	}
	fmt.Fprintln(p.out, p.fatal.Render(err.Error()))
}

// PrintSteps renders the stored step records of a report.
func (p *Printer) PrintSteps(records []pipeline.StepRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, rec := range records {
		glyph, style := p.statusStyle(pipeline.StepStatus(rec.Status))
		line := fmt.Sprintf("  %s %s %s %s",
			style.Render(glyph), rec.Name,
			p.dim.Render("("+rec.Kind+")"),
			p.dim.Render(rec.Elapsed.Round(time.Millisecond).String()))
		if rec.Attempts > 1 {
			line += p.dim.Render(fmt.Sprintf(" after %d attempts", rec.Attempts))
		}
		if rec.Message != "" && pipeline.StepStatus(rec.Status) != pipeline.StatusSuccess {
			line += "\n" + p.dim.Render("      "+rec.Message)
		}
		fmt.Fprintln(p.out, line)
	}
}

// PrintRunList renders a one-line-per-run table for stored reports.
func (p *Printer) PrintRunList(reports []pipeline.RunReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(reports) == 0 {
		fmt.Fprintln(p.out, "No stored runs.")
		return
	}

	for _, report := range reports {
		fmt.Fprintf(p.out, "%s  %s  %-12s %s/%s\n",
			report.RunID,
			report.StartedAt.Local().Format("2006-01-02 15:04:05"),
			p.renderStatus(report.Status),
			report.Pipeline, report.Environment)
	}
}

func (p *Printer) renderStatus(status pipeline.RunStatus) string {
	switch status {
	case pipeline.RunCompleted:
		return p.success.Render(status.String())
	case pipeline.RunCancelled:
		return p.skipped.Render(status.String())
	default:
		return p.fatal.Render(status.String())
	}
}

func (p *Printer) statusStyle(status pipeline.StepStatus) (string, lipgloss.Style) {
	switch status {
	case pipeline.StatusSuccess:
		return glyphSuccess, p.success
	case pipeline.StatusSkipped:
		return glyphSkipped, p.skipped
	case pipeline.StatusFailedRecoverable:
		return glyphRecoverable, p.recoverable
	default:
		return glyphFatal, p.fatal
	}
}

func (p *Printer) dryRunSuffix(report pipeline.RunReport) string {
	if report.DryRun {
		return p.dim.Render(" (dry run)")
	}
	return ""
}

func (p *Printer) timestamp() string {
	return p.dim.Render(time.Now().Format("15:04:05"))
}
