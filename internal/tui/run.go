// Package tui renders a live run view while a pipeline executes: a spinner
// for the running step and one row per finished step.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// Row states.
const (
	rowRunning  = "running"
	rowRetrying = "retrying"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	recoverableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	fatalStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// StepStartedMsg reports a step attempt beginning.
type StepStartedMsg struct {
	Name    string
	Kind    string
	Attempt int
}

// StepFinishedMsg reports a step's terminal outcome.
type StepFinishedMsg struct {
	Name     string
	Status   pipeline.StepStatus
	Message  string
	Attempts int
	Elapsed  time.Duration
}

// RunFinishedMsg reports the whole run's outcome and quits the view.
type RunFinishedMsg struct {
	Status pipeline.RunStatus
}

// stepRow is one line of the step list.
type stepRow struct {
	name     string
	kind     string
	state    string
	attempts int
	elapsed  time.Duration
	message  string
}

// Model is the live run view.
type Model struct {
	pipeline    string
	environment string
	dryRun      bool

	spinner   spinner.Model
	rows      []stepRow
	index     map[string]int
	done      bool
	runStatus pipeline.RunStatus
}

// NewModel creates the view for one run.
func NewModel(pipelineName, environment string, dryRun bool) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		pipeline:    pipelineName,
		environment: environment,
		dryRun:      dryRun,
		spinner:     s,
		index:       make(map[string]int),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			// The surrounding signal handler cancels the run; the view
			// stays up to show the cancelled report.
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StepStartedMsg:
		if i, ok := m.index[msg.Name]; ok {
			m.rows[i].state = rowRetrying
			m.rows[i].attempts = msg.Attempt
			return m, nil
		}
		m.index[msg.Name] = len(m.rows)
		m.rows = append(m.rows, stepRow{
			name:     msg.Name,
			kind:     msg.Kind,
			state:    rowRunning,
			attempts: msg.Attempt,
		})
		return m, nil

	case StepFinishedMsg:
		if i, ok := m.index[msg.Name]; ok {
			m.rows[i].state = msg.Status.String()
			m.rows[i].attempts = msg.Attempts
			m.rows[i].elapsed = msg.Elapsed
			m.rows[i].message = msg.Message
		}
		return m, nil

	case RunFinishedMsg:
		m.done = true
		m.runStatus = msg.Status
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Running %s on %s", m.pipeline, m.environment)
	if m.dryRun {
		title += dimStyle.Render(" (dry run)")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for _, row := range m.rows {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(renderRunStatus(m.runStatus))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(row stepRow) string {
	var marker, suffix string

	switch row.state {
	case rowRunning:
		marker = m.spinner.View()
	case rowRetrying:
		marker = m.spinner.View()
		suffix = dimStyle.Render(fmt.Sprintf(" (attempt %d)", row.attempts))
	case pipeline.StatusSuccess.String():
		marker = successStyle.Render("✓")
		suffix = dimStyle.Render(" " + row.elapsed.Round(time.Millisecond).String())
	case pipeline.StatusSkipped.String():
		marker = skippedStyle.Render("↷")
	case pipeline.StatusFailedRecoverable.String():
		marker = recoverableStyle.Render("!")
	default:
		marker = fatalStyle.Render("✗")
	}

	line := fmt.Sprintf("  %s %s %s%s", marker, row.name, dimStyle.Render("("+row.kind+")"), suffix)
	if row.message != "" && row.state != pipeline.StatusSuccess.String() {
		line += "\n" + dimStyle.Render("      "+row.message)
	}
	return line
}

func renderRunStatus(status pipeline.RunStatus) string {
	switch status {
	case pipeline.RunCompleted:
		return successStyle.Render("Run completed.")
	case pipeline.RunCancelled:
		return skippedStyle.Render("Run cancelled.")
	default:
		return fatalStyle.Render("Run halted.")
	}
}
