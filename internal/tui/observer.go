package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// Observer forwards runner progress into a running bubbletea program. It
// implements pipeline.Observer.
type Observer struct {
	program *tea.Program
}

// NewObserver creates an Observer feeding the given program.
func NewObserver(program *tea.Program) *Observer {
	return &Observer{program: program}
}

// StepStarted forwards a step attempt to the view.
func (o *Observer) StepStarted(name pipeline.StepName, kind pipeline.StepKind, attempt int) {
	o.program.Send(StepStartedMsg{
		Name:    name.String(),
		Kind:    kind.String(),
		Attempt: attempt,
	})
}

// StepFinished forwards a step outcome to the view.
func (o *Observer) StepFinished(result pipeline.StepResult) {
	o.program.Send(StepFinishedMsg{
		Name:     result.Name().String(),
		Status:   result.Status(),
		Message:  result.Message(),
		Attempts: result.Attempts(),
		Elapsed:  result.Elapsed(),
	})
}

// Ensure Observer implements pipeline.Observer.
var _ pipeline.Observer = (*Observer)(nil)
