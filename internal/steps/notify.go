package steps

import (
	"fmt"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

// notifyWebhookStep posts a status message to the notification sink. It runs
// as the last step of a pipeline, so every earlier step has succeeded when
// it fires; delivery failures are recoverable and never flip the run.
type notifyWebhookStep struct {
	baseStep
	notifier ports.Notifier
	with     map[string]string
}

func (s *notifyWebhookStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	if rc.DryRun() {
		return nil
	}

	runID := ec.Get(KeyRunID)
	env := ec.Get(KeyRunEnvironment)

	err := s.notifier.Notify(rc.Context(), ports.Notification{
		Title:  firstOf(s.with["title"], fmt.Sprintf("relay run %s", runID)),
		Body:   firstOf(s.with["message"], fmt.Sprintf("pipeline steps completed on %s", env)),
		Status: firstOf(s.with["status"], "completed"),
		RunID:  runID,
	})
	if err != nil {
		return pipeline.NewNotificationError(s.name, err)
	}
	return nil
}
