package steps

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

// infraPlanStep validates the infrastructure configuration and records
// whether changes are pending.
type infraPlanStep struct {
	baseStep
	infra ports.Infra
	with  map[string]string
}

func (s *infraPlanStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	dir := s.with["dir"]
	if dir == "" {
		return pipeline.NewValidationError(s.name, "no infrastructure directory configured")
	}

	if rc.DryRun() {
		ec.Set(KeyInfraChanges, "false")
		return nil
	}

	if err := s.infra.Validate(rc.Context(), dir); err != nil {
		return pipeline.NewValidationError(s.name, fmt.Sprintf("infrastructure configuration is invalid: %v", err))
	}

	pending, err := s.infra.Plan(rc.Context(), dir)
	if err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}

	ec.Set(KeyInfraChanges, strconv.FormatBool(pending))
	return nil
}

// infraApplyStep applies pending infrastructure changes. When the preceding
// plan found nothing pending the step records itself as skipped.
type infraApplyStep struct {
	baseStep
	infra ports.Infra
	with  map[string]string
}

func (s *infraApplyStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	dir := s.with["dir"]
	if dir == "" {
		return pipeline.NewValidationError(s.name, "no infrastructure directory configured")
	}

	if ec.Get(KeyInfraChanges) == "false" {
		return pipeline.ErrSkip
	}

	if rc.DryRun() {
		return nil
	}

	if err := s.infra.Apply(rc.Context(), dir); err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}
	return nil
}
