package tasks

import (
	"context"

	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"github.com/haulbase/haulbase/internal/workflow"
	"go.uber.org/zap"
)

// OverlapChecker is the slice of the match-predicate manager this task
// needs.
type OverlapChecker interface {
	GetOverlappingBillingConfigurations(ctx context.Context, candidate *domain.BillingConfiguration) ([]domain.BillingConfiguration, error)
}

// MatchPredicateUniqueConstraintChecker flags the pipeline when the
// target configuration's predicates collide with an existing sibling.
// The save orchestration turns a false flag into a rejected save; the
// task itself never fails the run.
type MatchPredicateUniqueConstraintChecker struct {
	checker OverlapChecker
	log     *zap.Logger
}

func NewMatchPredicateUniqueConstraintChecker(checker OverlapChecker, log *zap.Logger) *MatchPredicateUniqueConstraintChecker {
	return &MatchPredicateUniqueConstraintChecker{
		checker: checker,
		log:     log.Named("billingconfig.unique_constraint"),
	}
}

func (t *MatchPredicateUniqueConstraintChecker) Name() string {
	return "billingconfig.match_predicate_unique_constraint"
}

func (t *MatchPredicateUniqueConstraintChecker) Stages() []workflow.Stage {
	return []workflow.Stage{workflow.StageBeforeInsert, workflow.StageBeforeUpdate}
}

// ShouldRun skips configurations with no enabled predicates; those can
// never collide and the flag keeps its default.
func (t *MatchPredicateUniqueConstraintChecker) ShouldRun(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) (bool, error) {
	return len(run.Target.EnabledPredicates()) > 0, nil
}

func (t *MatchPredicateUniqueConstraintChecker) Run(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) error {
	overlapping, err := t.checker.GetOverlappingBillingConfigurations(ctx, run.Target)
	if err != nil {
		return err
	}

	run.Flags.MatchPredicateHashIsUnique = len(overlapping) == 0

	if len(overlapping) > 0 {
		ids := make([]string, 0, len(overlapping))
		for _, cfg := range overlapping {
			ids = append(ids, cfg.ID.String())
		}
		t.log.Warn("match criteria collide with existing configurations",
			zap.String("billing_configuration_id", run.Target.ID.String()),
			zap.Strings("overlapping_ids", ids),
		)
	}

	return nil
}
