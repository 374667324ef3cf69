package tasks

import (
	"context"

	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"github.com/haulbase/haulbase/internal/workflow"
	"go.uber.org/zap"
)

// SingleDefaultConfigurationChecker keeps at most one default
// configuration per billing customer: saving a configuration as the
// default clears the flag on its siblings.
type SingleDefaultConfigurationChecker struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewSingleDefaultConfigurationChecker(repo domain.Repository, log *zap.Logger) *SingleDefaultConfigurationChecker {
	return &SingleDefaultConfigurationChecker{
		repo: repo,
		log:  log.Named("billingconfig.single_default"),
	}
}

func (t *SingleDefaultConfigurationChecker) Name() string {
	return "billingconfig.single_default_configuration"
}

func (t *SingleDefaultConfigurationChecker) Stages() []workflow.Stage {
	return []workflow.Stage{workflow.StageBeforeInsert, workflow.StageBeforeUpdate}
}

func (t *SingleDefaultConfigurationChecker) ShouldRun(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) (bool, error) {
	return run.Target.IsDefaultConfiguration, nil
}

func (t *SingleDefaultConfigurationChecker) Run(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) error {
	siblings, err := t.repo.ListDefaults(ctx, run.Target.BillingCustomerAccountID, run.Target.ID)
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		if err := t.repo.ClearDefaultFlag(ctx, sibling.ID); err != nil {
			return err
		}
		t.log.Info("cleared default flag on sibling configuration",
			zap.String("billing_configuration_id", sibling.ID.String()),
			zap.String("replaced_by", run.Target.ID.String()),
		)
	}

	return nil
}
