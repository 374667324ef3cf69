package tasks

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"github.com/haulbase/haulbase/internal/billingconfig/hash"
	"github.com/haulbase/haulbase/internal/workflow"
)

// GenerateMatchPredicateHashTask assigns identities to new predicates
// and (re)computes content hashes for enabled ones before every save.
// Disabled predicates carry no hash.
type GenerateMatchPredicateHashTask struct {
	genID  *snowflake.Node
	hasher *hash.Hasher
}

func NewGenerateMatchPredicateHashTask(genID *snowflake.Node, hasher *hash.Hasher) *GenerateMatchPredicateHashTask {
	return &GenerateMatchPredicateHashTask{genID: genID, hasher: hasher}
}

func (t *GenerateMatchPredicateHashTask) Name() string {
	return "billingconfig.generate_match_predicate_hash"
}

func (t *GenerateMatchPredicateHashTask) Stages() []workflow.Stage {
	return []workflow.Stage{workflow.StageBeforeInsert, workflow.StageBeforeUpdate}
}

func (t *GenerateMatchPredicateHashTask) ShouldRun(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) (bool, error) {
	return len(run.Target.MatchCriteria) > 0, nil
}

func (t *GenerateMatchPredicateHashTask) Run(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) error {
	now := time.Now().UTC()
	for i := range run.Target.MatchCriteria {
		p := &run.Target.MatchCriteria[i]
		if p.ID == 0 {
			p.ID = t.genID.Generate()
			p.CreatedAt = now
		}
		p.BillingConfigurationID = run.Target.ID
		p.UpdatedAt = now

		if p.IsEnabled {
			p.Hash = t.hasher.ComputeHash(*p)
		} else {
			p.Hash = ""
		}
	}
	return nil
}
