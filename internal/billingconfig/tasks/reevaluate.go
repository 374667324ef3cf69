package tasks

import (
	"context"
	"fmt"

	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"github.com/haulbase/haulbase/internal/billingconfig/rank"
	"github.com/haulbase/haulbase/internal/logger"
	salesdomain "github.com/haulbase/haulbase/internal/salesline/domain"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"github.com/haulbase/haulbase/internal/workflow"
	"go.uber.org/zap"
)

// ConfigurationMatcher is the slice of the match-predicate manager the
// reevaluation needs.
type ConfigurationMatcher interface {
	GetBillingConfigurations(ctx context.Context, ticket *ticketdomain.TruckTicket, includeForAutomation bool) ([]domain.BillingConfiguration, error)
	GetMatchingBillingConfiguration(candidates []domain.BillingConfiguration, ticket *ticketdomain.TruckTicket) domain.BillingConfiguration
}

// UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask
// re-runs matching for the truck tickets associated with an edited
// configuration. Tickets that no longer satisfy the new predicates move
// to the next best automated configuration (re-pricing their sales
// lines when the billing customer changes) or are detached, with
// orphaned sales lines removed. Running it again without an intervening
// change performs no writes.
type UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask struct {
	matcher   ConfigurationMatcher
	tickets   ticketdomain.Repository
	sales     salesdomain.Service
	evaluator *rank.Evaluator
	batchSize int
	log       *zap.Logger
}

func NewReevaluateTask(
	matcher ConfigurationMatcher,
	tickets ticketdomain.Repository,
	sales salesdomain.Service,
	batchSize int,
	log *zap.Logger,
) *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask {
	return &UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask{
		matcher:   matcher,
		tickets:   tickets,
		sales:     sales,
		evaluator: rank.NewEvaluator(),
		batchSize: batchSize,
		log:       log.Named("billingconfig.reevaluate"),
	}
}

func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) Name() string {
	return "billingconfig.truck_ticket_association_reevaluate"
}

func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) Stages() []workflow.Stage {
	return []workflow.Stage{workflow.StagePostUpdate}
}

// ShouldRun requires an update of a non-default configuration whose
// enabled predicate content actually changed.
func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) ShouldRun(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) (bool, error) {
	if run.Operation != workflow.OperationUpdate || run.Original == nil {
		return false, nil
	}
	if run.Target.IsDefaultConfiguration {
		return false, nil
	}
	return predicatesChanged(run.Original, run.Target), nil
}

func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) Run(ctx context.Context, run *workflow.Context[domain.BillingConfiguration]) error {
	target := run.Target
	ctx = logger.WithLogger(ctx, t.log.With(
		zap.String("billing_configuration_id", target.ID.String()),
	))

	tickets, err := t.tickets.ListByBillingConfiguration(ctx, target.ID, t.batchSize)
	if err != nil {
		return fmt.Errorf("list associated tickets: %w", err)
	}

	for _, ticket := range tickets {
		if ticket == nil {
			continue
		}
		if t.stillMatches(target, ticket) {
			continue
		}
		if err := t.reassign(ctx, target, ticket); err != nil {
			return err
		}
	}

	return nil
}

// stillMatches checks the edited configuration's own window, facility
// membership and every enabled predicate against the ticket.
func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) stillMatches(cfg *domain.BillingConfiguration, ticket *ticketdomain.TruckTicket) bool {
	if !cfg.AppliesOn(ticket.EffectiveDateOrLoadDate()) {
		return false
	}
	if !cfg.AppliesToFacility(ticket.FacilityID) {
		return false
	}
	for _, p := range cfg.EnabledPredicates() {
		if t.evaluator.IsBillingConfigurationMatch(ticket, p) {
			return true
		}
	}
	return false
}

func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) reassign(ctx context.Context, previous *domain.BillingConfiguration, ticket *ticketdomain.TruckTicket) error {
	candidates, err := t.matcher.GetBillingConfigurations(ctx, ticket, true)
	if err != nil {
		return fmt.Errorf("fetch candidate configurations: %w", err)
	}

	best := t.matcher.GetMatchingBillingConfiguration(candidates, ticket)
	if best.ID == 0 || best.ID == previous.ID {
		return t.detach(ctx, ticket)
	}

	customerChanged := best.BillingCustomerAccountID != ticket.BillingCustomerAccountID
	ticket.BillingConfigurationID = best.ID
	ticket.BillingCustomerAccountID = best.BillingCustomerAccountID

	if err := t.tickets.Save(ctx, ticket); err != nil {
		return fmt.Errorf("reassign ticket %s: %w", ticket.ID, err)
	}

	t.log.Info("truck ticket reassigned to better matching configuration",
		zap.String("truck_ticket_id", ticket.ID.String()),
		zap.String("previous_configuration_id", previous.ID.String()),
		zap.String("new_configuration_id", best.ID.String()),
	)

	if !customerChanged {
		return nil
	}

	lines, err := t.sales.ListActiveByTruckTicket(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("list sales lines for ticket %s: %w", ticket.ID, err)
	}
	if len(lines) == 0 {
		return nil
	}

	if err := t.sales.PriceRefresh(ctx, lines, best.BillingCustomerAccountID); err != nil {
		return fmt.Errorf("refresh sales line prices: %w", err)
	}
	if err := t.sales.SaveAll(ctx, lines); err != nil {
		return fmt.Errorf("persist repriced sales lines: %w", err)
	}
	t.sales.PublishChanged(ctx, lines)

	return nil
}

func (t *UpdatedBillingConfigurationTruckTicketAssociationReevaluateTask) detach(ctx context.Context, ticket *ticketdomain.TruckTicket) error {
	ticket.BillingConfigurationID = 0

	if err := t.tickets.Save(ctx, ticket); err != nil {
		return fmt.Errorf("detach ticket %s: %w", ticket.ID, err)
	}

	t.log.Info("truck ticket detached, no matching configuration",
		zap.String("truck_ticket_id", ticket.ID.String()),
	)

	lines, err := t.sales.ListActiveByTruckTicket(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("list sales lines for ticket %s: %w", ticket.ID, err)
	}
	if len(lines) == 0 {
		return nil
	}

	if err := t.sales.DeleteAll(ctx, lines); err != nil {
		return fmt.Errorf("delete orphaned sales lines: %w", err)
	}
	t.sales.PublishChanged(ctx, lines)

	return nil
}

// predicatesChanged compares the enabled predicate content (hash plus
// validity window) between the original and edited configurations.
func predicatesChanged(original, target *domain.BillingConfiguration) bool {
	originalKeys := predicateKeys(original.EnabledPredicates())
	targetKeys := predicateKeys(target.EnabledPredicates())

	if len(originalKeys) != len(targetKeys) {
		return true
	}
	for key := range targetKeys {
		if !originalKeys[key] {
			return true
		}
	}
	return false
}

func predicateKeys(predicates []domain.MatchPredicate) map[string]bool {
	keys := make(map[string]bool, len(predicates))
	for _, p := range predicates {
		key := p.Hash
		if p.StartDate != nil {
			key += "|" + p.StartDate.UTC().String()
		}
		if p.EndDate != nil {
			key += "|" + p.EndDate.UTC().String()
		}
		keys[key] = true
	}
	return keys
}
