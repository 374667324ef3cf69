package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"github.com/haulbase/haulbase/internal/billingconfig/hash"
	"github.com/haulbase/haulbase/internal/billingconfig/overlap"
	"github.com/haulbase/haulbase/internal/billingconfig/rank"
	"github.com/haulbase/haulbase/internal/billingconfig/tasks"
	"github.com/haulbase/haulbase/internal/config"
	invoiceconfigdomain "github.com/haulbase/haulbase/internal/invoiceconfig/domain"
	salesdomain "github.com/haulbase/haulbase/internal/salesline/domain"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"github.com/haulbase/haulbase/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log            *zap.Logger
	GenID          *snowflake.Node
	Cfg            config.Config
	Rules          *config.MatchingRulesHolder `optional:"true"`
	Repo           domain.Repository
	InvoiceConfigs invoiceconfigdomain.Repository
	Tickets        ticketdomain.Repository
	SalesLines     salesdomain.Service
}

// Service is the billing-configuration match-predicate manager. It owns
// the save pipeline (hashing, single-default, uniqueness, reevaluation
// tasks) and the ticket-to-configuration matching operations.
type Service struct {
	log            *zap.Logger
	genID          *snowflake.Node
	rules          *config.MatchingRulesHolder
	repo           domain.Repository
	invoiceConfigs invoiceconfigdomain.Repository
	evaluator      *rank.Evaluator
	checker        *overlap.Checker
	runner         *workflow.Runner[domain.BillingConfiguration]
}

func New(p Params) domain.Service {
	rules := p.Rules
	if rules == nil {
		rules = config.NewStaticMatchingRulesHolder(config.DefaultMatchingRules())
	}

	s := &Service{
		log:            p.Log.Named("billingconfig.service"),
		genID:          p.GenID,
		rules:          rules,
		repo:           p.Repo,
		invoiceConfigs: p.InvoiceConfigs,
		evaluator:      rank.NewEvaluator(),
		checker:        overlap.NewChecker(p.Repo),
	}

	s.runner = workflow.NewRunner(p.Log,
		tasks.NewGenerateMatchPredicateHashTask(p.GenID, hash.NewHasher()),
		tasks.NewSingleDefaultConfigurationChecker(p.Repo, p.Log),
		tasks.NewMatchPredicateUniqueConstraintChecker(s, p.Log),
		tasks.NewReevaluateTask(s, p.Tickets, p.SalesLines, p.Cfg.Matching.ReevaluateBatchSize, p.Log),
	)

	return s
}

func (s *Service) Save(ctx context.Context, configuration *domain.BillingConfiguration) (*domain.BillingConfiguration, error) {
	if configuration.CustomerGeneratorID == 0 {
		return nil, domain.ErrInvalidGenerator
	}
	if configuration.BillingCustomerAccountID == 0 {
		return nil, domain.ErrInvalidCustomer
	}
	if strings.TrimSpace(configuration.Name) == "" {
		return nil, domain.ErrInvalidName
	}

	var (
		run  *workflow.Context[domain.BillingConfiguration]
		pre  workflow.Stage
		post workflow.Stage
	)

	if configuration.ID == 0 {
		now := time.Now().UTC()
		configuration.ID = s.genID.Generate()
		configuration.CreatedAt = now
		configuration.UpdatedAt = now
		run = workflow.NewInsertContext(configuration)
		pre, post = workflow.StageBeforeInsert, workflow.StagePostInsert
	} else {
		original, err := s.repo.FindByID(ctx, configuration.ID)
		if err != nil {
			return nil, err
		}
		if original == nil {
			return nil, domain.ErrNotFound
		}
		run = workflow.NewUpdateContext(configuration, original)
		pre, post = workflow.StageBeforeUpdate, workflow.StagePostUpdate
	}

	if err := s.runner.Run(ctx, pre, run); err != nil {
		return nil, err
	}

	if !run.Flags.MatchPredicateHashIsUnique {
		return nil, domain.ErrMatchCriteriaNotUnique
	}

	if err := s.repo.Save(ctx, configuration); err != nil {
		return nil, err
	}

	if err := s.runner.Run(ctx, post, run); err != nil {
		return nil, err
	}

	return configuration, nil
}

func (s *Service) GetBillingConfigurations(ctx context.Context, ticket *ticketdomain.TruckTicket, includeForAutomation bool) ([]domain.BillingConfiguration, error) {
	if ticket == nil || ticket.GeneratorID == 0 {
		return nil, domain.ErrInvalidGenerator
	}

	configurations, err := s.repo.ListForAutomation(ctx, ticket.GeneratorID, includeForAutomation)
	if err != nil {
		return nil, err
	}

	effective := ticket.EffectiveDateOrLoadDate()
	candidates := make([]domain.BillingConfiguration, 0, len(configurations))
	for _, cfg := range configurations {
		if !cfg.AppliesOn(effective) {
			continue
		}
		if !cfg.AppliesToFacility(ticket.FacilityID) {
			continue
		}
		if cfg.InvoiceConfigurationID != 0 {
			admitted, err := s.invoiceConfigAdmits(ctx, cfg.InvoiceConfigurationID, ticket)
			if err != nil {
				return nil, err
			}
			if !admitted {
				continue
			}
		}
		candidates = append(candidates, cfg)
	}

	return candidates, nil
}

func (s *Service) invoiceConfigAdmits(ctx context.Context, id snowflake.ID, ticket *ticketdomain.TruckTicket) (bool, error) {
	invoiceConfig, err := s.invoiceConfigs.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if invoiceConfig == nil {
		// Dangling link; the configuration-level filters already passed.
		return true, nil
	}
	return invoiceConfig.Admits(ticket), nil
}

func (s *Service) GetMatchingBillingConfiguration(candidates []domain.BillingConfiguration, ticket *ticketdomain.TruckTicket) domain.BillingConfiguration {
	if ticket == nil || len(candidates) == 0 {
		return domain.BillingConfiguration{}
	}

	effective := ticket.EffectiveDateOrLoadDate()

	byID := make(map[snowflake.ID]domain.BillingConfiguration, len(candidates))
	var rankCandidates []rank.Candidate
	for _, cfg := range candidates {
		// Configurations whose own window excludes the ticket are
		// skipped before any predicate ranking occurs.
		if !cfg.AppliesOn(effective) {
			continue
		}
		byID[cfg.ID] = cfg
		for _, p := range cfg.EnabledPredicates() {
			rankCandidates = append(rankCandidates, rank.Candidate{
				EntityID:               p.ID,
				BillingConfigurationID: cfg.ID,
				Name:                   cfg.Name,
				IncludeForAutomation:   cfg.IncludeForAutomation,
				Predicate:              p,
			})
		}
	}

	ranked := s.evaluator.EvaluatePredicateRank(rankCandidates, ticket, s.rankOptions())
	if len(ranked) == 0 {
		return domain.BillingConfiguration{}
	}

	return byID[ranked[0].BillingConfigurationID]
}

func (s *Service) rankOptions() rank.Options {
	rules := s.rules.Get()
	opts := rank.DefaultOptions()
	opts.Weights = rank.Weights{Value: rules.ValueWeight, NotSet: rules.NotSetWeight, Any: rules.AnyWeight}
	opts.AllowCatchAll = rules.AllowCatchAll
	return opts
}

func (s *Service) SelectAutomatedBillingConfiguration(ctx context.Context, ticket *ticketdomain.TruckTicket) (domain.BillingConfiguration, error) {
	candidates, err := s.GetBillingConfigurations(ctx, ticket, true)
	if err != nil {
		return domain.BillingConfiguration{}, err
	}
	return s.GetMatchingBillingConfiguration(candidates, ticket), nil
}

func (s *Service) GetOverlappingBillingConfigurations(ctx context.Context, candidate *domain.BillingConfiguration) ([]domain.BillingConfiguration, error) {
	return s.checker.GetOverlappingBillingConfigurations(ctx, candidate)
}
