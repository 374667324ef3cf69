package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/haulbase/haulbase/internal/account/domain"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"github.com/haulbase/haulbase/internal/billingconfig/repository"
	"github.com/haulbase/haulbase/internal/config"
	invoiceconfigdomain "github.com/haulbase/haulbase/internal/invoiceconfig/domain"
	invoiceconfigrepo "github.com/haulbase/haulbase/internal/invoiceconfig/repository"
	salesdomain "github.com/haulbase/haulbase/internal/salesline/domain"
	"github.com/haulbase/haulbase/internal/salesline/event"
	salesservice "github.com/haulbase/haulbase/internal/salesline/service"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	ticketrepo "github.com/haulbase/haulbase/internal/truckticket/repository"
	pkgdb "github.com/haulbase/haulbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type testEnv struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	tickets ticketdomain.Repository
	sales   salesdomain.Service
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.CustomerAccount{},
		&invoiceconfigdomain.InvoiceConfiguration{},
		&domain.BillingConfiguration{},
		&domain.MatchPredicate{},
		&ticketdomain.TruckTicket{},
		&salesdomain.AccountProductRate{},
		&salesdomain.SalesLine{},
		&salesdomain.SalesLineEvent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	tickets := ticketrepo.Provide(db)
	sales := salesservice.New(salesservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Publisher: event.NewOutboxPublisher(db, node),
	})

	svc := New(Params{
		Log:            log,
		GenID:          node,
		Cfg:            config.Config{Matching: config.MatchingConfig{ReevaluateBatchSize: 100}},
		Repo:           repository.Provide(db),
		InvoiceConfigs: invoiceconfigrepo.Provide(db),
		Tickets:        tickets,
		SalesLines:     sales,
	})

	return &testEnv{svc: svc, db: db, node: node, tickets: tickets, sales: sales}
}

func predicate(streamState domain.ValueState, stream ticketdomain.Stream, wellState domain.ValueState, well ticketdomain.WellClassification) domain.MatchPredicate {
	return domain.MatchPredicate{
		IsEnabled:               true,
		Stream:                  stream,
		StreamState:             streamState,
		ServiceTypeState:        domain.StateAny,
		SourceLocationState:     domain.StateAny,
		SubstanceState:          domain.StateAny,
		WellClassification:      well,
		WellClassificationState: wellState,
	}
}

func catchAllPredicate() domain.MatchPredicate {
	return predicate(domain.StateAny, "", domain.StateAny, "")
}

func TestSave_InsertAssignsIdentityAndHashes(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	cfg := &domain.BillingConfiguration{
		Name:                     "water at fac 1",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      env.node.Generate(),
		Active:                   true,
		IncludeForAutomation:     true,
		MatchCriteria: []domain.MatchPredicate{
			predicate(domain.StateValue, ticketdomain.StreamWater, domain.StateAny, ""),
		},
	}

	saved, err := env.svc.Save(ctx, cfg)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	require.Len(t, saved.MatchCriteria, 1)
	assert.NotZero(t, saved.MatchCriteria[0].ID)
	assert.Equal(t, saved.ID, saved.MatchCriteria[0].BillingConfigurationID)
	assert.Len(t, saved.MatchCriteria[0].Hash, 64)

	var count int64
	env.db.Model(&domain.MatchPredicate{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSave_Validation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.Save(ctx, &domain.BillingConfiguration{
		Name:                     "no generator",
		BillingCustomerAccountID: env.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGenerator)

	_, err = env.svc.Save(ctx, &domain.BillingConfiguration{
		Name:                "no customer",
		CustomerGeneratorID: env.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = env.svc.Save(ctx, &domain.BillingConfiguration{
		Name:                     "   ",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      env.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestSave_RejectsDuplicateMatchCriteria(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	generatorID := env.node.Generate()

	first := &domain.BillingConfiguration{
		Name:                     "first",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		MatchCriteria: []domain.MatchPredicate{
			predicate(domain.StateValue, ticketdomain.StreamWater, domain.StateAny, ""),
		},
	}
	_, err := env.svc.Save(ctx, first)
	require.NoError(t, err)

	duplicate := &domain.BillingConfiguration{
		Name:                     "second",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		MatchCriteria: []domain.MatchPredicate{
			predicate(domain.StateValue, ticketdomain.StreamWater, domain.StateAny, ""),
		},
	}
	_, err = env.svc.Save(ctx, duplicate)
	assert.ErrorIs(t, err, domain.ErrMatchCriteriaNotUnique)

	// Nothing persisted for the rejected configuration.
	var count int64
	env.db.Model(&domain.BillingConfiguration{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSave_AllowsDuplicateCriteriaAcrossGenerators(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		cfg := &domain.BillingConfiguration{
			Name:                     "per generator",
			BillingCustomerAccountID: env.node.Generate(),
			CustomerGeneratorID:      env.node.Generate(),
			Active:                   true,
			MatchCriteria: []domain.MatchPredicate{
				predicate(domain.StateValue, ticketdomain.StreamWater, domain.StateAny, ""),
			},
		}
		_, err := env.svc.Save(ctx, cfg)
		require.NoError(t, err)
	}
}

func TestSave_EnforcesSingleDefault(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	customerID := env.node.Generate()

	first := &domain.BillingConfiguration{
		Name:                     "old default",
		BillingCustomerAccountID: customerID,
		CustomerGeneratorID:      env.node.Generate(),
		IsDefaultConfiguration:   true,
		Active:                   true,
	}
	firstSaved, err := env.svc.Save(ctx, first)
	require.NoError(t, err)

	second := &domain.BillingConfiguration{
		Name:                     "new default",
		BillingCustomerAccountID: customerID,
		CustomerGeneratorID:      env.node.Generate(),
		IsDefaultConfiguration:   true,
		Active:                   true,
	}
	_, err = env.svc.Save(ctx, second)
	require.NoError(t, err)

	var reloaded domain.BillingConfiguration
	require.NoError(t, env.db.First(&reloaded, "id = ?", firstSaved.ID).Error)
	assert.False(t, reloaded.IsDefaultConfiguration,
		"previous default must be cleared when a new default is saved")
}

func TestSelectAutomatedBillingConfiguration_SpecificBeatsCatchAll(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	generatorID := env.node.Generate()
	drillingCustomer := env.node.Generate()
	fallbackCustomer := env.node.Generate()

	drillingCfg := &domain.BillingConfiguration{
		Name:                     "drilling water",
		BillingCustomerAccountID: drillingCustomer,
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		IncludeForAutomation:     true,
		MatchCriteria: []domain.MatchPredicate{
			predicate(domain.StateValue, ticketdomain.StreamWater, domain.StateValue, ticketdomain.WellClassificationDrilling),
		},
	}
	_, err := env.svc.Save(ctx, drillingCfg)
	require.NoError(t, err)

	fallbackCfg := &domain.BillingConfiguration{
		Name:                     "everything else",
		BillingCustomerAccountID: fallbackCustomer,
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		IncludeForAutomation:     true,
		MatchCriteria:            []domain.MatchPredicate{catchAllPredicate()},
	}
	fallbackSaved, err := env.svc.Save(ctx, fallbackCfg)
	require.NoError(t, err)

	load := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	drillingTicket := &ticketdomain.TruckTicket{
		ID:                 env.node.Generate(),
		GeneratorID:        generatorID,
		Stream:             ticketdomain.StreamWater,
		WellClassification: ticketdomain.WellClassificationDrilling,
		LoadDate:           &load,
	}
	best, err := env.svc.SelectAutomatedBillingConfiguration(ctx, drillingTicket)
	require.NoError(t, err)
	assert.Equal(t, drillingCfg.ID, best.ID)
	assert.Equal(t, drillingCustomer, best.BillingCustomerAccountID)

	completionsTicket := &ticketdomain.TruckTicket{
		ID:                 env.node.Generate(),
		GeneratorID:        generatorID,
		Stream:             ticketdomain.StreamWater,
		WellClassification: ticketdomain.WellClassificationCompletions,
		LoadDate:           &load,
	}
	best, err = env.svc.SelectAutomatedBillingConfiguration(ctx, completionsTicket)
	require.NoError(t, err)
	assert.Equal(t, fallbackSaved.ID, best.ID)

	otherGeneratorTicket := &ticketdomain.TruckTicket{
		ID:          env.node.Generate(),
		GeneratorID: env.node.Generate(),
		Stream:      ticketdomain.StreamWater,
		LoadDate:    &load,
	}
	best, err = env.svc.SelectAutomatedBillingConfiguration(ctx, otherGeneratorTicket)
	require.NoError(t, err)
	assert.Zero(t, best.ID, "no configuration for an unknown generator")
}

func TestSaveUpdate_RemovedPredicateStopsMatching(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	generatorID := env.node.Generate()

	cfg := &domain.BillingConfiguration{
		Name:                     "water or solids",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		IncludeForAutomation:     true,
		MatchCriteria: []domain.MatchPredicate{
			predicate(domain.StateValue, ticketdomain.StreamWater, domain.StateAny, ""),
			predicate(domain.StateValue, ticketdomain.StreamSolid, domain.StateAny, ""),
		},
	}
	saved, err := env.svc.Save(ctx, cfg)
	require.NoError(t, err)

	kept := saved.MatchCriteria[:0]
	for _, p := range saved.MatchCriteria {
		if p.Stream == ticketdomain.StreamWater {
			kept = append(kept, p)
		}
	}
	saved.MatchCriteria = kept
	_, err = env.svc.Save(ctx, saved)
	require.NoError(t, err)

	var rows int64
	env.db.Model(&domain.MatchPredicate{}).
		Where("billing_configuration_id = ?", saved.ID).
		Count(&rows)
	assert.EqualValues(t, 1, rows, "removed criterion row is deleted")

	load := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	solidsTicket := &ticketdomain.TruckTicket{
		ID:          env.node.Generate(),
		GeneratorID: generatorID,
		Stream:      ticketdomain.StreamSolid,
		LoadDate:    &load,
	}
	best, err := env.svc.SelectAutomatedBillingConfiguration(ctx, solidsTicket)
	require.NoError(t, err)
	assert.Zero(t, best.ID, "solids ticket no longer matches after removal")

	waterTicket := &ticketdomain.TruckTicket{
		ID:          env.node.Generate(),
		GeneratorID: generatorID,
		Stream:      ticketdomain.StreamWater,
		LoadDate:    &load,
	}
	best, err = env.svc.SelectAutomatedBillingConfiguration(ctx, waterTicket)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, best.ID, "kept criterion still matches")
}

func TestGetBillingConfigurations_Filters(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	generatorID := env.node.Generate()
	facilityA := env.node.Generate()
	facilityB := env.node.Generate()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	scoped := &domain.BillingConfiguration{
		Name:                     "facility A, Q1 only",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		IncludeForAutomation:     true,
		StartDate:                &start,
		EndDate:                  &end,
		Facilities:               datatypes.JSONSlice[snowflake.ID]{facilityA},
		MatchCriteria:            []domain.MatchPredicate{catchAllPredicate()},
	}
	_, err := env.svc.Save(ctx, scoped)
	require.NoError(t, err)

	inWindow := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	ticket := &ticketdomain.TruckTicket{
		ID:          env.node.Generate(),
		GeneratorID: generatorID,
		FacilityID:  facilityA,
		LoadDate:    &inWindow,
	}

	candidates, err := env.svc.GetBillingConfigurations(ctx, ticket, true)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	ticket.FacilityID = facilityB
	candidates, err = env.svc.GetBillingConfigurations(ctx, ticket, true)
	require.NoError(t, err)
	assert.Empty(t, candidates, "ticket at another facility is out of scope")

	ticket.FacilityID = facilityA
	outOfWindow := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ticket.LoadDate = &outOfWindow
	candidates, err = env.svc.GetBillingConfigurations(ctx, ticket, true)
	require.NoError(t, err)
	assert.Empty(t, candidates, "ticket outside the validity window is out of scope")

	_, err = env.svc.GetBillingConfigurations(ctx, &ticketdomain.TruckTicket{}, true)
	assert.ErrorIs(t, err, domain.ErrInvalidGenerator)
}

func TestGetBillingConfigurations_InvoiceConfigurationAdmission(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	generatorID := env.node.Generate()

	invoiceCfgID := env.node.Generate()
	require.NoError(t, env.db.Create(&invoiceconfigdomain.InvoiceConfiguration{
		ID:                     invoiceCfgID,
		Name:                   "water only",
		AllFacilities:          true,
		AllSourceLocations:     true,
		AllWellClassifications: true,
		AllSubstances:          true,
		ServiceTypes:           datatypes.JSONSlice[snowflake.ID]{env.node.Generate()},
	}).Error)

	cfg := &domain.BillingConfiguration{
		Name:                     "linked to invoice config",
		BillingCustomerAccountID: env.node.Generate(),
		CustomerGeneratorID:      generatorID,
		Active:                   true,
		IncludeForAutomation:     true,
		InvoiceConfigurationID:   invoiceCfgID,
		MatchCriteria:            []domain.MatchPredicate{catchAllPredicate()},
	}
	_, err := env.svc.Save(ctx, cfg)
	require.NoError(t, err)

	ticket := &ticketdomain.TruckTicket{
		ID:            env.node.Generate(),
		GeneratorID:   generatorID,
		ServiceTypeID: env.node.Generate(),
	}

	candidates, err := env.svc.GetBillingConfigurations(ctx, ticket, true)
	require.NoError(t, err)
	assert.Empty(t, candidates, "invoice configuration's service-type list rejects the ticket")
}
