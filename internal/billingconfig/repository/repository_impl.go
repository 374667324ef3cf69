package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.BillingConfiguration, error) {
	var cfg domain.BillingConfiguration
	err := r.db.WithContext(ctx).
		Preload("MatchCriteria").
		First(&cfg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) ListByGenerator(ctx context.Context, generatorID, excludeID snowflake.ID) ([]domain.BillingConfiguration, error) {
	stmt := r.db.WithContext(ctx).
		Preload("MatchCriteria").
		Where("customer_generator_id = ? AND active = ?", generatorID, true)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}

	var items []domain.BillingConfiguration
	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListForAutomation(ctx context.Context, generatorID snowflake.ID, includeForAutomation bool) ([]domain.BillingConfiguration, error) {
	stmt := r.db.WithContext(ctx).
		Preload("MatchCriteria").
		Where("customer_generator_id = ? AND active = ?", generatorID, true)
	if includeForAutomation {
		stmt = stmt.Where("include_for_automation = ?", true)
	}

	var items []domain.BillingConfiguration
	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListDefaults(ctx context.Context, billingCustomerAccountID, excludeID snowflake.ID) ([]domain.BillingConfiguration, error) {
	stmt := r.db.WithContext(ctx).
		Where("billing_customer_account_id = ? AND is_default_configuration = ?", billingCustomerAccountID, true)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}

	var items []domain.BillingConfiguration
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Save(ctx context.Context, configuration *domain.BillingConfiguration) error {
	configuration.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FullSaveAssociations upserts the criteria but never removes rows
		// dropped from the slice, so reconcile those first.
		kept := make([]snowflake.ID, 0, len(configuration.MatchCriteria))
		for _, predicate := range configuration.MatchCriteria {
			kept = append(kept, predicate.ID)
		}
		stmt := tx.Where("billing_configuration_id = ?", configuration.ID)
		if len(kept) > 0 {
			stmt = stmt.Where("id NOT IN ?", kept)
		}
		if err := stmt.Delete(&domain.MatchPredicate{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).
			Save(configuration).Error
	})
}

func (r *repo) ClearDefaultFlag(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.BillingConfiguration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_default_configuration": false,
			"updated_at":               time.Now().UTC(),
		}).Error
}
