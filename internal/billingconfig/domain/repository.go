package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*BillingConfiguration, error)
	// ListByGenerator returns active sibling configurations for a
	// generator, excluding excludeID when non-zero.
	ListByGenerator(ctx context.Context, generatorID, excludeID snowflake.ID) ([]BillingConfiguration, error)
	// ListForAutomation returns active configurations for a generator.
	// When includeForAutomation is true only automation-enabled
	// configurations are returned.
	ListForAutomation(ctx context.Context, generatorID snowflake.ID, includeForAutomation bool) ([]BillingConfiguration, error)
	// ListDefaults returns other default configurations for a billing
	// customer, excluding excludeID when non-zero.
	ListDefaults(ctx context.Context, billingCustomerAccountID, excludeID snowflake.ID) ([]BillingConfiguration, error)
	Save(ctx context.Context, configuration *BillingConfiguration) error
	ClearDefaultFlag(ctx context.Context, id snowflake.ID) error
}
