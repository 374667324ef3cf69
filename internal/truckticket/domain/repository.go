package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*TruckTicket, error)
	ListByBillingConfiguration(ctx context.Context, configurationID snowflake.ID, limit int) ([]*TruckTicket, error)
	Save(ctx context.Context, ticket *TruckTicket) error
}
