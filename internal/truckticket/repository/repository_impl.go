package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"github.com/haulbase/haulbase/pkg/db/option"
	"github.com/haulbase/haulbase/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[ticketdomain.TruckTicket]
}

func Provide(db *gorm.DB) ticketdomain.Repository {
	return &repo{store: repository.ProvideStore[ticketdomain.TruckTicket](db)}
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*ticketdomain.TruckTicket, error) {
	return r.store.FindOne(ctx, &ticketdomain.TruckTicket{ID: id})
}

func (r *repo) ListByBillingConfiguration(ctx context.Context, configurationID snowflake.ID, limit int) ([]*ticketdomain.TruckTicket, error) {
	opts := []option.QueryOption{option.OrderBy("created_at ASC")}
	if limit > 0 {
		opts = append(opts, option.Limit(limit))
	}
	return r.store.Find(ctx, &ticketdomain.TruckTicket{BillingConfigurationID: configurationID}, opts...)
}

func (r *repo) Save(ctx context.Context, ticket *ticketdomain.TruckTicket) error {
	ticket.UpdatedAt = time.Now().UTC()
	return r.store.Save(ctx, ticket)
}
