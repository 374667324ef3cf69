package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service owns sales-line pricing and persistence for the rest of the
// back office. ListActiveByTruckTicket excludes reversed lines and
// reversals; PriceRefresh re-resolves unit rates against the given
// billing customer account and recomputes totals in place.
type Service interface {
	ListActiveByTruckTicket(ctx context.Context, truckTicketID snowflake.ID) ([]*SalesLine, error)
	PriceRefresh(ctx context.Context, lines []*SalesLine, customerAccountID snowflake.ID) error
	SaveAll(ctx context.Context, lines []*SalesLine) error
	DeleteAll(ctx context.Context, lines []*SalesLine) error
	PublishChanged(ctx context.Context, lines []*SalesLine)
}

var (
	ErrInvalidCustomerAccount = errors.New("invalid_customer_account")
)
