package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/salesline/domain"
	"github.com/haulbase/haulbase/internal/salesline/event"
	"github.com/haulbase/haulbase/pkg/db/option"
	"github.com/haulbase/haulbase/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Publisher event.EventPublisher
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	lines     repository.Repository[domain.SalesLine]
	rates     repository.Repository[domain.AccountProductRate]
	publisher event.EventPublisher
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("salesline.service"),
		genID:     p.GenID,
		lines:     repository.ProvideStore[domain.SalesLine](p.DB),
		rates:     repository.ProvideStore[domain.AccountProductRate](p.DB),
		publisher: p.Publisher,
	}
}

func (s *Service) ListActiveByTruckTicket(ctx context.Context, truckTicketID snowflake.ID) ([]*domain.SalesLine, error) {
	return s.lines.Find(ctx,
		&domain.SalesLine{TruckTicketID: truckTicketID},
		option.Where("is_reversed = ?", false),
		option.Where("is_reversal = ?", false),
		option.OrderBy("created_at ASC"),
	)
}

// PriceRefresh re-resolves each line's unit rate for the given billing
// customer account. Lines without a negotiated rate keep their current
// rate; pricing never fails a reassignment on a missing rate row.
func (s *Service) PriceRefresh(ctx context.Context, lines []*domain.SalesLine, customerAccountID snowflake.ID) error {
	if customerAccountID == 0 {
		return domain.ErrInvalidCustomerAccount
	}

	rates, err := s.rates.Find(ctx, &domain.AccountProductRate{CustomerAccountID: customerAccountID})
	if err != nil {
		return err
	}

	rateByProduct := make(map[string]int64, len(rates))
	for _, rate := range rates {
		rateByProduct[rate.ProductCode] = rate.UnitRateCents
	}

	now := time.Now().UTC()
	for _, line := range lines {
		if line == nil || line.IsReversed || line.IsReversal {
			continue
		}

		rate, ok := rateByProduct[line.ProductCode]
		if !ok {
			s.log.Warn("no negotiated rate for product, keeping previous rate",
				zap.String("product_code", line.ProductCode),
				zap.String("customer_account_id", customerAccountID.String()),
			)
			rate = line.UnitRateCents
		}

		line.BillingCustomerAccountID = customerAccountID
		line.UnitRateCents = rate
		line.TotalCents = int64(math.Round(float64(rate) * line.Quantity))
		line.Status = domain.SalesLineStatusPriced
		line.UpdatedAt = now
	}

	return nil
}

func (s *Service) SaveAll(ctx context.Context, lines []*domain.SalesLine) error {
	return s.lines.BatchSave(ctx, lines)
}

func (s *Service) DeleteAll(ctx context.Context, lines []*domain.SalesLine) error {
	for _, line := range lines {
		if line == nil {
			continue
		}
		if err := s.lines.Delete(ctx, line.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// PublishChanged notifies downstream consumers that lines were mutated.
// Fire-and-forget: failures are logged, never propagated.
func (s *Service) PublishChanged(ctx context.Context, lines []*domain.SalesLine) {
	if len(lines) == 0 {
		return
	}

	ids := make([]string, 0, len(lines))
	var ticketID snowflake.ID
	for _, line := range lines {
		if line == nil {
			continue
		}
		ids = append(ids, line.ID.String())
		ticketID = line.TruckTicketID
	}

	payload, err := json.Marshal(map[string]any{
		"sales_line_ids":  ids,
		"truck_ticket_id": ticketID.String(),
	})
	if err != nil {
		s.log.Error("marshal sales line change payload", zap.Error(err))
		return
	}

	if err := s.publisher.Publish(ctx, event.SalesLinesChangedTopic, payload); err != nil {
		s.log.Error("publish sales line change", zap.Error(err))
	}
}
