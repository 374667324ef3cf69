package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type SalesLineStatus string

var (
	SalesLineStatusPreview   SalesLineStatus = "PREVIEW"
	SalesLineStatusPriced    SalesLineStatus = "PRICED"
	SalesLineStatusException SalesLineStatus = "EXCEPTION"
	SalesLineStatusApproved  SalesLineStatus = "APPROVED"
)

// SalesLine is one billable line derived from a truck ticket. Reversed
// lines and their reversals are immutable and excluded from re-pricing.
type SalesLine struct {
	ID                       snowflake.ID      `json:"id" gorm:"primaryKey"`
	TruckTicketID            snowflake.ID      `json:"truck_ticket_id" gorm:"column:truck_ticket_id;not null;index"`
	BillingConfigurationID   snowflake.ID      `json:"billing_configuration_id,omitempty" gorm:"column:billing_configuration_id;index"`
	BillingCustomerAccountID snowflake.ID      `json:"billing_customer_account_id" gorm:"column:billing_customer_account_id;index"`
	ProductCode              string            `json:"product_code" gorm:"type:text;not null"`
	Description              string            `json:"description,omitempty" gorm:"type:text"`
	Quantity                 float64           `json:"quantity" gorm:"type:numeric;not null"`
	UnitRateCents            int64             `json:"unit_rate_cents" gorm:"not null;default:0"`
	TotalCents               int64             `json:"total_cents" gorm:"not null;default:0"`
	Status                   SalesLineStatus   `json:"status" gorm:"type:text;not null"`
	IsReversed               bool              `json:"is_reversed" gorm:"not null;default:false"`
	IsReversal               bool              `json:"is_reversal" gorm:"not null;default:false"`
	Metadata                 datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt                time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SalesLine) TableName() string { return "sales_lines" }

// AccountProductRate is the negotiated unit rate for a product on a
// billing customer account; PriceRefresh resolves against these rows.
type AccountProductRate struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	CustomerAccountID snowflake.ID `json:"customer_account_id" gorm:"column:customer_account_id;not null;index"`
	ProductCode       string       `json:"product_code" gorm:"type:text;not null"`
	UnitRateCents     int64        `json:"unit_rate_cents" gorm:"not null"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (AccountProductRate) TableName() string { return "account_product_rates" }

// SalesLineEvent is the outbox row published after sales-line mutation.
type SalesLineEvent struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey"`
	EventType string         `json:"event_type" gorm:"type:text;not null"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Published bool           `json:"published" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SalesLineEvent) TableName() string { return "sales_line_events" }
