package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type TicketStatus string

var (
	TicketStatusNew      TicketStatus = "NEW"
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusApproved TicketStatus = "APPROVED"
	TicketStatusInvoiced TicketStatus = "INVOICED"
	TicketStatusVoid     TicketStatus = "VOID"
)

type WellClassification string

var (
	WellClassificationDrilling    WellClassification = "DRILLING"
	WellClassificationCompletions WellClassification = "COMPLETIONS"
	WellClassificationProduction  WellClassification = "PRODUCTION"
	WellClassificationAbandonment WellClassification = "ABANDONMENT"
)

type Stream string

var (
	StreamWater    Stream = "WATER"
	StreamSolid    Stream = "SOLID"
	StreamPipeline Stream = "PIPELINE"
	StreamWaste    Stream = "WASTE"
)

// TruckTicket is a single load delivered to a facility. Its dimension
// values are what billing-configuration match predicates are evaluated
// against; a zero ID means the field is not set on the ticket.
type TruckTicket struct {
	ID                       snowflake.ID       `json:"id" gorm:"primaryKey"`
	TicketNumber             string             `json:"ticket_number" gorm:"type:text;not null"`
	GeneratorID              snowflake.ID       `json:"generator_id" gorm:"column:generator_id;not null;index"`
	FacilityID               snowflake.ID       `json:"facility_id" gorm:"column:facility_id;index"`
	WellClassification       WellClassification `json:"well_classification,omitempty" gorm:"type:text"`
	Stream                   Stream             `json:"stream,omitempty" gorm:"type:text"`
	SubstanceID              snowflake.ID       `json:"substance_id,omitempty" gorm:"column:substance_id"`
	SubstanceName            string             `json:"substance_name,omitempty" gorm:"type:text"`
	ServiceTypeID            snowflake.ID       `json:"service_type_id,omitempty" gorm:"column:service_type_id"`
	SourceLocationID         snowflake.ID       `json:"source_location_id,omitempty" gorm:"column:source_location_id"`
	SourceIdentifier         string             `json:"source_identifier,omitempty" gorm:"type:text"`
	LoadDate                 *time.Time         `json:"load_date,omitempty"`
	EffectiveDate            *time.Time         `json:"effective_date,omitempty"`
	BillingConfigurationID   snowflake.ID       `json:"billing_configuration_id,omitempty" gorm:"column:billing_configuration_id;index"`
	BillingCustomerAccountID snowflake.ID       `json:"billing_customer_account_id,omitempty" gorm:"column:billing_customer_account_id;index"`
	Status                   TicketStatus       `json:"status" gorm:"type:text;not null"`
	Metadata                 datatypes.JSONMap  `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt                time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TruckTicket) TableName() string { return "truck_tickets" }

// EffectiveDateOrLoadDate is the timestamp all date-window checks use.
// Returns the zero time when the ticket carries neither date.
func (t *TruckTicket) EffectiveDateOrLoadDate() time.Time {
	if t.EffectiveDate != nil {
		return *t.EffectiveDate
	}
	if t.LoadDate != nil {
		return *t.LoadDate
	}
	return time.Time{}
}
