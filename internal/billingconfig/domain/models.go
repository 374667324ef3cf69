package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"gorm.io/datatypes"
)

// ValueState is the tri-state wildcard marker on a predicate dimension.
type ValueState string

var (
	StateAny    ValueState = "ANY"
	StateNotSet ValueState = "NOT_SET"
	StateValue  ValueState = "VALUE"
)

// MatchPredicate is a single rule within a billing configuration. Each
// dimension carries a companion ValueState: ANY matches regardless of
// the ticket value, NOT_SET requires the ticket field to be absent, and
// VALUE requires equality with the configured value. Disabled predicates
// never participate in matching or uniqueness checks.
type MatchPredicate struct {
	ID                     snowflake.ID `json:"id" gorm:"primaryKey"`
	BillingConfigurationID snowflake.ID `json:"billing_configuration_id" gorm:"column:billing_configuration_id;not null;index"`
	IsEnabled              bool         `json:"is_enabled" gorm:"not null;default:true"`
	Hash                   string       `json:"hash,omitempty" gorm:"type:text;index"`
	StartDate              *time.Time   `json:"start_date,omitempty"`
	EndDate                *time.Time   `json:"end_date,omitempty"`

	Stream      ticketdomain.Stream `json:"stream,omitempty" gorm:"type:text"`
	StreamState ValueState          `json:"stream_state" gorm:"type:text;not null"`

	ServiceTypeID    snowflake.ID `json:"service_type_id,omitempty" gorm:"column:service_type_id"`
	ServiceTypeState ValueState   `json:"service_type_state" gorm:"type:text;not null"`

	SourceLocationID    snowflake.ID `json:"source_location_id,omitempty" gorm:"column:source_location_id"`
	SourceIdentifier    string       `json:"source_identifier,omitempty" gorm:"type:text"`
	SourceLocationState ValueState   `json:"source_location_state" gorm:"type:text;not null"`

	SubstanceID    snowflake.ID `json:"substance_id,omitempty" gorm:"column:substance_id"`
	SubstanceName  string       `json:"substance_name,omitempty" gorm:"type:text"`
	SubstanceState ValueState   `json:"substance_state" gorm:"type:text;not null"`

	WellClassification      ticketdomain.WellClassification `json:"well_classification,omitempty" gorm:"type:text"`
	WellClassificationState ValueState                      `json:"well_classification_state" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MatchPredicate) TableName() string { return "match_predicates" }

// AppliesOn reports whether ts falls within the predicate's validity
// window. Bounds are inclusive; a nil bound is open-ended. A predicate
// with any bound set rejects the zero time.
func (p *MatchPredicate) AppliesOn(ts time.Time) bool {
	if ts.IsZero() {
		return p.StartDate == nil && p.EndDate == nil
	}
	if p.StartDate != nil && ts.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && ts.After(*p.EndDate) {
		return false
	}
	return true
}

// IsCatchAll reports whether every dimension is a wildcard.
func (p *MatchPredicate) IsCatchAll() bool {
	return p.StreamState == StateAny &&
		p.ServiceTypeState == StateAny &&
		p.SourceLocationState == StateAny &&
		p.SubstanceState == StateAny &&
		p.WellClassificationState == StateAny
}

// BillingConfiguration decides which customer and billing terms apply to
// a generator's truck tickets. An empty Facilities set means the
// configuration applies at every facility.
type BillingConfiguration struct {
	ID                       snowflake.ID                      `json:"id" gorm:"primaryKey"`
	Name                     string                            `json:"name" gorm:"type:text;not null"`
	BillingCustomerAccountID snowflake.ID                      `json:"billing_customer_account_id" gorm:"column:billing_customer_account_id;not null;index"`
	CustomerGeneratorID      snowflake.ID                      `json:"customer_generator_id" gorm:"column:customer_generator_id;not null;index"`
	IsDefaultConfiguration   bool                              `json:"is_default_configuration" gorm:"not null;default:false"`
	IncludeForAutomation     bool                              `json:"include_for_automation" gorm:"not null;default:true"`
	Active                   bool                              `json:"active" gorm:"not null;default:true"`
	StartDate                *time.Time                        `json:"start_date,omitempty"`
	EndDate                  *time.Time                        `json:"end_date,omitempty"`
	Facilities               datatypes.JSONSlice[snowflake.ID] `json:"facilities,omitempty" gorm:"type:jsonb"`
	MatchCriteria            []MatchPredicate                  `json:"match_criteria,omitempty" gorm:"foreignKey:BillingConfigurationID"`
	InvoiceConfigurationID   snowflake.ID                      `json:"invoice_configuration_id,omitempty" gorm:"column:invoice_configuration_id"`
	Metadata                 datatypes.JSONMap                 `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt                time.Time                         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time                         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BillingConfiguration) TableName() string { return "billing_configurations" }

// AppliesOn reports whether ts falls within the configuration-level
// validity window, with the same bound semantics as the predicate.
func (c *BillingConfiguration) AppliesOn(ts time.Time) bool {
	if ts.IsZero() {
		return c.StartDate == nil && c.EndDate == nil
	}
	if c.StartDate != nil && ts.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && ts.After(*c.EndDate) {
		return false
	}
	return true
}

// AppliesToFacility reports facility membership; an empty set applies
// to all facilities.
func (c *BillingConfiguration) AppliesToFacility(facilityID snowflake.ID) bool {
	if len(c.Facilities) == 0 {
		return true
	}
	for _, id := range c.Facilities {
		if id == facilityID {
			return true
		}
	}
	return false
}

// EnabledPredicates returns the predicates eligible for matching and
// uniqueness checks.
func (c *BillingConfiguration) EnabledPredicates() []MatchPredicate {
	out := make([]MatchPredicate, 0, len(c.MatchCriteria))
	for _, p := range c.MatchCriteria {
		if p.IsEnabled {
			out = append(out, p)
		}
	}
	return out
}

// RankConfiguration associates a predicate with its computed specificity
// rank during selection. Ephemeral, never persisted.
type RankConfiguration struct {
	EntityID               snowflake.ID
	BillingConfigurationID snowflake.ID
	Name                   string
	IncludeForAutomation   bool
	Rank                   int
}
