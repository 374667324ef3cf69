package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"gorm.io/datatypes"
)

// InvoiceConfiguration groups truck tickets onto invoices. Billing
// configurations may link to one as a fallback admission filter: each
// allow-list constrains a ticket dimension unless its All flag (or an
// empty list) leaves the dimension unconstrained.
type InvoiceConfiguration struct {
	ID                     snowflake.ID                                         `json:"id" gorm:"primaryKey"`
	Name                   string                                               `json:"name" gorm:"type:text;not null"`
	CustomerAccountID      snowflake.ID                                         `json:"customer_account_id" gorm:"column:customer_account_id;index"`
	IsCatchAll             bool                                                 `json:"is_catch_all" gorm:"not null;default:false"`
	AllFacilities          bool                                                 `json:"all_facilities" gorm:"not null;default:false"`
	Facilities             datatypes.JSONSlice[snowflake.ID]                    `json:"facilities,omitempty" gorm:"type:jsonb"`
	AllSourceLocations     bool                                                 `json:"all_source_locations" gorm:"not null;default:false"`
	SourceLocations        datatypes.JSONSlice[snowflake.ID]                    `json:"source_locations,omitempty" gorm:"type:jsonb"`
	AllWellClassifications bool                                                 `json:"all_well_classifications" gorm:"not null;default:false"`
	WellClassifications    datatypes.JSONSlice[ticketdomain.WellClassification] `json:"well_classifications,omitempty" gorm:"type:jsonb"`
	AllSubstances          bool                                                 `json:"all_substances" gorm:"not null;default:false"`
	Substances             datatypes.JSONSlice[snowflake.ID]                    `json:"substances,omitempty" gorm:"type:jsonb"`
	AllServiceTypes        bool                                                 `json:"all_service_types" gorm:"not null;default:false"`
	ServiceTypes           datatypes.JSONSlice[snowflake.ID]                    `json:"service_types,omitempty" gorm:"type:jsonb"`
	CreatedAt              time.Time                                            `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time                                            `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvoiceConfiguration) TableName() string { return "invoice_configurations" }

// Admits reports whether the ticket passes every allow-list. A catch-all
// configuration admits unconditionally.
func (c *InvoiceConfiguration) Admits(t *ticketdomain.TruckTicket) bool {
	if c.IsCatchAll {
		return true
	}

	if !admitsID(c.AllFacilities, c.Facilities, t.FacilityID) {
		return false
	}
	if !admitsID(c.AllSourceLocations, c.SourceLocations, t.SourceLocationID) {
		return false
	}
	if !admitsID(c.AllSubstances, c.Substances, t.SubstanceID) {
		return false
	}
	if !admitsID(c.AllServiceTypes, c.ServiceTypes, t.ServiceTypeID) {
		return false
	}

	if !c.AllWellClassifications && len(c.WellClassifications) > 0 {
		found := false
		for _, wc := range c.WellClassifications {
			if wc == t.WellClassification {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func admitsID(all bool, list datatypes.JSONSlice[snowflake.ID], value snowflake.ID) bool {
	if all || len(list) == 0 {
		return true
	}
	for _, id := range list {
		if id == value {
			return true
		}
	}
	return false
}
