package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAdmits(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	facilityID := node.Generate()
	substanceID := node.Generate()

	ticket := &ticketdomain.TruckTicket{
		FacilityID:         facilityID,
		SubstanceID:        substanceID,
		WellClassification: ticketdomain.WellClassificationDrilling,
	}

	t.Run("catch-all admits everything", func(t *testing.T) {
		cfg := &InvoiceConfiguration{IsCatchAll: true, Facilities: datatypes.JSONSlice[snowflake.ID]{node.Generate()}}
		assert.True(t, cfg.Admits(ticket))
	})

	t.Run("empty lists leave dimensions unconstrained", func(t *testing.T) {
		cfg := &InvoiceConfiguration{}
		assert.True(t, cfg.Admits(ticket))
	})

	t.Run("allow-list admits member", func(t *testing.T) {
		cfg := &InvoiceConfiguration{Facilities: datatypes.JSONSlice[snowflake.ID]{facilityID}}
		assert.True(t, cfg.Admits(ticket))
	})

	t.Run("allow-list rejects non-member", func(t *testing.T) {
		cfg := &InvoiceConfiguration{Facilities: datatypes.JSONSlice[snowflake.ID]{node.Generate()}}
		assert.False(t, cfg.Admits(ticket))
	})

	t.Run("all flag overrides a stale list", func(t *testing.T) {
		cfg := &InvoiceConfiguration{
			AllFacilities: true,
			Facilities:    datatypes.JSONSlice[snowflake.ID]{node.Generate()},
		}
		assert.True(t, cfg.Admits(ticket))
	})

	t.Run("well classification list", func(t *testing.T) {
		cfg := &InvoiceConfiguration{
			WellClassifications: datatypes.JSONSlice[ticketdomain.WellClassification]{
				ticketdomain.WellClassificationProduction,
			},
		}
		assert.False(t, cfg.Admits(ticket))

		cfg.WellClassifications = append(cfg.WellClassifications, ticketdomain.WellClassificationDrilling)
		assert.True(t, cfg.Admits(ticket))
	})

	t.Run("every constrained dimension must pass", func(t *testing.T) {
		cfg := &InvoiceConfiguration{
			Facilities: datatypes.JSONSlice[snowflake.ID]{facilityID},
			Substances: datatypes.JSONSlice[snowflake.ID]{node.Generate()},
		}
		assert.False(t, cfg.Admits(ticket))
	})
}
