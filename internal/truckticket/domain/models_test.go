package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveDateOrLoadDate(t *testing.T) {
	load := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	effective := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, (&TruckTicket{}).EffectiveDateOrLoadDate().IsZero())

	ticket := &TruckTicket{LoadDate: &load}
	assert.Equal(t, load, ticket.EffectiveDateOrLoadDate())

	ticket.EffectiveDate = &effective
	assert.Equal(t, effective, ticket.EffectiveDateOrLoadDate(),
		"effective date overrides load date")
}
