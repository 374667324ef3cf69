package hash

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
	"github.com/stretchr/testify/assert"
)

func basePredicate(node *snowflake.Node) domain.MatchPredicate {
	return domain.MatchPredicate{
		ID:                      node.Generate(),
		BillingConfigurationID:  node.Generate(),
		IsEnabled:               true,
		Stream:                  ticketdomain.StreamWater,
		StreamState:             domain.StateValue,
		ServiceTypeID:           node.Generate(),
		ServiceTypeState:        domain.StateValue,
		SourceLocationState:     domain.StateAny,
		SubstanceState:          domain.StateNotSet,
		WellClassification:      ticketdomain.WellClassificationDrilling,
		WellClassificationState: domain.StateValue,
	}
}

func TestComputeHash_StableAcrossIdentityAndDates(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	hasher := NewHasher()

	a := basePredicate(node)
	b := a
	b.ID = node.Generate()
	b.BillingConfigurationID = node.Generate()
	b.Hash = "stale"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	b.StartDate = &start
	b.EndDate = &end
	b.SourceIdentifier = "100/01-02-003-04W5"

	assert.Equal(t, hasher.ComputeHash(a), hasher.ComputeHash(b),
		"identity, validity window and source identifier must not affect the hash")
}

func TestComputeHash_SensitiveToSemanticFields(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	hasher := NewHasher()
	base := basePredicate(node)
	baseHash := hasher.ComputeHash(base)

	changedStream := base
	changedStream.Stream = ticketdomain.StreamSolid
	assert.NotEqual(t, baseHash, hasher.ComputeHash(changedStream))

	changedState := base
	changedState.SubstanceState = domain.StateAny
	assert.NotEqual(t, baseHash, hasher.ComputeHash(changedState))

	changedServiceType := base
	changedServiceType.ServiceTypeID = node.Generate()
	assert.NotEqual(t, baseHash, hasher.ComputeHash(changedServiceType))

	changedWellClass := base
	changedWellClass.WellClassification = ticketdomain.WellClassificationProduction
	assert.NotEqual(t, baseHash, hasher.ComputeHash(changedWellClass))
}

func TestComputeHash_Deterministic(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	hasher := NewHasher()
	p := basePredicate(node)

	first := hasher.ComputeHash(p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, hasher.ComputeHash(p))
	}
	assert.Len(t, first, 64)
}

func TestComputeHash_CustomExclusions(t *testing.T) {
	node, _ := snowflake.NewNode(1)

	exclusions := DefaultExclusions()
	exclusions["substance_name"] = true
	hasher := NewHasherWithExclusions(exclusions)

	a := basePredicate(node)
	a.SubstanceName = "produced water"
	b := a
	b.SubstanceName = "flowback"

	assert.Equal(t, hasher.ComputeHash(a), hasher.ComputeHash(b))
	assert.NotEqual(t, NewHasher().ComputeHash(a), NewHasher().ComputeHash(b))
}
