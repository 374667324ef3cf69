package rank

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
)

// Weights score a satisfied dimension by its value state. A VALUE match
// is more specific than NOT_SET, which is more specific than ANY; the
// spread between tiers exceeds the maximum attainable sum of all lower
// tiers so a single more-specific dimension always dominates.
type Weights struct {
	Value  int
	NotSet int
	Any    int
}

func DefaultWeights() Weights {
	return Weights{Value: 100, NotSet: 10, Any: 1}
}

// Candidate is one predicate under evaluation together with the
// configuration attributes used for tie-breaking.
type Candidate struct {
	EntityID               snowflake.ID
	BillingConfigurationID snowflake.ID
	Name                   string
	IncludeForAutomation   bool
	Predicate              domain.MatchPredicate
}

// Options tune a ranking pass. AllowCatchAll admits all-wildcard
// predicates; Strict requires every dimension to be satisfied, while
// lenient mode tolerates NOT_SET mismatches at zero weight.
type Options struct {
	Weights       Weights
	AllowCatchAll bool
	Strict        bool
}

func DefaultOptions() Options {
	return Options{
		Weights:       DefaultWeights(),
		AllowCatchAll: true,
		Strict:        true,
	}
}

type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// dimension pairs a predicate's configured state with the outcome of
// comparing it against the ticket value.
type dimension struct {
	state     domain.ValueState
	satisfied bool
}

func dimensions(t *ticketdomain.TruckTicket, p *domain.MatchPredicate) []dimension {
	return []dimension{
		compareValue(p.StreamState, string(p.Stream), string(t.Stream)),
		compareID(p.ServiceTypeState, p.ServiceTypeID, "", t.ServiceTypeID, ""),
		compareID(p.SourceLocationState, p.SourceLocationID, p.SourceIdentifier, t.SourceLocationID, t.SourceIdentifier),
		compareID(p.SubstanceState, p.SubstanceID, p.SubstanceName, t.SubstanceID, t.SubstanceName),
		compareValue(p.WellClassificationState, string(p.WellClassification), string(t.WellClassification)),
	}
}

// compareValue evaluates a string-valued dimension.
func compareValue(state domain.ValueState, configured, actual string) dimension {
	switch state {
	case domain.StateAny:
		return dimension{state: state, satisfied: true}
	case domain.StateNotSet:
		return dimension{state: state, satisfied: actual == ""}
	case domain.StateValue:
		// A VALUE state with no backing value never matches.
		return dimension{state: state, satisfied: configured != "" && configured == actual}
	default:
		return dimension{state: state, satisfied: false}
	}
}

// compareID evaluates an ID-valued dimension, falling back to name
// comparison when the predicate carries no ID.
func compareID(state domain.ValueState, configuredID snowflake.ID, configuredName string, actualID snowflake.ID, actualName string) dimension {
	switch state {
	case domain.StateAny:
		return dimension{state: state, satisfied: true}
	case domain.StateNotSet:
		return dimension{state: state, satisfied: actualID == 0 && actualName == ""}
	case domain.StateValue:
		if configuredID != 0 {
			return dimension{state: state, satisfied: configuredID == actualID}
		}
		if configuredName != "" {
			return dimension{state: state, satisfied: configuredName == actualName}
		}
		return dimension{state: state, satisfied: false}
	default:
		return dimension{state: state, satisfied: false}
	}
}

// IsBillingConfigurationMatch reports whether the predicate matches the
// ticket: the predicate must be enabled, its validity window must
// contain the ticket's effective date and every dimension must be
// satisfied.
func (e *Evaluator) IsBillingConfigurationMatch(ticket *ticketdomain.TruckTicket, predicate domain.MatchPredicate) bool {
	if !predicate.IsEnabled {
		return false
	}
	if !predicate.AppliesOn(ticket.EffectiveDateOrLoadDate()) {
		return false
	}
	for _, dim := range dimensions(ticket, &predicate) {
		if !dim.satisfied {
			return false
		}
	}
	return true
}

// EvaluatePredicateRank scores the candidates against the ticket and
// returns matching candidates ordered most-specific first. Ties break by
// IncludeForAutomation descending, then Name ascending, then
// configuration ID for determinism.
func (e *Evaluator) EvaluatePredicateRank(candidates []Candidate, ticket *ticketdomain.TruckTicket, opts Options) []domain.RankConfiguration {
	effective := ticket.EffectiveDateOrLoadDate()

	ranked := make([]domain.RankConfiguration, 0, len(candidates))
	for _, candidate := range candidates {
		p := candidate.Predicate
		if !p.IsEnabled || !p.AppliesOn(effective) {
			continue
		}
		if p.IsCatchAll() && !opts.AllowCatchAll {
			continue
		}

		total := 0
		matched := true
		for _, dim := range dimensions(ticket, &p) {
			if dim.satisfied {
				total += weightFor(opts.Weights, dim.state)
				continue
			}
			if !opts.Strict && dim.state == domain.StateNotSet {
				// Lenient mode tolerates a populated ticket field on a
				// NOT_SET dimension, contributing nothing to the rank.
				continue
			}
			matched = false
			break
		}
		if !matched {
			continue
		}

		ranked = append(ranked, domain.RankConfiguration{
			EntityID:               candidate.EntityID,
			BillingConfigurationID: candidate.BillingConfigurationID,
			Name:                   candidate.Name,
			IncludeForAutomation:   candidate.IncludeForAutomation,
			Rank:                   total,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank > ranked[j].Rank
		}
		if ranked[i].IncludeForAutomation != ranked[j].IncludeForAutomation {
			return ranked[i].IncludeForAutomation
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].BillingConfigurationID < ranked[j].BillingConfigurationID
	})

	return ranked
}

func weightFor(w Weights, state domain.ValueState) int {
	switch state {
	case domain.StateValue:
		return w.Value
	case domain.StateNotSet:
		return w.NotSet
	case domain.StateAny:
		return w.Any
	default:
		return 0
	}
}
