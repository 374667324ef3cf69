package overlap

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/billingconfig/domain"
	"gorm.io/datatypes"
)

// Checker detects billing configurations whose match predicates collide
// with a candidate's: identical enabled-predicate hash, overlapping
// validity windows and intersecting facility sets.
type Checker struct {
	repo domain.Repository
}

func NewChecker(repo domain.Repository) *Checker {
	return &Checker{repo: repo}
}

// GetOverlappingBillingConfigurations returns the distinct existing
// configurations that collide with the candidate. An empty result means
// the candidate's match criteria are unique. Predicate hashes on the
// candidate must already be computed.
func (c *Checker) GetOverlappingBillingConfigurations(ctx context.Context, candidate *domain.BillingConfiguration) ([]domain.BillingConfiguration, error) {
	enabled := candidate.EnabledPredicates()
	if len(enabled) == 0 {
		return nil, nil
	}

	siblings, err := c.repo.ListByGenerator(ctx, candidate.CustomerGeneratorID, candidate.ID)
	if err != nil {
		return nil, err
	}

	var overlapping []domain.BillingConfiguration
	for _, sibling := range siblings {
		if !facilitySetsIntersect(candidate.Facilities, sibling.Facilities) {
			continue
		}
		if collides(enabled, sibling.EnabledPredicates()) {
			overlapping = append(overlapping, sibling)
		}
	}

	return overlapping, nil
}

func collides(candidate, existing []domain.MatchPredicate) bool {
	for _, cp := range candidate {
		if cp.Hash == "" {
			continue
		}
		for _, ep := range existing {
			if ep.Hash != cp.Hash {
				continue
			}
			if dateWindowsOverlap(cp.StartDate, cp.EndDate, ep.StartDate, ep.EndDate) {
				return true
			}
		}
	}
	return false
}

// dateWindowsOverlap uses inclusive bounds; a nil bound is unbounded.
func dateWindowsOverlap(aStart, aEnd, bStart, bEnd *time.Time) bool {
	if aStart != nil && bEnd != nil && aStart.After(*bEnd) {
		return false
	}
	if bStart != nil && aEnd != nil && bStart.After(*aEnd) {
		return false
	}
	return true
}

// facilitySetsIntersect treats an empty set as "all facilities", which
// intersects everything.
func facilitySetsIntersect(a, b datatypes.JSONSlice[snowflake.ID]) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	seen := make(map[snowflake.ID]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if seen[id] {
			return true
		}
	}
	return false
}
