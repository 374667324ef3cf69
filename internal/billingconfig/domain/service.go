package domain

import (
	"context"
	"errors"

	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
)

// Service orchestrates billing-configuration persistence (running the
// business-rule task pipeline around every save) and ticket-to-
// configuration matching.
type Service interface {
	// Save inserts or updates the configuration. Pre-operation tasks
	// compute predicate hashes, enforce the single-default rule and run
	// the uniqueness check; a collision surfaces as
	// ErrMatchCriteriaNotUnique and nothing is persisted. Post-operation
	// tasks reevaluate associated truck tickets.
	Save(ctx context.Context, configuration *BillingConfiguration) (*BillingConfiguration, error)

	// GetBillingConfigurations returns the unordered candidate
	// configurations applicable to the ticket. includeForAutomation=true
	// restricts candidates to automation-enabled configurations; false is
	// not the mirror image — it returns all active candidates regardless
	// of the automation flag.
	GetBillingConfigurations(ctx context.Context, ticket *ticketdomain.TruckTicket, includeForAutomation bool) ([]BillingConfiguration, error)

	// GetMatchingBillingConfiguration ranks candidates against the
	// ticket and returns the single best match; a zero-ID configuration
	// when none qualifies.
	GetMatchingBillingConfiguration(candidates []BillingConfiguration, ticket *ticketdomain.TruckTicket) BillingConfiguration

	// SelectAutomatedBillingConfiguration fetches automation-enabled
	// candidates and selects the best automated match.
	SelectAutomatedBillingConfiguration(ctx context.Context, ticket *ticketdomain.TruckTicket) (BillingConfiguration, error)

	// GetOverlappingBillingConfigurations returns existing
	// configurations whose enabled predicates collide with the
	// candidate's (identical hash, overlapping dates, intersecting
	// facilities).
	GetOverlappingBillingConfigurations(ctx context.Context, candidate *BillingConfiguration) ([]BillingConfiguration, error)
}

var (
	ErrMatchCriteriaNotUnique = errors.New("match_criteria_not_unique")
	ErrInvalidGenerator       = errors.New("invalid_generator")
	ErrInvalidCustomer        = errors.New("invalid_customer")
	ErrInvalidName            = errors.New("invalid_name")
	ErrNotFound               = errors.New("not_found")
)
