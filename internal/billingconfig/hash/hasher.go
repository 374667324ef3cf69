package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/haulbase/haulbase/internal/billingconfig/domain"
)

// Hasher computes the content hash used for match-predicate uniqueness
// and change detection. Two predicates with identical semantic content
// always hash identically regardless of identity or validity dates.
type Hasher struct {
	exclusions map[string]bool
}

// DefaultExclusions lists the fields that never contribute to the hash:
// identity, the hash itself, the validity window and the free-form
// source identifier.
func DefaultExclusions() map[string]bool {
	return map[string]bool{
		"id":                       true,
		"billing_configuration_id": true,
		"hash":                     true,
		"start_date":               true,
		"end_date":                 true,
		"source_identifier":        true,
		"created_at":               true,
		"updated_at":               true,
	}
}

func NewHasher() *Hasher {
	return &Hasher{exclusions: DefaultExclusions()}
}

// NewHasherWithExclusions builds a hasher with a caller-supplied
// exclusion set.
func NewHasherWithExclusions(exclusions map[string]bool) *Hasher {
	return &Hasher{exclusions: exclusions}
}

// ComputeHash returns the hex SHA-256 digest of the predicate's
// canonicalized semantic fields.
func (h *Hasher) ComputeHash(p domain.MatchPredicate) string {
	fields := map[string]string{
		"id":                        p.ID.String(),
		"billing_configuration_id":  p.BillingConfigurationID.String(),
		"hash":                      p.Hash,
		"is_enabled":                boolString(p.IsEnabled),
		"stream":                    string(p.Stream),
		"stream_state":              string(p.StreamState),
		"service_type_id":           p.ServiceTypeID.String(),
		"service_type_state":        string(p.ServiceTypeState),
		"source_location_id":        p.SourceLocationID.String(),
		"source_identifier":         p.SourceIdentifier,
		"source_location_state":     string(p.SourceLocationState),
		"substance_id":              p.SubstanceID.String(),
		"substance_name":            p.SubstanceName,
		"substance_state":           string(p.SubstanceState),
		"well_classification":       string(p.WellClassification),
		"well_classification_state": string(p.WellClassificationState),
	}
	if p.StartDate != nil {
		fields["start_date"] = p.StartDate.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if p.EndDate != nil {
		fields["end_date"] = p.EndDate.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	canonical := h.canonicalize(fields)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// canonicalize renders the non-excluded fields as a deterministic
// sorted-key JSON-ish string.
func (h *Hasher) canonicalize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if h.exclusions[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valueJSON, _ := json.Marshal(fields[k])
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valueJSON)
	}
	b.WriteByte('}')
	return b.String()
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
