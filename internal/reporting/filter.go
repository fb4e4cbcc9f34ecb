// Package reporting narrows record collections and assembles tabular report
// rows. Filtering is predicate-based and conjunctive: predicates compose in
// any order with the same result, and the source collection is never mutated.
package reporting

import (
	"strings"
	"time"

	"civreg/internal/freshness"
	"civreg/internal/residents/models"
)

// Predicate decides whether a record survives a filter pass.
type Predicate[T any] func(T) bool

// Apply returns a new slice holding the records matching every predicate.
// The input is left untouched.
func Apply[T any](records []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// ResidentSearch matches the query case-insensitively against the
// concatenated display name.
func ResidentSearch(query string) Predicate[*models.Resident] {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(r *models.Resident) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.DisplayName()), q)
	}
}

// ResidentStatus matches against the derived freshness status, recomputed per
// record rather than read from any cache.
func ResidentStatus(status freshness.Status, now time.Time) Predicate[*models.Resident] {
	return func(r *models.Resident) bool {
		if status == "" {
			return true
		}
		return r.DerivedStatus(now) == status
	}
}

// ResidentForReview matches the boolean review flag directly.
func ResidentForReview() Predicate[*models.Resident] {
	return func(r *models.Resident) bool {
		return r.ForReview
	}
}

// ResidentVerification matches the current verification workflow status.
func ResidentVerification(status models.VerificationStatus) Predicate[*models.Resident] {
	return func(r *models.Resident) bool {
		if status == "" {
			return true
		}
		return r.Verification.Status == status
	}
}

// ResidentRole is the role tab filter (admin/resident/staff).
func ResidentRole(role models.Role) Predicate[*models.Resident] {
	return func(r *models.Resident) bool {
		if role == "" {
			return true
		}
		return r.Role == role
	}
}

// ResidentCreatedBetween bounds records by creation date; nil bounds are
// open.
func ResidentCreatedBetween(from, to *time.Time) Predicate[*models.Resident] {
	return func(r *models.Resident) bool {
		if from != nil && r.CreatedAt.Before(*from) {
			return false
		}
		if to != nil && r.CreatedAt.After(*to) {
			return false
		}
		return true
	}
}

// ResidentFilter bundles the list-view filter inputs.
type ResidentFilter struct {
	Search    string
	Status    freshness.Status
	ForReview bool
	Role      models.Role
	From      *time.Time
	To        *time.Time
}

// Predicates expands the filter into its conjunctive predicate set.
func (f ResidentFilter) Predicates(now time.Time) []Predicate[*models.Resident] {
	preds := []Predicate[*models.Resident]{
		ResidentSearch(f.Search),
		ResidentStatus(f.Status, now),
		ResidentRole(f.Role),
		ResidentCreatedBetween(f.From, f.To),
	}
	if f.ForReview {
		preds = append(preds, ResidentForReview())
	}
	return preds
}
