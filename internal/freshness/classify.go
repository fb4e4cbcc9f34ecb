// Package freshness derives a record's update status from its reference
// timestamp. Every caller that needs a derived status routes through Classify
// rather than reimplementing the month arithmetic; the result is never
// persisted.
package freshness

import "time"

// Status is the freshness category derived from a timestamp.
type Status string

const (
	StatusActive            Status = "active"
	StatusOutdated          Status = "outdated"
	StatusNeedsVerification Status = "needs_verification"
)

// ParseStatus returns the Status for a filter value, or "" when unknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusActive, StatusOutdated, StatusNeedsVerification:
		return Status(s)
	default:
		return ""
	}
}

// MonthsBetween returns the whole calendar-month difference between now and
// ref: (nowYear*12+nowMonth) - (refYear*12+refMonth). Day-of-month is ignored
// deliberately; a record from the 1st and the 28th of the same month are the
// same age.
func MonthsBetween(ref, now time.Time) int {
	return (now.Year()*12 + int(now.Month())) - (ref.Year()*12 + int(ref.Month()))
}

// Classify maps a reference timestamp to a freshness category.
//
// A nil reference degrades to NeedsVerification rather than erroring. The
// boundaries are inclusive on both ends: a diff of exactly 6 months is still
// Active and exactly 12 is still Outdated.
func Classify(ref *time.Time, now time.Time) Status {
	if ref == nil {
		return StatusNeedsVerification
	}
	diff := MonthsBetween(*ref, now)
	switch {
	case diff <= 6:
		return StatusActive
	case diff <= 12:
		return StatusOutdated
	default:
		return StatusNeedsVerification
	}
}

// ReferenceTime picks the classification source: last_modified when present,
// updated_at as fallback, nil when neither is set.
func ReferenceTime(lastModified, updatedAt *time.Time) *time.Time {
	if lastModified != nil {
		return lastModified
	}
	return updatedAt
}
