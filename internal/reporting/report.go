package reporting

import (
	"sort"
	"strings"
	"time"

	"civreg/internal/freshness"
	"civreg/internal/residents/models"
)

// Sort keys accepted by ReportFilter.SortBy.
const (
	SortByLastModified       = "last_modified"
	SortByCreatedAt          = "created_at"
	SortByFirstName          = "first_name"
	SortByLastName           = "last_name"
	SortByVerificationStatus = "verification_status"
)

// ReportFilter is the value object describing which records and ordering a
// report or export should use. It is never persisted.
//
// Invariant: Month is only meaningful when Year is set; the view-state
// reducer clears Month whenever a new Year is chosen, and Normalize drops a
// stray Month here as a second line of defense.
type ReportFilter struct {
	UpdateStatus       freshness.Status
	VerificationStatus models.VerificationStatus
	Year               int
	Month              time.Month
	SortBy             string
	SortOrder          string
}

// Normalize fills defaults and drops inconsistent fields.
func (f ReportFilter) Normalize() ReportFilter {
	if f.Year == 0 {
		f.Month = 0
	}
	switch f.SortBy {
	case SortByLastModified, SortByCreatedAt, SortByFirstName, SortByLastName, SortByVerificationStatus:
	default:
		f.SortBy = SortByLastModified
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		f.SortOrder = "desc"
	}
	return f
}

// Row is one tabular report line. The column order of the export contract is
// fixed: [id, name, update_status, verification_status, last_modified,
// for_review]. Values are raw; escaping is the exporter's responsibility.
type Row struct {
	ID                 string                    `json:"id"`
	DisplayName        string                    `json:"name"`
	UpdateStatus       freshness.Status          `json:"update_status"`
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	LastModified       *time.Time                `json:"last_modified"`
	ForReview          bool                      `json:"for_review"`
}

// Columns is the fixed export column order shared with the exporter.
func Columns() []string {
	return []string{"id", "name", "update_status", "verification_status", "last_modified", "for_review"}
}

// Summary counts the filtered set by derived status plus the review flag.
type Summary struct {
	Active            int `json:"active"`
	Outdated          int `json:"outdated"`
	NeedsVerification int `json:"needs_verification"`
	ForReview         int `json:"for_review"`
}

// Assemble filters, sorts, and flattens residents into report rows. Summary
// statistics cover the filtered set, not the full collection.
func Assemble(residents []*models.Resident, filter ReportFilter, now time.Time) ([]Row, Summary) {
	filter = filter.Normalize()

	preds := []Predicate[*models.Resident]{
		ResidentStatus(filter.UpdateStatus, now),
		ResidentVerification(filter.VerificationStatus),
	}
	if filter.Year != 0 {
		preds = append(preds, residentInPeriod(filter.Year, filter.Month))
	}
	filtered := Apply(residents, preds...)

	sortResidents(filtered, filter.SortBy, filter.SortOrder)

	rows := make([]Row, 0, len(filtered))
	var summary Summary
	for _, r := range filtered {
		status := r.DerivedStatus(now)
		switch status {
		case freshness.StatusActive:
			summary.Active++
		case freshness.StatusOutdated:
			summary.Outdated++
		case freshness.StatusNeedsVerification:
			summary.NeedsVerification++
		}
		if r.ForReview {
			summary.ForReview++
		}
		rows = append(rows, Row{
			ID:                 r.ID.String(),
			DisplayName:        r.DisplayName(),
			UpdateStatus:       status,
			VerificationStatus: r.Verification.Status,
			LastModified:       r.LastModified,
			ForReview:          r.ForReview,
		})
	}
	return rows, summary
}

func residentInPeriod(year int, month time.Month) Predicate[*models.Resident] {
	return func(r *models.Resident) bool {
		if r.CreatedAt.Year() != year {
			return false
		}
		return month == 0 || r.CreatedAt.Month() == month
	}
}

// sortResidents orders in place with a stable sort so ties preserve original
// relative order.
func sortResidents(residents []*models.Resident, sortBy, sortOrder string) {
	less := lessFunc(sortBy)
	if sortOrder == "desc" {
		inner := less
		less = func(a, b *models.Resident) bool { return inner(b, a) }
	}
	sort.SliceStable(residents, func(i, j int) bool {
		return less(residents[i], residents[j])
	})
}

func lessFunc(sortBy string) func(a, b *models.Resident) bool {
	switch sortBy {
	case SortByCreatedAt:
		return func(a, b *models.Resident) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortByFirstName:
		return func(a, b *models.Resident) bool {
			return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
		}
	case SortByLastName:
		return func(a, b *models.Resident) bool {
			return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
		}
	case SortByVerificationStatus:
		return func(a, b *models.Resident) bool {
			return a.Verification.Status < b.Verification.Status
		}
	default: // last_modified; nil timestamps sort oldest
		return func(a, b *models.Resident) bool {
			switch {
			case a.LastModified == nil:
				return b.LastModified != nil
			case b.LastModified == nil:
				return false
			default:
				return a.LastModified.Before(*b.LastModified)
			}
		}
	}
}
