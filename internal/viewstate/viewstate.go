// Package viewstate models the console list view as one immutable value
// updated by discrete transitions, replacing scattered per-widget filter
// state. Transitions return a new state; the previous value is never
// mutated.
package viewstate

import (
	"time"

	"civreg/internal/analytics"
	"civreg/internal/freshness"
	"civreg/internal/reporting"
	"civreg/internal/residents/models"
)

// ViewState is the full filter and chart selection of a record list view.
type ViewState struct {
	Search    string
	Status    freshness.Status
	Tab       models.Role
	ForReview bool
	Report    reporting.ReportFilter
	Window    analytics.Window
}

// New returns the initial state: no filters, trailing-12 chart window.
func New() ViewState {
	return ViewState{
		Report: reporting.ReportFilter{}.Normalize(),
		Window: analytics.Window{}.Normalize(),
	}
}

// WithSearch sets the search query.
func (v ViewState) WithSearch(query string) ViewState {
	v.Search = query
	return v
}

// WithStatus sets the derived-status filter, empty for all.
func (v ViewState) WithStatus(status freshness.Status) ViewState {
	v.Status = status
	return v
}

// WithTab selects a role tab.
func (v ViewState) WithTab(tab models.Role) ViewState {
	v.Tab = tab
	return v
}

// WithForReview toggles the review-flag filter.
func (v ViewState) WithForReview(on bool) ViewState {
	v.ForReview = on
	return v
}

// SelectYear narrows the report and chart to a year. Any previously chosen
// month is reset: a month is only meaningful within its year.
func (v ViewState) SelectYear(year int) ViewState {
	v.Report.Year = year
	v.Report.Month = 0
	v.Window = analytics.Window{Period: analytics.PeriodYear, Year: year}.Normalize()
	if year == 0 {
		v.Window = analytics.Window{}.Normalize()
	}
	return v
}

// SelectMonth narrows further to a month within the selected year. Rejected
// when no year is selected.
func (v ViewState) SelectMonth(month time.Month) (ViewState, error) {
	if v.Report.Year == 0 {
		return v, errNoYear
	}
	if month < time.January || month > time.December {
		return v, errBadMonth
	}
	v.Report.Month = month
	v.Window = analytics.Window{
		Period: analytics.PeriodMonth,
		Year:   v.Report.Year,
		Month:  month,
	}.Normalize()
	return v, nil
}

// WithSort sets the report ordering.
func (v ViewState) WithSort(sortBy, sortOrder string) ViewState {
	v.Report.SortBy = sortBy
	v.Report.SortOrder = sortOrder
	v.Report = v.Report.Normalize()
	return v
}

// Reset drops all filters back to the initial state.
func (v ViewState) Reset() ViewState {
	return New()
}

// Filter translates the state into the list-view predicate bundle.
func (v ViewState) Filter() reporting.ResidentFilter {
	return reporting.ResidentFilter{
		Search:    v.Search,
		Status:    v.Status,
		ForReview: v.ForReview,
		Role:      v.Tab,
	}
}
