// Package analytics buckets record collections into dense, chart-ready time
// series. The aggregation is generic over "anything with a creation
// timestamp" so residents, activity entries, and projects share one
// implementation.
package analytics

import (
	"strconv"
	"time"
)

// Period selects the bucketing mode of a series.
type Period string

const (
	// PeriodAll is the trailing-12-months view ending at the current month.
	PeriodAll Period = "all"
	// PeriodYear buckets a single year into Jan..Dec.
	PeriodYear Period = "year"
	// PeriodMonth buckets a single month into days.
	PeriodMonth Period = "month"
)

// Window describes the requested aggregation range.
//
// Month is only meaningful when Year is set; a year-period window with a
// month set collapses to the daily view of that month.
type Window struct {
	Period Period
	Year   int
	Month  time.Month
}

// Normalize resolves the effective mode, defaulting to the trailing view.
func (w Window) Normalize() Window {
	switch w.Period {
	case PeriodYear:
		if w.Year == 0 {
			return Window{Period: PeriodAll}
		}
		if w.Month != 0 {
			return Window{Period: PeriodMonth, Year: w.Year, Month: w.Month}
		}
		return w
	case PeriodMonth:
		if w.Year == 0 || w.Month == 0 {
			return Window{Period: PeriodAll}
		}
		return w
	default:
		return Window{Period: PeriodAll}
	}
}

// Bucket is one chart point. The series is dense: every unit in the window
// appears, zero counts included, so chart rendering stays stable.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series aggregates records into dense buckets. createdAt extracts the
// bucketing key; records outside the window are excluded, never clipped into
// boundary buckets.
func Series[T any](records []T, createdAt func(T) time.Time, w Window, now time.Time) []Bucket {
	switch w = w.Normalize(); w.Period {
	case PeriodYear:
		return yearSeries(records, createdAt, w.Year)
	case PeriodMonth:
		return monthSeries(records, createdAt, w.Year, w.Month)
	default:
		return trailingSeries(records, createdAt, now)
	}
}

// monthKey collapses a timestamp to a comparable year*12+month ordinal.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func trailingSeries[T any](records []T, createdAt func(T) time.Time, now time.Time) []Bucket {
	end := monthKey(now)
	start := end - 11

	counts := make(map[int]int)
	for _, r := range records {
		k := monthKey(createdAt(r))
		if k >= start && k <= end {
			counts[k]++
		}
	}

	buckets := make([]Bucket, 0, 12)
	for k := start; k <= end; k++ {
		label := time.Date(k/12, time.Month(k%12+1), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		buckets = append(buckets, Bucket{Label: label, Count: counts[k]})
	}
	return buckets
}

func yearSeries[T any](records []T, createdAt func(T) time.Time, year int) []Bucket {
	var counts [12]int
	for _, r := range records {
		t := createdAt(r)
		if t.Year() == year {
			counts[int(t.Month())-1]++
		}
	}

	buckets := make([]Bucket, 0, 12)
	for m := time.January; m <= time.December; m++ {
		buckets = append(buckets, Bucket{Label: m.String()[:3], Count: counts[m-1]})
	}
	return buckets
}

func monthSeries[T any](records []T, createdAt func(T) time.Time, year int, month time.Month) []Bucket {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	counts := make([]int, days+1)
	for _, r := range records {
		t := createdAt(r)
		if t.Year() == year && t.Month() == month {
			counts[t.Day()]++
		}
	}

	buckets := make([]Bucket, 0, days)
	for d := 1; d <= days; d++ {
		buckets = append(buckets, Bucket{Label: strconv.Itoa(d), Count: counts[d]})
	}
	return buckets
}
