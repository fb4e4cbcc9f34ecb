package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stamped struct{ at time.Time }

func at(t time.Time) stamped { return stamped{at: t} }

func created(s stamped) time.Time { return s.at }

var aggNow = time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)

func TestSeries_YearMode_DenseTwelveBuckets(t *testing.T) {
	records := []stamped{
		at(time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)),
		at(time.Date(2025, time.February, 27, 0, 0, 0, 0, time.UTC)),
		at(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)),
		at(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)), // outside window
	}

	buckets := Series(records, created, Window{Period: PeriodYear, Year: 2025}, aggNow)

	require.Len(t, buckets, 12)
	labels := make([]string, 0, 12)
	for _, b := range buckets {
		labels = append(labels, b.Label)
		assert.GreaterOrEqual(t, b.Count, 0)
	}
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}, labels)
	assert.Equal(t, 2, buckets[1].Count, "February")
	assert.Equal(t, 1, buckets[10].Count, "November")
	assert.Equal(t, 0, buckets[0].Count, "zero-filled month")
}

func TestSeries_YearMode_EmptyInputStillDense(t *testing.T) {
	buckets := Series(nil, created, Window{Period: PeriodYear, Year: 2025}, aggNow)
	require.Len(t, buckets, 12)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
	}
}

func TestSeries_MonthMode_DaysInMonth(t *testing.T) {
	t.Run("february non-leap", func(t *testing.T) {
		buckets := Series(nil, created, Window{Period: PeriodMonth, Year: 2025, Month: time.February}, aggNow)
		assert.Len(t, buckets, 28)
	})

	t.Run("february leap", func(t *testing.T) {
		buckets := Series(nil, created, Window{Period: PeriodMonth, Year: 2024, Month: time.February}, aggNow)
		assert.Len(t, buckets, 29)
	})

	t.Run("counts by day with numeric labels", func(t *testing.T) {
		records := []stamped{
			at(time.Date(2025, time.February, 14, 8, 0, 0, 0, time.UTC)),
			at(time.Date(2025, time.February, 14, 19, 0, 0, 0, time.UTC)),
			at(time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)), // excluded, not clipped
		}
		buckets := Series(records, created, Window{Period: PeriodMonth, Year: 2025, Month: time.February}, aggNow)
		require.Len(t, buckets, 28)
		assert.Equal(t, "1", buckets[0].Label)
		assert.Equal(t, "14", buckets[13].Label)
		assert.Equal(t, 2, buckets[13].Count)
		assert.Equal(t, "28", buckets[27].Label)
	})
}

func TestSeries_TrailingTwelveMonths(t *testing.T) {
	records := []stamped{
		at(aggNow.AddDate(0, -1, 0)),  // May 2025
		at(aggNow.AddDate(0, -11, 0)), // July 2024, oldest included month
		at(aggNow.AddDate(0, -12, 0)), // June 2024, outside the window
		at(aggNow),
	}

	buckets := Series(records, created, Window{}, aggNow)

	require.Len(t, buckets, 12)
	assert.Equal(t, "Jul 2024", buckets[0].Label, "oldest first")
	assert.Equal(t, "Jun 2025", buckets[11].Label, "ends at current month")
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[11].Count)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 3, total, "record outside the window is excluded")
}

func TestWindowNormalize(t *testing.T) {
	t.Run("year with month collapses to month mode", func(t *testing.T) {
		w := Window{Period: PeriodYear, Year: 2025, Month: time.April}.Normalize()
		assert.Equal(t, PeriodMonth, w.Period)
	})

	t.Run("month without year falls back to trailing", func(t *testing.T) {
		w := Window{Period: PeriodMonth, Month: time.April}.Normalize()
		assert.Equal(t, PeriodAll, w.Period)
	})

	t.Run("unknown period falls back to trailing", func(t *testing.T) {
		w := Window{Period: "decade"}.Normalize()
		assert.Equal(t, PeriodAll, w.Period)
	})
}
