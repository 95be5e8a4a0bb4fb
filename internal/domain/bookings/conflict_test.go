package bookings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: ts(9, 0), End: ts(11, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{Start: ts(9, 0), End: ts(11, 0)}, true},
		{"contained", Interval{Start: ts(9, 30), End: ts(10, 30)}, true},
		{"containing", Interval{Start: ts(8, 0), End: ts(12, 0)}, true},
		{"partial left", Interval{Start: ts(8, 0), End: ts(10, 0)}, true},
		{"partial right", Interval{Start: ts(10, 0), End: ts(12, 0)}, true},
		{"touching end", Interval{Start: ts(11, 0), End: ts(13, 0)}, false},
		{"touching start", Interval{Start: ts(7, 0), End: ts(9, 0)}, false},
		{"disjoint before", Interval{Start: ts(6, 0), End: ts(8, 0)}, false},
		{"disjoint after", Interval{Start: ts(12, 0), End: ts(14, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			// overlap is symmetric
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestFindConflict(t *testing.T) {
	existing := []Interval{
		{BookingID: 1, Start: ts(9, 0), End: ts(11, 0)},
		{BookingID: 2, Start: ts(13, 0), End: ts(15, 0)},
	}

	t.Run("reports the blocking booking", func(t *testing.T) {
		blocking, ok := FindConflict(existing, ts(10, 0), ts(12, 0), 0)
		require.True(t, ok)
		assert.Equal(t, int64(1), blocking.BookingID)
	})

	t.Run("gap between bookings is free", func(t *testing.T) {
		_, ok := FindConflict(existing, ts(11, 0), ts(13, 0), 0)
		assert.False(t, ok)
	})

	t.Run("excluded booking does not block itself", func(t *testing.T) {
		_, ok := FindConflict(existing, ts(9, 0), ts(12, 0), 1)
		assert.False(t, ok)
	})

	t.Run("exclusion does not hide other bookings", func(t *testing.T) {
		blocking, ok := FindConflict(existing, ts(9, 0), ts(14, 0), 1)
		require.True(t, ok)
		assert.Equal(t, int64(2), blocking.BookingID)
	})
}

func TestMaxAdditionalHours(t *testing.T) {
	existing := []Interval{
		{BookingID: 1, Start: ts(9, 0), End: ts(11, 0)},
		{BookingID: 2, Start: ts(14, 0), End: ts(16, 0)},
	}

	t.Run("limited by next booking", func(t *testing.T) {
		// current booking ends at 11:00, next starts at 14:00
		assert.Equal(t, 3, MaxAdditionalHours(existing, ts(11, 0), 1))
	})

	t.Run("partial hour gap rounds down", func(t *testing.T) {
		assert.Equal(t, 2, MaxAdditionalHours(existing, ts(11, 30), 1))
	})

	t.Run("unbounded when nothing follows", func(t *testing.T) {
		assert.Equal(t, -1, MaxAdditionalHours(existing, ts(16, 0), 2))
	})

	t.Run("zero when next booking is adjacent", func(t *testing.T) {
		assert.Equal(t, 0, MaxAdditionalHours(existing, ts(14, 0), 1))
	})
}

func TestChargeAmount(t *testing.T) {
	t.Run("whole hours", func(t *testing.T) {
		assert.Equal(t, 100.0, ChargeAmount(ts(9, 0), ts(11, 0), 50))
	})

	t.Run("partial hours pro rata", func(t *testing.T) {
		assert.Equal(t, 75.0, ChargeAmount(ts(9, 0), ts(10, 30), 50))
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		// 1h40m at 10/hr = 16.666... -> 16.67
		assert.Equal(t, 16.67, ChargeAmount(ts(9, 0), ts(10, 40), 10))
	})

	t.Run("zero rate", func(t *testing.T) {
		assert.Equal(t, 0.0, ChargeAmount(ts(9, 0), ts(11, 0), 0))
	})
}

func TestValidateInterval(t *testing.T) {
	now := ts(8, 0)

	require.NoError(t, ValidateInterval(ts(9, 0), ts(11, 0), now))
	require.NoError(t, ValidateInterval(now, ts(9, 0), now))

	assert.ErrorIs(t, ValidateInterval(ts(11, 0), ts(9, 0), now), ErrEndBeforeStart)
	assert.ErrorIs(t, ValidateInterval(ts(9, 0), ts(9, 0), now), ErrEndBeforeStart)
	assert.ErrorIs(t, ValidateInterval(ts(7, 0), ts(9, 0), now), ErrStartInPast)
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusUpcoming, StatusActive}:    true,
		{StatusUpcoming, StatusCancelled}: true,
		{StatusActive, StatusCompleted}:   true,
		{StatusActive, StatusCancelled}:   true,
	}

	statuses := []string{StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equalf(t, allowed[[2]string{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
