package bookings

import (
	"errors"
	"math"
	"time"
)

var (
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrStartInPast    = errors.New("start time cannot be in the past")
)

// Interval is a half-open booking window [Start, End). A booking ending at
// 10:00 never conflicts with one starting at 10:00.
type Interval struct {
	BookingID int64
	Start     time.Time
	End       time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// FindConflict returns the first live interval that overlaps the candidate
// window, skipping excludeID (0 to exclude nothing). Extensions pass their
// own booking id so the current interval does not block itself.
func FindConflict(existing []Interval, start, end time.Time, excludeID int64) (Interval, bool) {
	candidate := Interval{Start: start, End: end}
	for _, iv := range existing {
		if iv.BookingID == excludeID {
			continue
		}
		if iv.Overlaps(candidate) {
			return iv, true
		}
	}
	return Interval{}, false
}

// MaxAdditionalHours returns the whole hours a booking ending at end can be
// extended before hitting the next live interval on the same slot. Returns
// -1 when nothing upstream limits the extension.
func MaxAdditionalHours(existing []Interval, end time.Time, excludeID int64) int {
	limit := -1.0
	for _, iv := range existing {
		if iv.BookingID == excludeID {
			continue
		}
		if !iv.Start.Before(end) {
			gap := iv.Start.Sub(end).Hours()
			if limit < 0 || gap < limit {
				limit = gap
			}
		}
	}
	if limit < 0 {
		return -1
	}
	return int(limit)
}

// ChargeAmount computes the fee for a window at an hourly rate, rounded to
// two decimals. Partial hours are charged pro rata.
func ChargeAmount(start, end time.Time, pricePerHour float64) float64 {
	hours := end.Sub(start).Hours()
	return RoundMoney(hours * pricePerHour)
}

// RoundMoney rounds to two decimals, half away from zero.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateInterval checks the basic window rules for a new booking:
// positive duration and a start no earlier than now.
func ValidateInterval(start, end, now time.Time) error {
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	if start.Before(now) {
		return ErrStartInPast
	}
	return nil
}
