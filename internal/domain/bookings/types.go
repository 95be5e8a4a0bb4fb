package bookings

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("booking not found")
)

// Booking statuses. upcoming and active are "live": they occupy the slot
// interval and participate in conflict detection. completed and cancelled
// are terminal.
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	SlotID        int64      `json:"slot_id"`
	VehicleNumber string     `json:"vehicle_number"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	ActualEndTime *time.Time `json:"actual_end_time,omitempty"`
	Status        string     `json:"status"`
	TotalAmount   float64    `json:"total_amount"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Live reports whether the booking still occupies its slot interval.
func (b *Booking) Live() bool {
	return b.Status == StatusUpcoming || b.Status == StatusActive
}

// CanTransition reports whether a booking may move from one status to
// another. completed and cancelled are immutable.
func CanTransition(from, to string) bool {
	switch from {
	case StatusUpcoming:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
