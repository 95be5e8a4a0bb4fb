package locations

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("parking location not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrDuplicateSlotNumber = errors.New("slot number already exists in this location")
)

// Slot types.
const (
	TypeCar      = "car"
	TypeBike     = "bike"
	TypeHandicap = "handicap"
	TypeEV       = "ev"
)

// Slot statuses.
const (
	StatusAvailable   = "available"
	StatusBooked      = "booked"
	StatusMaintenance = "maintenance"
)

// Location is a parking site. AvailableSlots is a cached count of slots in
// status "available"; every slot mutation adjusts it in the same
// transaction, clamped to [0, TotalSlots].
type Location struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	PhotoURLs      []string  `json:"photo_urls"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Slot is a single parking space, the unit of contention for bookings.
type Slot struct {
	ID           int64     `json:"id"`
	LocationID   int64     `json:"location_id"`
	SlotNumber   string    `json:"slot_number"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	PricePerHour float64   `json:"price_per_hour"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocationFilter narrows ListLocations.
type LocationFilter struct {
	City          string
	AvailableOnly bool
}

// SlotFilter narrows ListSlots.
type SlotFilter struct {
	Type   *string
	Status *string
}
