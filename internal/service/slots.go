package service

import (
	"context"
	"errors"

	"parkhere/internal/domain/locations"
	"parkhere/internal/domain/storage"

	"go.uber.org/zap"
)

// SlotService covers the administrative slot edits. Every mutation adjusts
// the owning location's counters in the same transaction, keeping
// available_slots equal to the number of slots in status available.
type SlotService struct {
	store  *storage.Container
	logger *zap.SugaredLogger
}

func NewSlotService(store *storage.Container, logger *zap.SugaredLogger) *SlotService {
	return &SlotService{store: store, logger: logger}
}

type AddSlotInput struct {
	LocationID   int64
	SlotNumber   string
	Type         string
	Status       string
	PricePerHour float64
}

func (s *SlotService) AddSlot(ctx context.Context, in AddSlotInput) (*locations.Slot, error) {
	if in.PricePerHour < 0 {
		return nil, validationf("price per hour cannot be negative")
	}
	if in.Status == "" {
		in.Status = locations.StatusAvailable
	}

	slot := &locations.Slot{
		LocationID:   in.LocationID,
		SlotNumber:   in.SlotNumber,
		Type:         in.Type,
		Status:       in.Status,
		PricePerHour: in.PricePerHour,
	}
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		if _, err := tx.Locations.GetLocation(ctx, in.LocationID); err != nil {
			if errors.Is(err, locations.ErrNotFound) {
				return newError(CodeNotFound, "location not found")
			}
			return wrapError(CodeInternal, "get location", err)
		}
		if err := tx.Locations.CreateSlot(ctx, slot); err != nil {
			if errors.Is(err, locations.ErrDuplicateSlotNumber) {
				return newError(CodeDuplicate, "slot number already exists at this location")
			}
			return wrapError(CodeInternal, "create slot", err)
		}

		availableDelta := 0
		if slot.Status == locations.StatusAvailable {
			availableDelta = 1
		}
		if err := tx.Locations.AdjustCounters(ctx, in.LocationID, 1, availableDelta); err != nil {
			return wrapError(CodeInternal, "adjust counters", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("slot added", "slot_id", slot.ID, "location_id", slot.LocationID, "slot_number", slot.SlotNumber)
	return slot, nil
}

type UpdateSlotInput struct {
	SlotID       int64
	Type         *string
	Status       *string
	PricePerHour *float64
}

// UpdateSlot edits type, rate or status. A status flip across the
// available boundary moves the location counter with it.
func (s *SlotService) UpdateSlot(ctx context.Context, in UpdateSlotInput) (*locations.Slot, error) {
	if in.PricePerHour != nil && *in.PricePerHour < 0 {
		return nil, validationf("price per hour cannot be negative")
	}

	var updated *locations.Slot
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		slot, err := tx.Locations.GetSlotForUpdate(ctx, in.SlotID)
		if err != nil {
			if errors.Is(err, locations.ErrSlotNotFound) {
				return newError(CodeNotFound, "slot not found")
			}
			return wrapError(CodeInternal, "lock slot", err)
		}

		wasAvailable := slot.Status == locations.StatusAvailable
		if in.Type != nil {
			slot.Type = *in.Type
		}
		if in.Status != nil {
			slot.Status = *in.Status
		}
		if in.PricePerHour != nil {
			slot.PricePerHour = *in.PricePerHour
		}

		if err := tx.Locations.UpdateSlot(ctx, slot); err != nil {
			return wrapError(CodeInternal, "update slot", err)
		}

		isAvailable := slot.Status == locations.StatusAvailable
		if wasAvailable != isAvailable {
			delta := -1
			if isAvailable {
				delta = 1
			}
			if err := tx.Locations.AdjustCounters(ctx, slot.LocationID, 0, delta); err != nil {
				return wrapError(CodeInternal, "adjust counters", err)
			}
		}

		updated = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("slot updated", "slot_id", updated.ID, "status", updated.Status)
	return updated, nil
}

// DeleteSlot removes a slot that no upcoming or active booking references.
func (s *SlotService) DeleteSlot(ctx context.Context, slotID int64) error {
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		slot, err := tx.Locations.GetSlotForUpdate(ctx, slotID)
		if err != nil {
			if errors.Is(err, locations.ErrSlotNotFound) {
				return newError(CodeNotFound, "slot not found")
			}
			return wrapError(CodeInternal, "lock slot", err)
		}

		live, err := tx.Bookings.CountLiveBySlot(ctx, slotID)
		if err != nil {
			return wrapError(CodeInternal, "count live bookings", err)
		}
		if live > 0 {
			return newError(CodePreconditionFailed, "slot has upcoming or active bookings")
		}

		if err := tx.Locations.DeleteSlot(ctx, slotID); err != nil {
			return wrapError(CodeInternal, "delete slot", err)
		}

		availableDelta := 0
		if slot.Status == locations.StatusAvailable {
			availableDelta = -1
		}
		if err := tx.Locations.AdjustCounters(ctx, slot.LocationID, -1, availableDelta); err != nil {
			return wrapError(CodeInternal, "adjust counters", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infow("slot deleted", "slot_id", slotID)
	return nil
}
