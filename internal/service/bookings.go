package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkhere/internal/domain/bookings"
	"parkhere/internal/domain/locations"
	"parkhere/internal/domain/storage"

	"go.uber.org/zap"
)

type BookingService struct {
	store  *storage.Container
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewBookingService(store *storage.Container, logger *zap.SugaredLogger) *BookingService {
	return &BookingService{store: store, logger: logger, now: time.Now}
}

type CreateBookingInput struct {
	UserID        int64
	SlotID        int64
	VehicleNumber string
	StartTime     time.Time
	EndTime       time.Time
}

// Create reserves a slot for a window. The slot row is locked for the whole
// transaction, so the availability check, the conflict scan, the insert and
// the counter update are one atomic unit.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*bookings.Booking, error) {
	if err := bookings.ValidateInterval(in.StartTime, in.EndTime, s.now()); err != nil {
		return nil, wrapError(CodeValidation, err.Error(), err)
	}

	var booking *bookings.Booking
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		slot, err := tx.Locations.GetSlotForUpdate(ctx, in.SlotID)
		if err != nil {
			if errors.Is(err, locations.ErrSlotNotFound) {
				return newError(CodeNotFound, "slot not found")
			}
			return wrapError(CodeInternal, "lock slot", err)
		}
		if slot.Status != locations.StatusAvailable {
			return newError(CodeConflict, "slot is not available")
		}

		live, err := tx.Bookings.LiveIntervalsBySlot(ctx, in.SlotID)
		if err != nil {
			return wrapError(CodeInternal, "load live bookings", err)
		}
		if blocking, ok := bookings.FindConflict(live, in.StartTime, in.EndTime, 0); ok {
			return &ConflictError{
				BlockingBookingID:  blocking.BookingID,
				MaxAdditionalHours: -1,
				Message:            "slot is already booked for this window",
			}
		}

		booking = &bookings.Booking{
			UserID:        in.UserID,
			SlotID:        in.SlotID,
			VehicleNumber: in.VehicleNumber,
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			Status:        bookings.StatusUpcoming,
			TotalAmount:   bookings.ChargeAmount(in.StartTime, in.EndTime, slot.PricePerHour),
		}
		if err := tx.Bookings.Create(ctx, booking); err != nil {
			if errors.Is(err, bookings.ErrIntervalTaken) {
				return &ConflictError{MaxAdditionalHours: -1, Message: "slot is already booked for this window"}
			}
			return wrapError(CodeInternal, "create booking", err)
		}

		if err := tx.Locations.SetSlotStatus(ctx, in.SlotID, locations.StatusBooked); err != nil {
			return wrapError(CodeInternal, "mark slot booked", err)
		}
		if err := tx.Locations.AdjustCounters(ctx, slot.LocationID, 0, -1); err != nil {
			return wrapError(CodeInternal, "decrement availability", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("booking created",
		"booking_id", booking.ID,
		"slot_id", booking.SlotID,
		"user_id", booking.UserID,
		"start", booking.StartTime,
		"end", booking.EndTime,
	)
	return booking, nil
}

// Get returns a booking. Non-admins can only see their own.
func (s *BookingService) Get(ctx context.Context, userID int64, isAdmin bool, bookingID int64) (*bookings.Booking, error) {
	b, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			return nil, newError(CodeNotFound, "booking not found")
		}
		return nil, wrapError(CodeInternal, "get booking", err)
	}
	if b.UserID != userID && !isAdmin {
		return nil, newError(CodeForbidden, "booking belongs to another user")
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, userID int64, filter bookings.Filter) ([]bookings.Booking, error) {
	list, err := s.store.Bookings.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, wrapError(CodeInternal, "list bookings", err)
	}
	return list, nil
}

// Cancel voids an upcoming or active booking. Only an upcoming cancel frees
// the slot: an active one had the vehicle in place, so the slot and the
// location counter stay as they are until the window closes.
func (s *BookingService) Cancel(ctx context.Context, userID int64, isAdmin bool, bookingID int64) (*bookings.Booking, error) {
	var cancelled *bookings.Booking
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		b, err := tx.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookings.ErrNotFound) {
				return newError(CodeNotFound, "booking not found")
			}
			return wrapError(CodeInternal, "get booking", err)
		}
		if b.UserID != userID && !isAdmin {
			return newError(CodeForbidden, "booking belongs to another user")
		}
		if !bookings.CanTransition(b.Status, bookings.StatusCancelled) {
			return newError(CodePreconditionFailed, fmt.Sprintf("cannot cancel a %s booking", b.Status))
		}

		wasUpcoming := b.Status == bookings.StatusUpcoming

		now := s.now()
		if err := tx.Bookings.UpdateStatus(ctx, b.ID, bookings.StatusCancelled, &now); err != nil {
			return wrapError(CodeInternal, "cancel booking", err)
		}

		if wasUpcoming {
			slot, err := tx.Locations.GetSlotForUpdate(ctx, b.SlotID)
			if err != nil {
				return wrapError(CodeInternal, "lock slot", err)
			}
			if err := tx.Locations.SetSlotStatus(ctx, slot.ID, locations.StatusAvailable); err != nil {
				return wrapError(CodeInternal, "release slot", err)
			}
			if err := tx.Locations.AdjustCounters(ctx, slot.LocationID, 0, 1); err != nil {
				return wrapError(CodeInternal, "increment availability", err)
			}
		}

		b.Status = bookings.StatusCancelled
		b.ActualEndTime = &now
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("booking cancelled", "booking_id", cancelled.ID, "user_id", cancelled.UserID)
	return cancelled, nil
}

// Extend pushes out the end time of an active booking by whole hours. The
// extension is priced at the slot's current rate and rejected when another
// live booking starts inside the new window; the conflict answer carries
// how many hours would still fit.
func (s *BookingService) Extend(ctx context.Context, userID int64, isAdmin bool, bookingID int64, additionalHours int) (*bookings.Booking, error) {
	if additionalHours < 1 {
		return nil, validationf("additional hours must be at least 1")
	}

	var extended *bookings.Booking
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		b, err := tx.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookings.ErrNotFound) {
				return newError(CodeNotFound, "booking not found")
			}
			return wrapError(CodeInternal, "get booking", err)
		}
		if b.UserID != userID && !isAdmin {
			return newError(CodeForbidden, "booking belongs to another user")
		}
		if b.Status != bookings.StatusActive {
			return newError(CodePreconditionFailed, "only active bookings can be extended")
		}

		slot, err := tx.Locations.GetSlotForUpdate(ctx, b.SlotID)
		if err != nil {
			return wrapError(CodeInternal, "lock slot", err)
		}

		newEnd := b.EndTime.Add(time.Duration(additionalHours) * time.Hour)
		live, err := tx.Bookings.LiveIntervalsBySlot(ctx, b.SlotID)
		if err != nil {
			return wrapError(CodeInternal, "load live bookings", err)
		}
		if blocking, ok := bookings.FindConflict(live, b.StartTime, newEnd, b.ID); ok {
			return &ConflictError{
				BlockingBookingID:  blocking.BookingID,
				MaxAdditionalHours: bookings.MaxAdditionalHours(live, b.EndTime, b.ID),
				Message:            "extension collides with the next booking",
			}
		}

		extra := bookings.ChargeAmount(b.EndTime, newEnd, slot.PricePerHour)
		newAmount := bookings.RoundMoney(b.TotalAmount + extra)
		if err := tx.Bookings.Extend(ctx, b.ID, newEnd, newAmount); err != nil {
			if errors.Is(err, bookings.ErrIntervalTaken) {
				return &ConflictError{MaxAdditionalHours: -1, Message: "extension collides with the next booking"}
			}
			return wrapError(CodeInternal, "extend booking", err)
		}

		b.EndTime = newEnd
		b.TotalAmount = newAmount
		extended = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("booking extended",
		"booking_id", extended.ID,
		"new_end", extended.EndTime,
		"total_amount", extended.TotalAmount,
	)
	return extended, nil
}

// ReconcileStatuses advances bookings whose windows have opened or closed.
// Runs on a ticker from main.
func (s *BookingService) ReconcileStatuses(ctx context.Context) {
	now := s.now()

	activated, err := s.store.Bookings.ActivateDue(ctx, now)
	if err != nil {
		s.logger.Errorw("activate due bookings", "error", err)
	}
	completed, err := s.store.Bookings.CompleteDue(ctx, now)
	if err != nil {
		s.logger.Errorw("complete due bookings", "error", err)
	}

	if activated > 0 || completed > 0 {
		s.logger.Infow("booking reconciliation", "activated", activated, "completed", completed)
	}
}
