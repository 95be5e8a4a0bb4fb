package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkhere/internal/domain/bookings"
	"parkhere/internal/domain/locations"
)

var clock = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func newTestBookingService(env *testEnv) *BookingService {
	svc := NewBookingService(env.store, zap.NewNop().Sugar())
	svc.now = func() time.Time { return clock }
	return svc
}

func at(hour int) time.Time {
	return time.Date(2026, 9, 1, hour, 0, 0, 0, time.UTC)
}

func requireCounters(t *testing.T, env *testEnv, locationID int64, total, available int) {
	t.Helper()
	loc, err := env.locs.GetLocation(context.Background(), locationID)
	require.NoError(t, err)
	assert.Equal(t, total, loc.TotalSlots)
	assert.Equal(t, available, loc.AvailableSlots)
	assert.GreaterOrEqual(t, loc.AvailableSlots, 0)
	assert.LessOrEqual(t, loc.AvailableSlots, loc.TotalSlots)
}

func TestBookingLifecycleRestoresAvailability(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	locID, slotID := env.seedSlot(50)

	b1, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusUpcoming, b1.Status)
	assert.Equal(t, 100.0, b1.TotalAmount)
	requireCounters(t, env, locID, 1, 0)

	slot, err := env.locs.GetSlot(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, locations.StatusBooked, slot.Status)

	_, err = svc.Create(ctx, CreateBookingInput{
		UserID:        2,
		SlotID:        slotID,
		VehicleNumber: "MH12CD5678",
		StartTime:     at(10),
		EndTime:       at(12),
	})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeConflict, serr.Code)

	cancelled, err := svc.Cancel(ctx, 1, false, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.ActualEndTime)
	requireCounters(t, env, locID, 1, 1)

	slot, err = env.locs.GetSlot(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, locations.StatusAvailable, slot.Status)

	b2, err := svc.Create(ctx, CreateBookingInput{
		UserID:        2,
		SlotID:        slotID,
		VehicleNumber: "MH12CD5678",
		StartTime:     at(10),
		EndTime:       at(12),
	})
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusUpcoming, b2.Status)
	requireCounters(t, env, locID, 1, 0)
}

func TestCreateConflictReportsBlockingBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	_, slotID := env.seedSlot(50)

	b1, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)

	// An operator flips the slot back by hand; the interval scan still
	// refuses the overlapping window.
	require.NoError(t, env.locs.SetSlotStatus(ctx, slotID, locations.StatusAvailable))

	_, err = svc.Create(ctx, CreateBookingInput{
		UserID:        2,
		SlotID:        slotID,
		VehicleNumber: "MH12CD5678",
		StartTime:     at(10),
		EndTime:       at(12),
	})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, b1.ID, cerr.BlockingBookingID)
	assert.Equal(t, -1, cerr.MaxAdditionalHours)
}

func TestCancelTerminalBookingFailsPrecondition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	locID, slotID := env.seedSlot(50)

	b, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)
	require.NoError(t, env.books.UpdateStatus(ctx, b.ID, bookings.StatusCompleted, nil))

	_, err = svc.Cancel(ctx, 1, false, b.ID)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePreconditionFailed, serr.Code)
	requireCounters(t, env, locID, 1, 0)
}

func TestCancelActiveKeepsSlotOccupied(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	locID, slotID := env.seedSlot(50)

	b, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)
	require.NoError(t, env.books.UpdateStatus(ctx, b.ID, bookings.StatusActive, nil))

	cancelled, err := svc.Cancel(ctx, 1, false, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, cancelled.Status)

	slot, err := env.locs.GetSlot(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, locations.StatusBooked, slot.Status)
	requireCounters(t, env, locID, 1, 0)
}

func TestExtendConflictReportsHeadroom(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	_, slotID := env.seedSlot(50)

	b1, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)
	require.NoError(t, env.books.UpdateStatus(ctx, b1.ID, bookings.StatusActive, nil))

	b2 := &bookings.Booking{
		UserID:        2,
		SlotID:        slotID,
		VehicleNumber: "MH12CD5678",
		StartTime:     at(14),
		EndTime:       at(16),
		Status:        bookings.StatusUpcoming,
		TotalAmount:   100,
	}
	require.NoError(t, env.books.Create(ctx, b2))

	_, err = svc.Extend(ctx, 1, false, b1.ID, 5)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, b2.ID, cerr.BlockingBookingID)
	assert.Equal(t, 3, cerr.MaxAdditionalHours)

	extended, err := svc.Extend(ctx, 1, false, b1.ID, 3)
	require.NoError(t, err)
	assert.True(t, extended.EndTime.Equal(at(14)))
	assert.Equal(t, 250.0, extended.TotalAmount)
}

func TestExtendLongDurationAllowed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	_, slotID := env.seedSlot(50)

	b, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)
	require.NoError(t, env.books.UpdateStatus(ctx, b.ID, bookings.StatusActive, nil))

	extended, err := svc.Extend(ctx, 1, false, b.ID, 48)
	require.NoError(t, err)
	assert.True(t, extended.EndTime.Equal(at(11).Add(48*time.Hour)))
	assert.Equal(t, 2500.0, extended.TotalAmount)
}

func TestExtendRequiresActiveBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	_, slotID := env.seedSlot(50)

	b, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)

	_, err = svc.Extend(ctx, 1, false, b.ID, 2)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePreconditionFailed, serr.Code)

	_, err = svc.Extend(ctx, 1, false, b.ID, 0)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeValidation, serr.Code)
}

func TestCreateRejectsPastStart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestBookingService(env)
	_, slotID := env.seedSlot(50)

	_, err := svc.Create(ctx, CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(7),
		EndTime:       at(9),
	})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeValidation, serr.Code)
	assert.ErrorIs(t, err, bookings.ErrStartInPast)
}
