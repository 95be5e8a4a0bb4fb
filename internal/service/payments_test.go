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
	"parkhere/internal/domain/paymentsrepo"
	"parkhere/internal/payments"
	"parkhere/internal/txid"
)

func newTestPaymentService(t *testing.T, env *testEnv) *PaymentService {
	t.Helper()
	gen, err := txid.NewGenerator("test-salt")
	require.NoError(t, err)

	manager := payments.NewManager()
	manager.RegisterGateway("card", payments.NewSandboxAdapter("M-TEST", "sandbox-secret", "https://sandbox.example/checkout"))

	svc := NewPaymentService(env.store, manager, gen, zap.NewNop().Sugar())
	svc.now = func() time.Time { return clock }
	return svc
}

func seedUpcomingBooking(t *testing.T, env *testEnv) *bookings.Booking {
	t.Helper()
	_, slotID := env.seedSlot(50)
	b, err := newTestBookingService(env).Create(context.Background(), CreateBookingInput{
		UserID:        1,
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		StartTime:     at(9),
		EndTime:       at(11),
	})
	require.NoError(t, err)
	return b
}

func TestInitiateAndVerifySettlesOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestPaymentService(t, env)
	b := seedUpcomingBooking(t, env)

	p, session, err := svc.Initiate(ctx, InitiatePaymentInput{
		UserID:    1,
		BookingID: b.ID,
		Amount:    100,
		Method:    "card",
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, paymentsrepo.StatusPending, p.Status)
	assert.NotEmpty(t, p.TransactionID)

	settled, err := svc.Verify(ctx, 1, p.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, paymentsrepo.StatusCompleted, settled.Status)

	_, err = svc.Verify(ctx, 1, p.TransactionID)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePreconditionFailed, serr.Code)

	_, _, err = svc.Initiate(ctx, InitiatePaymentInput{
		UserID:    1,
		BookingID: b.ID,
		Amount:    100,
		Method:    "card",
	})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeDuplicate, serr.Code)
}

func TestInitiateAmountMismatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestPaymentService(t, env)
	b := seedUpcomingBooking(t, env)

	_, _, err := svc.Initiate(ctx, InitiatePaymentInput{
		UserID:    1,
		BookingID: b.ID,
		Amount:    90,
		Method:    "card",
	})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeAmountMismatch, serr.Code)
}

func TestProcessRefundRequiresRequestedState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestPaymentService(t, env)
	b := seedUpcomingBooking(t, env)

	p, _, err := svc.Initiate(ctx, InitiatePaymentInput{
		UserID:    1,
		BookingID: b.ID,
		Amount:    100,
		Method:    "card",
	})
	require.NoError(t, err)
	_, err = svc.Verify(ctx, 1, p.TransactionID)
	require.NoError(t, err)

	// A completed payment alone is not enough; the holder has to ask
	// first.
	_, err = svc.ProcessRefund(ctx, p.ID)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePreconditionFailed, serr.Code)

	requested, err := svc.RequestRefund(ctx, 1, p.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, paymentsrepo.StatusRefundRequested, requested.Status)

	refunded, err := svc.ProcessRefund(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, paymentsrepo.StatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAt)

	got, err := env.books.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, got.Status)

	slot, err := env.locs.GetSlot(ctx, b.SlotID)
	require.NoError(t, err)
	assert.Equal(t, locations.StatusAvailable, slot.Status)
	requireCounters(t, env, slot.LocationID, 1, 1)
}

func TestRequestRefundRejectsPending(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newTestPaymentService(t, env)
	b := seedUpcomingBooking(t, env)

	p, _, err := svc.Initiate(ctx, InitiatePaymentInput{
		UserID:    1,
		BookingID: b.ID,
		Amount:    100,
		Method:    "card",
	})
	require.NoError(t, err)

	_, err = svc.RequestRefund(ctx, 1, p.ID, "changed my mind")
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePreconditionFailed, serr.Code)
}
