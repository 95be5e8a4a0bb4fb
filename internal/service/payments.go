package service

import (
	"context"
	"errors"
	"time"

	"parkhere/internal/domain/bookings"
	"parkhere/internal/domain/locations"
	"parkhere/internal/domain/paymentsrepo"
	"parkhere/internal/domain/storage"
	"parkhere/internal/payments"
	"parkhere/internal/txid"

	"go.uber.org/zap"
)

type PaymentService struct {
	store   *storage.Container
	gateway payments.Gateway
	txids   *txid.Generator
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewPaymentService(store *storage.Container, gateway payments.Gateway, txids *txid.Generator, logger *zap.SugaredLogger) *PaymentService {
	return &PaymentService{store: store, gateway: gateway, txids: txids, logger: logger, now: time.Now}
}

type InitiatePaymentInput struct {
	UserID    int64
	BookingID int64
	Amount    float64
	Method    string
}

// Initiate opens a payment attempt for a booking. The amount must match the
// booking's total exactly, and a booking that already has a completed
// payment cannot be paid twice.
func (s *PaymentService) Initiate(ctx context.Context, in InitiatePaymentInput) (*paymentsrepo.Payment, *payments.CheckoutSession, error) {
	b, err := s.store.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			return nil, nil, newError(CodeNotFound, "booking not found")
		}
		return nil, nil, wrapError(CodeInternal, "get booking", err)
	}
	if b.UserID != in.UserID {
		return nil, nil, newError(CodeForbidden, "booking belongs to another user")
	}
	if b.Status == bookings.StatusCancelled {
		return nil, nil, newError(CodePreconditionFailed, "cannot pay for a cancelled booking")
	}

	if _, err := s.store.Payments.GetCompletedByBooking(ctx, in.BookingID); err == nil {
		return nil, nil, newError(CodeDuplicate, "booking is already paid")
	} else if !errors.Is(err, paymentsrepo.ErrNotFound) {
		return nil, nil, wrapError(CodeInternal, "check existing payment", err)
	}

	if in.Amount != b.TotalAmount {
		return nil, nil, newError(CodeAmountMismatch, "amount does not match the booking total")
	}

	txnID, err := s.txids.Next()
	if err != nil {
		return nil, nil, wrapError(CodeInternal, "generate transaction id", err)
	}

	session, err := s.gateway.Initiate(ctx, payments.InitiateRequest{
		TransactionID: txnID,
		Amount:        in.Amount,
		Method:        in.Method,
	})
	if err != nil {
		return nil, nil, wrapError(CodeInternal, "gateway initiate", err)
	}

	p := &paymentsrepo.Payment{
		BookingID:     in.BookingID,
		UserID:        in.UserID,
		Amount:        in.Amount,
		Method:        in.Method,
		Status:        paymentsrepo.StatusPending,
		TransactionID: txnID,
	}
	if err := s.store.Payments.Create(ctx, p); err != nil {
		if errors.Is(err, paymentsrepo.ErrDuplicateTransaction) {
			return nil, nil, newError(CodeDuplicate, "transaction id already exists")
		}
		return nil, nil, wrapError(CodeInternal, "create payment", err)
	}

	s.logger.Infow("payment initiated",
		"payment_id", p.ID,
		"booking_id", p.BookingID,
		"transaction_id", p.TransactionID,
		"amount", p.Amount,
	)
	return p, session, nil
}

// Verify settles a pending payment after the gateway confirms or rejects
// it. The duplicate check reruns inside the transaction: two verifies for
// the same booking can both pass the initiate-time check, only one may
// reach completed.
func (s *PaymentService) Verify(ctx context.Context, userID int64, transactionID string) (*paymentsrepo.Payment, error) {
	known, err := s.store.Payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, paymentsrepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "payment not found")
		}
		return nil, wrapError(CodeInternal, "get payment", err)
	}
	if known.UserID != userID {
		return nil, newError(CodeForbidden, "payment belongs to another user")
	}

	verdict, err := s.gateway.Verify(ctx, payments.VerifyRequest{
		Method:        known.Method,
		TransactionID: transactionID,
	})
	if err != nil {
		return nil, wrapError(CodeInternal, "gateway verify", err)
	}

	var settled *paymentsrepo.Payment
	err = s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		p, err := tx.Payments.GetByTransactionID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, paymentsrepo.ErrNotFound) {
				return newError(CodeNotFound, "payment not found")
			}
			return wrapError(CodeInternal, "get payment", err)
		}
		if p.Status != paymentsrepo.StatusPending {
			return newError(CodePreconditionFailed, "payment is not pending")
		}

		target := paymentsrepo.StatusFailed
		if verdict.Succeeded {
			if _, err := tx.Payments.GetCompletedByBooking(ctx, p.BookingID); err == nil {
				return newError(CodeDuplicate, "booking is already paid")
			} else if !errors.Is(err, paymentsrepo.ErrNotFound) {
				return wrapError(CodeInternal, "check existing payment", err)
			}
			target = paymentsrepo.StatusCompleted
		}

		if err := tx.Payments.SetStatus(ctx, p.ID, target); err != nil {
			return wrapError(CodeInternal, "settle payment", err)
		}
		p.Status = target
		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("payment settled",
		"payment_id", settled.ID,
		"transaction_id", settled.TransactionID,
		"status", settled.Status,
	)
	return settled, nil
}

func (s *PaymentService) History(ctx context.Context, userID int64, limit, offset int) ([]paymentsrepo.Payment, int, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := s.store.Payments.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, wrapError(CodeInternal, "payment history", err)
	}
	return list, total, nil
}

func (s *PaymentService) Get(ctx context.Context, userID int64, isAdmin bool, paymentID int64) (*paymentsrepo.Payment, error) {
	p, err := s.store.Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, paymentsrepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "payment not found")
		}
		return nil, wrapError(CodeInternal, "get payment", err)
	}
	if p.UserID != userID && !isAdmin {
		return nil, newError(CodeForbidden, "payment belongs to another user")
	}
	return p, nil
}

// RequestRefund moves a completed payment into refund_requested.
func (s *PaymentService) RequestRefund(ctx context.Context, userID int64, paymentID int64, reason string) (*paymentsrepo.Payment, error) {
	p, err := s.store.Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, paymentsrepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "payment not found")
		}
		return nil, wrapError(CodeInternal, "get payment", err)
	}
	if p.UserID != userID {
		return nil, newError(CodeForbidden, "payment belongs to another user")
	}
	if !paymentsrepo.CanTransition(p.Status, paymentsrepo.StatusRefundRequested) {
		return nil, newError(CodePreconditionFailed, "only completed payments can be refunded")
	}

	if err := s.store.Payments.MarkRefundRequested(ctx, p.ID, reason); err != nil {
		return nil, wrapError(CodeInternal, "request refund", err)
	}
	p.Status = paymentsrepo.StatusRefundRequested
	p.RefundReason = &reason

	s.logger.Infow("refund requested", "payment_id", p.ID, "user_id", userID)
	return p, nil
}

// ProcessRefund is the admin side of the refund path. Marking a payment
// refunded force-cancels its booking in the same transaction: refunded
// money must never keep a slot occupied.
func (s *PaymentService) ProcessRefund(ctx context.Context, paymentID int64) (*paymentsrepo.Payment, error) {
	var refunded *paymentsrepo.Payment
	err := s.store.WithBookingTx(ctx, func(tx *storage.BookingTx) error {
		p, err := tx.Payments.GetByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, paymentsrepo.ErrNotFound) {
				return newError(CodeNotFound, "payment not found")
			}
			return wrapError(CodeInternal, "get payment", err)
		}
		if !paymentsrepo.CanTransition(p.Status, paymentsrepo.StatusRefunded) {
			return newError(CodePreconditionFailed, "payment is not refundable")
		}

		now := s.now()
		if err := tx.Payments.MarkRefunded(ctx, p.ID, now); err != nil {
			return wrapError(CodeInternal, "mark refunded", err)
		}

		b, err := tx.Bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			return wrapError(CodeInternal, "get booking", err)
		}
		if b.Live() {
			wasUpcoming := b.Status == bookings.StatusUpcoming
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
		}

		p.Status = paymentsrepo.StatusRefunded
		p.RefundedAt = &now
		refunded = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("refund processed", "payment_id", refunded.ID, "booking_id", refunded.BookingID)
	return refunded, nil
}
