package paymentsrepo

import (
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("payment not found")
	ErrDuplicateTransaction = errors.New("transaction id already exists")
)

const (
	StatusPending         = "pending"
	StatusCompleted       = "completed"
	StatusFailed          = "failed"
	StatusRefundRequested = "refund_requested"
	StatusRefunded        = "refunded"
)

const (
	MethodCard   = "card"
	MethodWallet = "wallet"
	MethodUPI    = "upi"
)

type Payment struct {
	ID            int64      `json:"id"`
	BookingID     int64      `json:"booking_id"`
	UserID        int64      `json:"user_id"`
	Amount        float64    `json:"amount"`
	Method        string     `json:"payment_method"`
	Status        string     `json:"payment_status"`
	TransactionID string     `json:"transaction_id"`
	RefundReason  *string    `json:"refund_reason,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CanTransition reports whether a payment may move between statuses.
// pending settles or fails; the refund path is strictly ordered
// completed, then refund_requested, then refunded. A completed payment
// never jumps straight to refunded.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefundRequested
	case StatusRefundRequested:
		return to == StatusRefunded
	default:
		return false
	}
}
