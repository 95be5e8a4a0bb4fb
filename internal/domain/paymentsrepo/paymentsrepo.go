package paymentsrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkhere/internal/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID int64) (*Payment, error)
	GetByTransactionID(ctx context.Context, txnID string) (*Payment, error)
	// GetCompletedByBooking returns the settled payment for a booking, if
	// any. At most one payment per booking ever reaches completed.
	GetCompletedByBooking(ctx context.Context, bookingID int64) (*Payment, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Payment, int, error)
	SetStatus(ctx context.Context, paymentID int64, status string) error
	MarkRefundRequested(ctx context.Context, paymentID int64, reason string) error
	MarkRefunded(ctx context.Context, paymentID int64, at time.Time) error
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const paymentColumns = `id, booking_id, user_id, amount, payment_method, payment_status,
	transaction_id, refund_reason, refunded_at, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, p *Payment) error {
	const query = `
		INSERT INTO payments (booking_id, user_id, amount, payment_method, payment_status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		p.BookingID,
		p.UserID,
		p.Amount,
		p.Method,
		p.Status,
		p.TransactionID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "payments_transaction_id_key" {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, paymentID int64) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanPayment(r.q.QueryRow(ctx, query, paymentID))
}

func (r *Repository) GetByTransactionID(ctx context.Context, txnID string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return r.scanPayment(r.q.QueryRow(ctx, query, txnID))
}

func (r *Repository) GetCompletedByBooking(ctx context.Context, bookingID int64) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE booking_id = $1 AND payment_status = $2
		ORDER BY created_at DESC LIMIT 1`
	return r.scanPayment(r.q.QueryRow(ctx, query, bookingID, StatusCompleted))
}

func (r *Repository) scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.UserID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.TransactionID,
		&p.RefundReason,
		&p.RefundedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Payment, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID,
			&p.BookingID,
			&p.UserID,
			&p.Amount,
			&p.Method,
			&p.Status,
			&p.TransactionID,
			&p.RefundReason,
			&p.RefundedAt,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *Repository) SetStatus(ctx context.Context, paymentID int64, status string) error {
	const query = `
		UPDATE payments SET payment_status = $1, updated_at = now() WHERE id = $2
	`
	res, err := r.q.Exec(ctx, query, status, paymentID)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkRefundRequested(ctx context.Context, paymentID int64, reason string) error {
	const query = `
		UPDATE payments
		SET payment_status = $1, refund_reason = $2, updated_at = now()
		WHERE id = $3
	`
	res, err := r.q.Exec(ctx, query, StatusRefundRequested, reason, paymentID)
	if err != nil {
		return fmt.Errorf("mark refund requested: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkRefunded(ctx context.Context, paymentID int64, at time.Time) error {
	const query = `
		UPDATE payments
		SET payment_status = $1, refunded_at = $2, updated_at = now()
		WHERE id = $3
	`
	res, err := r.q.Exec(ctx, query, StatusRefunded, at, paymentID)
	if err != nil {
		return fmt.Errorf("mark refunded: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
