package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkhere/internal/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrIntervalTaken surfaces the bookings_no_overlap exclusion constraint.
// The application checks conflicts before inserting; the constraint is the
// backstop when two transactions race past the check on different slots'
// lock ordering.
var ErrIntervalTaken = errors.New("slot interval already booked")

type Store interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, bookingID int64) (*Booking, error)
	ListByUser(ctx context.Context, userID int64, filter Filter) ([]Booking, error)
	UpdateStatus(ctx context.Context, bookingID int64, status string, actualEnd *time.Time) error
	Extend(ctx context.Context, bookingID int64, newEnd time.Time, newAmount float64) error

	// LiveIntervalsBySlot returns the [start,end) windows of every upcoming
	// or active booking on the slot, for conflict detection.
	LiveIntervalsBySlot(ctx context.Context, slotID int64) ([]Interval, error)
	CountLiveBySlot(ctx context.Context, slotID int64) (int, error)

	ActivateDue(ctx context.Context, now time.Time) (int64, error)
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
}

type Filter struct {
	Status   string
	Upcoming bool
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const bookingColumns = `id, user_id, slot_id, vehicle_number, start_time, end_time,
	actual_end_time, status, total_amount, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	const query = `
		INSERT INTO bookings (user_id, slot_id, vehicle_number, start_time, end_time, status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		b.UserID,
		b.SlotID,
		b.VehicleNumber,
		b.StartTime,
		b.EndTime,
		b.Status,
		b.TotalAmount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			return ErrIntervalTaken
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, bookingID int64) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var b Booking
	err := r.q.QueryRow(ctx, query, bookingID).Scan(
		&b.ID,
		&b.UserID,
		&b.SlotID,
		&b.VehicleNumber,
		&b.StartTime,
		&b.EndTime,
		&b.ActualEndTime,
		&b.Status,
		&b.TotalAmount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, filter Filter) ([]Booking, error) {
	base := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1`

	args := []any{userID}
	idx := 2

	if filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	if filter.Upcoming {
		base += fmt.Sprintf(" AND status IN ('%s', '%s')", StatusUpcoming, StatusActive)
	}
	base += " ORDER BY start_time DESC"

	rows, err := r.q.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.SlotID,
			&b.VehicleNumber,
			&b.StartTime,
			&b.EndTime,
			&b.ActualEndTime,
			&b.Status,
			&b.TotalAmount,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, bookingID int64, status string, actualEnd *time.Time) error {
	const query = `
		UPDATE bookings
		SET status = $1, actual_end_time = COALESCE($2, actual_end_time), updated_at = now()
		WHERE id = $3
	`
	res, err := r.q.Exec(ctx, query, status, actualEnd, bookingID)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Extend(ctx context.Context, bookingID int64, newEnd time.Time, newAmount float64) error {
	const query = `
		UPDATE bookings
		SET end_time = $1, total_amount = $2, updated_at = now()
		WHERE id = $3
	`
	res, err := r.q.Exec(ctx, query, newEnd, newAmount, bookingID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			return ErrIntervalTaken
		}
		return fmt.Errorf("extend booking: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) LiveIntervalsBySlot(ctx context.Context, slotID int64) ([]Interval, error) {
	const query = `
		SELECT id, start_time, end_time
		FROM bookings
		WHERE slot_id = $1 AND status IN ($2, $3)
		ORDER BY start_time
	`
	rows, err := r.q.Query(ctx, query, slotID, StatusUpcoming, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("live intervals: %w", err)
	}
	defer rows.Close()

	var out []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.BookingID, &iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (r *Repository) CountLiveBySlot(ctx context.Context, slotID int64) (int, error) {
	const query = `
		SELECT COUNT(*) FROM bookings WHERE slot_id = $1 AND status IN ($2, $3)
	`
	var n int
	if err := r.q.QueryRow(ctx, query, slotID, StatusUpcoming, StatusActive).Scan(&n); err != nil {
		return 0, fmt.Errorf("count live bookings: %w", err)
	}
	return n, nil
}

// ActivateDue flips upcoming bookings whose window has opened to active.
func (r *Repository) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE status = $2 AND start_time <= $3
	`
	res, err := r.q.Exec(ctx, query, StatusActive, StatusUpcoming, now)
	if err != nil {
		return 0, fmt.Errorf("activate due bookings: %w", err)
	}
	return res.RowsAffected(), nil
}

// CompleteDue finishes active bookings whose window has closed, records the
// actual end, frees each slot and gives the availability back to its
// location. Runs as one statement so the counters stay consistent with the
// status flips.
func (r *Repository) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		WITH done AS (
			UPDATE bookings
			SET status = $1, actual_end_time = end_time, updated_at = now()
			WHERE status = $2 AND end_time <= $3
			RETURNING slot_id
		), freed AS (
			UPDATE slots s
			SET status = 'available', updated_at = now()
			FROM done d
			WHERE s.id = d.slot_id
			RETURNING s.location_id
		), bumped AS (
			UPDATE parking_locations p
			SET available_slots = LEAST(p.total_slots, p.available_slots + f.cnt), updated_at = now()
			FROM (SELECT location_id, COUNT(*) AS cnt FROM freed GROUP BY location_id) f
			WHERE p.id = f.location_id
			RETURNING p.id
		)
		SELECT COUNT(*) FROM done
	`
	var n int64
	if err := r.q.QueryRow(ctx, query, StatusCompleted, StatusActive, now).Scan(&n); err != nil {
		return 0, fmt.Errorf("complete due bookings: %w", err)
	}
	return n, nil
}
