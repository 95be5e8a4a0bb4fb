package locations

import (
	"context"
	"errors"
	"fmt"

	"parkhere/internal/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	CreateLocation(ctx context.Context, loc *Location) error
	GetLocation(ctx context.Context, locationID int64) (*Location, error)
	ListLocations(ctx context.Context, filter LocationFilter) ([]Location, error)
	AddPhotoURL(ctx context.Context, locationID int64, url string) error
	RemovePhotoURL(ctx context.Context, locationID int64, url string) error

	GetSlot(ctx context.Context, slotID int64) (*Slot, error)
	// GetSlotForUpdate locks the slot row for the rest of the transaction.
	// Booking create/cancel and slot admin edits all pass through this lock,
	// which serializes check-then-act per slot.
	GetSlotForUpdate(ctx context.Context, slotID int64) (*Slot, error)
	ListSlots(ctx context.Context, locationID int64, filter SlotFilter) ([]Slot, error)
	CreateSlot(ctx context.Context, slot *Slot) error
	UpdateSlot(ctx context.Context, slot *Slot) error
	DeleteSlot(ctx context.Context, slotID int64) error
	SetSlotStatus(ctx context.Context, slotID int64, status string) error

	// AdjustCounters applies deltas to a location's slot counters.
	// available_slots is clamped to [0, total_slots] in the statement, so
	// the aggregate invariant holds even if a caller over-counts.
	AdjustCounters(ctx context.Context, locationID int64, totalDelta, availableDelta int) error
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) CreateLocation(ctx context.Context, loc *Location) error {
	const query = `
		INSERT INTO parking_locations (name, address, city, latitude, longitude, total_slots, available_slots, is_active)
		VALUES ($1, $2, $3, $4, $5, 0, 0, true)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		loc.Name,
		loc.Address,
		loc.City,
		loc.Latitude,
		loc.Longitude,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	loc.IsActive = true
	return nil
}

func (r *Repository) GetLocation(ctx context.Context, locationID int64) (*Location, error) {
	const query = `
		SELECT id, name, address, city, total_slots, available_slots,
		       latitude, longitude, COALESCE(photo_urls, '{}'), is_active,
		       created_at, updated_at
		FROM parking_locations
		WHERE id = $1
	`
	var loc Location
	err := r.q.QueryRow(ctx, query, locationID).Scan(
		&loc.ID,
		&loc.Name,
		&loc.Address,
		&loc.City,
		&loc.TotalSlots,
		&loc.AvailableSlots,
		&loc.Latitude,
		&loc.Longitude,
		&loc.PhotoURLs,
		&loc.IsActive,
		&loc.CreatedAt,
		&loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

func (r *Repository) ListLocations(ctx context.Context, filter LocationFilter) ([]Location, error) {
	base := `
		SELECT id, name, address, city, total_slots, available_slots,
		       latitude, longitude, COALESCE(photo_urls, '{}'), is_active,
		       created_at, updated_at
		FROM parking_locations
		WHERE is_active = true`

	args := []any{}
	idx := 1

	if filter.City != "" {
		base += fmt.Sprintf(" AND city ILIKE $%d", idx)
		args = append(args, "%"+filter.City+"%")
		idx++
	}
	if filter.AvailableOnly {
		base += " AND available_slots > 0"
	}
	base += " ORDER BY name"

	rows, err := r.q.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(
			&loc.ID,
			&loc.Name,
			&loc.Address,
			&loc.City,
			&loc.TotalSlots,
			&loc.AvailableSlots,
			&loc.Latitude,
			&loc.Longitude,
			&loc.PhotoURLs,
			&loc.IsActive,
			&loc.CreatedAt,
			&loc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *Repository) AddPhotoURL(ctx context.Context, locationID int64, url string) error {
	const query = `
		UPDATE parking_locations
		SET photo_urls = array_append(COALESCE(photo_urls, '{}'), $1), updated_at = now()
		WHERE id = $2
	`
	res, err := r.q.Exec(ctx, query, url, locationID)
	if err != nil {
		return fmt.Errorf("add photo url: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) RemovePhotoURL(ctx context.Context, locationID int64, url string) error {
	const query = `
		UPDATE parking_locations
		SET photo_urls = array_remove(photo_urls, $1), updated_at = now()
		WHERE id = $2
	`
	res, err := r.q.Exec(ctx, query, url, locationID)
	if err != nil {
		return fmt.Errorf("remove photo url: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const slotColumns = `id, location_id, slot_number, type, status, price_per_hour, created_at, updated_at`

func (r *Repository) GetSlot(ctx context.Context, slotID int64) (*Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	return r.scanSlot(r.q.QueryRow(ctx, query, slotID))
}

func (r *Repository) GetSlotForUpdate(ctx context.Context, slotID int64) (*Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`
	return r.scanSlot(r.q.QueryRow(ctx, query, slotID))
}

func (r *Repository) scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(
		&s.ID,
		&s.LocationID,
		&s.SlotNumber,
		&s.Type,
		&s.Status,
		&s.PricePerHour,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &s, nil
}

func (r *Repository) ListSlots(ctx context.Context, locationID int64, filter SlotFilter) ([]Slot, error) {
	base := `SELECT ` + slotColumns + ` FROM slots WHERE location_id = $1`

	args := []any{locationID}
	idx := 2

	if filter.Type != nil {
		base += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, *filter.Type)
		idx++
	}
	if filter.Status != nil {
		base += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filter.Status)
		idx++
	}
	base += " ORDER BY slot_number"

	rows, err := r.q.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(
			&s.ID,
			&s.LocationID,
			&s.SlotNumber,
			&s.Type,
			&s.Status,
			&s.PricePerHour,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) CreateSlot(ctx context.Context, slot *Slot) error {
	const query = `
		INSERT INTO slots (location_id, slot_number, type, status, price_per_hour)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		slot.LocationID,
		slot.SlotNumber,
		slot.Type,
		slot.Status,
		slot.PricePerHour,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "slots_location_id_slot_number_key" {
			return ErrDuplicateSlotNumber
		}
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (r *Repository) UpdateSlot(ctx context.Context, slot *Slot) error {
	const query = `
		UPDATE slots
		SET type = $1, status = $2, price_per_hour = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		slot.Type,
		slot.Status,
		slot.PricePerHour,
		slot.ID,
	).Scan(&slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSlotNotFound
		}
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSlot(ctx context.Context, slotID int64) error {
	res, err := r.q.Exec(ctx, `DELETE FROM slots WHERE id = $1`, slotID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *Repository) SetSlotStatus(ctx context.Context, slotID int64, status string) error {
	const query = `
		UPDATE slots SET status = $1, updated_at = now() WHERE id = $2
	`
	res, err := r.q.Exec(ctx, query, status, slotID)
	if err != nil {
		return fmt.Errorf("set slot status: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *Repository) AdjustCounters(ctx context.Context, locationID int64, totalDelta, availableDelta int) error {
	const query = `
		UPDATE parking_locations
		SET total_slots     = GREATEST(0, total_slots + $1),
		    available_slots = LEAST(GREATEST(0, total_slots + $1), GREATEST(0, available_slots + $2)),
		    updated_at      = now()
		WHERE id = $3
	`
	res, err := r.q.Exec(ctx, query, totalDelta, availableDelta, locationID)
	if err != nil {
		return fmt.Errorf("adjust slot counters: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
