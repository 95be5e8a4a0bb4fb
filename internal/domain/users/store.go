package users

import (
	"context"
	"errors"
	"fmt"

	"parkhere/internal/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID int64, hash []byte) error
	SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
	GetRefreshToken(ctx context.Context, userID int64) (string, error)
	DeleteRefreshToken(ctx context.Context, userID int64) error
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.Password.Hash(),
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return ErrDuplicateEmail
			case "users_phone_key":
				return ErrDuplicatePhoneNumber
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	const query = `
		SELECT id, name, email, phone, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.q.QueryRow(ctx, query, userID))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, name, email, phone, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.q.QueryRow(ctx, query, email))
}

func (r *Repository) scanUser(row pgx.Row) (*User, error) {
	var user User
	var hash []byte
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&hash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Password.SetHash(hash)
	return &user, nil
}

func (r *Repository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET name = $1, email = $2, phone = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return ErrDuplicateEmail
			case "users_phone_key":
				return ErrDuplicatePhoneNumber
			}
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, hash []byte) error {
	const query = `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`
	res, err := r.q.Exec(ctx, query, hash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	const query = `
		UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2
	`
	_, err := r.q.Exec(ctx, query, refreshToken, userID)
	return err
}

func (r *Repository) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	const query = `SELECT COALESCE(refresh_token, '') FROM users WHERE id = $1`
	var token string
	if err := r.q.QueryRow(ctx, query, userID).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, userID int64) error {
	const query = `
		UPDATE users SET refresh_token = NULL, updated_at = now() WHERE id = $1
	`
	_, err := r.q.Exec(ctx, query, userID)
	return err
}
