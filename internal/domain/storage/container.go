package storage

import (
	"context"
	"fmt"

	"parkhere/internal/database"
	"parkhere/internal/domain/bookings"
	"parkhere/internal/domain/locations"
	"parkhere/internal/domain/paymentsrepo"
	"parkhere/internal/domain/pushtokens"
	"parkhere/internal/domain/users"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool  *pgxpool.Pool
	runTx func(ctx context.Context, fn func(s *BookingTx) error) error

	Users      users.Store
	Locations  locations.Store
	Bookings   bookings.Store
	Payments   paymentsrepo.Store
	PushTokens pushtokens.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	c := &Container{
		pool:       db,
		Users:      users.NewRepository(db),
		Locations:  locations.NewRepository(db),
		Bookings:   bookings.NewRepository(db),
		Payments:   paymentsrepo.NewRepository(db),
		PushTokens: pushtokens.NewRepository(db),
	}
	c.runTx = c.poolBookingTx
	return c
}

// NewContainerWithStores assembles a container over explicit store
// implementations. Units of work run in-process against those stores, so
// service logic can be exercised without a database. Not transactional.
func NewContainerWithStores(u users.Store, l locations.Store, b bookings.Store, p paymentsrepo.Store, pt pushtokens.Store) *Container {
	c := &Container{
		Users:      u,
		Locations:  l,
		Bookings:   b,
		Payments:   p,
		PushTokens: pt,
	}
	c.runTx = func(ctx context.Context, fn func(s *BookingTx) error) error {
		return fn(&BookingTx{Locations: l, Bookings: b, Payments: p})
	}
	return c
}

// BookingTx is a temporary, tx-scoped set of repos for atomic units of
// work: booking create/cancel/extend, slot admin edits, refund cascades.
// Every mutation that touches a slot row plus the location counters goes
// through here so the row lock and the counter update commit together.
type BookingTx struct {
	Locations locations.Store
	Bookings  bookings.Store
	Payments  paymentsrepo.Store
}

// WithBookingTx runs a booking unit-of-work atomically.
func (c *Container) WithBookingTx(ctx context.Context, fn func(s *BookingTx) error) error {
	return c.runTx(ctx, fn)
}

func (c *Container) poolBookingTx(ctx context.Context, fn func(s *BookingTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	return database.WithTx(c.pool, ctx, func(tx pgx.Tx) error {
		s := &BookingTx{
			Locations: locations.NewRepository(tx),
			Bookings:  bookings.NewRepository(tx),
			Payments:  paymentsrepo.NewRepository(tx),
		}
		return fn(s)
	})
}
