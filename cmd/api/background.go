package main

import (
	"context"
	"time"
)

// reconcileBookingStatuses advances bookings whose windows have opened or
// closed, on the configured interval. The first pass runs immediately so a
// restart doesn't leave stale statuses until the next tick.
func (app *application) reconcileBookingStatuses() {
	go func() {
		ticker := time.NewTicker(app.config.reconcileInterval)
		defer ticker.Stop()

		app.bookingSvc.ReconcileStatuses(context.Background())

		for range ticker.C {
			app.bookingSvc.ReconcileStatuses(context.Background())
		}
	}()
}
