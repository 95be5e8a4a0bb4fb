package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"parkhere/internal/domain/bookings"
	"parkhere/internal/domain/locations"
	"parkhere/internal/domain/paymentsrepo"
	"parkhere/internal/notifications"
	"parkhere/internal/service"

	"github.com/go-chi/chi/v5"
)

type CreateBookingPayload struct {
	SlotID        int64     `json:"slot_id" validate:"required,gt=0"`
	VehicleNumber string    `json:"vehicle_number" validate:"required,vehicleplate"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
}

// createBookingHandler godoc
//
//	@Summary		Create a booking
//	@Description	Reserves a slot for the given window. Fails with 409 when the window collides with another booking.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateBookingPayload	true	"Booking details"
//	@Success		201		{object}	bookings.Booking
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error
//	@Failure		409		{object}	error	"Window conflict or slot unavailable"
//	@Security		ApiKeyAuth
//	@Router			/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingSvc.Create(r.Context(), service.CreateBookingInput{
		UserID:        user.ID,
		SlotID:        payload.SlotID,
		VehicleNumber: payload.VehicleNumber,
		StartTime:     payload.StartTime,
		EndTime:       payload.EndTime,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	go func() {
		if err := notifications.SendBookingNotification(context.Background(), app.push, app.store, user.ID, notifications.BookingConfirmed, booking.ID); err != nil {
			app.logger.Warnw("booking notification failed", "booking_id", booking.ID, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusCreated, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listBookingsHandler godoc
//
//	@Summary		List own bookings
//	@Tags			bookings
//	@Produce		json
//	@Param			status		query		string	false	"Status filter (upcoming|active|completed|cancelled)"
//	@Param			upcoming	query		bool	false	"Only live bookings"
//	@Success		200			{array}		bookings.Booking
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/bookings [get]
func (app *application) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	filter := bookings.Filter{
		Status: r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("upcoming"); v != "" {
		upcoming, err := strconv.ParseBool(v)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("invalid upcoming filter"))
			return
		}
		filter.Upcoming = upcoming
	}

	list, err := app.bookingSvc.List(r.Context(), user.ID, filter)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// BookingDetail is the single-booking view: the booking plus where it
// parks and how it was paid.
type BookingDetail struct {
	*bookings.Booking
	Slot     *locations.Slot       `json:"slot,omitempty"`
	Location *locations.Location   `json:"location,omitempty"`
	Payment  *paymentsrepo.Payment `json:"payment,omitempty"`
}

// getBookingHandler godoc
//
//	@Summary		Get a booking
//	@Description	Returns the booking with its slot, location and settled payment, if any
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	BookingDetail
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	booking, err := app.bookingSvc.Get(r.Context(), user.ID, user.IsAdmin(), bookingID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	detail := BookingDetail{Booking: booking}
	if slot, err := app.store.Locations.GetSlot(r.Context(), booking.SlotID); err == nil {
		detail.Slot = slot
		if loc, err := app.store.Locations.GetLocation(r.Context(), slot.LocationID); err == nil {
			detail.Location = loc
		}
	}
	if payment, err := app.store.Payments.GetCompletedByBooking(r.Context(), booking.ID); err == nil {
		detail.Payment = payment
	}

	if err := app.jsonResponse(w, http.StatusOK, detail); err != nil {
		app.internalServerError(w, r, err)
	}
}

// cancelBookingHandler godoc
//
//	@Summary		Cancel a booking
//	@Description	Cancels an upcoming or active booking. An upcoming cancel frees the slot.
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	bookings.Booking
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		412			{object}	error	"Booking already terminal"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/cancel [post]
func (app *application) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	booking, err := app.bookingSvc.Cancel(r.Context(), user.ID, user.IsAdmin(), bookingID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	go func() {
		if err := notifications.SendBookingNotification(context.Background(), app.push, app.store, booking.UserID, notifications.BookingCancelled, booking.ID); err != nil {
			app.logger.Warnw("booking notification failed", "booking_id", booking.ID, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusOK, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ExtendBookingPayload struct {
	AdditionalHours int `json:"additional_hours" validate:"required,gte=1"`
}

// extendBookingHandler godoc
//
//	@Summary		Extend an active booking
//	@Description	Pushes out the end time by whole hours. A 409 response includes how many hours would still fit before the next booking.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int						true	"Booking ID"
//	@Param			payload		body		ExtendBookingPayload	true	"Hours to add"
//	@Success		200			{object}	bookings.Booking
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		409			{object}	error	"Extension collides with the next booking"
//	@Failure		412			{object}	error	"Booking is not active"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/extend [post]
func (app *application) extendBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	var payload ExtendBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingSvc.Extend(r.Context(), user.ID, user.IsAdmin(), bookingID, payload.AdditionalHours)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	go func() {
		if err := notifications.SendBookingNotification(context.Background(), app.push, app.store, booking.UserID, notifications.BookingExtended, booking.ID); err != nil {
			app.logger.Warnw("booking notification failed", "booking_id", booking.ID, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusOK, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}
