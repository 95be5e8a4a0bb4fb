package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"parkhere/internal/domain/paymentsrepo"
	"parkhere/internal/mailer"
	"parkhere/internal/notifications"
	"parkhere/internal/params"
	"parkhere/internal/service"

	"github.com/go-chi/chi/v5"
)

type InitiatePaymentPayload struct {
	BookingID int64   `json:"booking_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"payment_method" validate:"required,oneof=card wallet upi"`
}

// PaymentCheckout bundles the stored payment with the provider checkout data.
type PaymentCheckout struct {
	Payment    *paymentsrepo.Payment `json:"payment"`
	PaymentURL string                `json:"payment_url"`
	FormFields map[string]string     `json:"form_fields"`
}

// initiatePaymentHandler godoc
//
//	@Summary		Initiate a payment
//	@Description	Opens a payment attempt for a booking. The amount must equal the booking total.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		InitiatePaymentPayload	true	"Payment details"
//	@Success		201		{object}	PaymentCheckout
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		409		{object}	error	"Booking already paid"
//	@Failure		422		{object}	error	"Amount mismatch"
//	@Security		ApiKeyAuth
//	@Router			/payments/initiate [post]
func (app *application) initiatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload InitiatePaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, session, err := app.paymentSvc.Initiate(r.Context(), service.InitiatePaymentInput{
		UserID:    user.ID,
		BookingID: payload.BookingID,
		Amount:    payload.Amount,
		Method:    payload.Method,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	out := PaymentCheckout{
		Payment:    payment,
		PaymentURL: session.PaymentURL,
		FormFields: session.Data,
	}
	if err := app.jsonResponse(w, http.StatusCreated, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type VerifyPaymentPayload struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// verifyPaymentHandler godoc
//
//	@Summary		Verify a payment
//	@Description	Settles a pending payment after the gateway confirms it and emails a receipt.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		VerifyPaymentPayload	true	"Transaction to verify"
//	@Success		200		{object}	paymentsrepo.Payment
//	@Failure		404		{object}	error
//	@Failure		409		{object}	error	"Booking already paid"
//	@Failure		412		{object}	error	"Payment is not pending"
//	@Security		ApiKeyAuth
//	@Router			/payments/verify [post]
func (app *application) verifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload VerifyPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.paymentSvc.Verify(r.Context(), user.ID, payload.TransactionID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if payment.Status == paymentsrepo.StatusCompleted {
		vars := struct {
			Username      string
			TransactionID string
			BookingID     int64
			Amount        float64
			Method        string
		}{
			Username:      user.Name,
			TransactionID: payment.TransactionID,
			BookingID:     payment.BookingID,
			Amount:        payment.Amount,
			Method:        payment.Method,
		}
		if _, err := app.mailer.Send(mailer.PaymentReceiptTemplate, user.Name, user.Email, vars); err != nil {
			app.logger.Errorw("error sending receipt email", "payment_id", payment.ID, "error", err)
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}

// PaymentHistoryResponse is a page of payments plus pagination metadata.
type PaymentHistoryResponse struct {
	Payments   []paymentsrepo.Payment `json:"payments"`
	Pagination params.Pagination      `json:"pagination"`
}

// paymentHistoryHandler godoc
//
//	@Summary		Payment history
//	@Tags			payments
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page"
//	@Success		200		{object}	PaymentHistoryResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/payments/history [get]
func (app *application) paymentHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.paymentSvc.History(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}
	p.ComputeMeta(total)

	out := PaymentHistoryResponse{Payments: list, Pagination: p}
	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPaymentHandler godoc
//
//	@Summary		Get a payment
//	@Tags			payments
//	@Produce		json
//	@Param			paymentID	path		int	true	"Payment ID"
//	@Success		200			{object}	paymentsrepo.Payment
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/payments/{paymentID} [get]
func (app *application) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid payment ID"))
		return
	}

	payment, err := app.paymentSvc.Get(r.Context(), user.ID, user.IsAdmin(), paymentID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RequestRefundPayload struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// requestRefundHandler godoc
//
//	@Summary		Request a refund
//	@Description	Moves a completed payment into refund_requested for admin review.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			paymentID	path		int						true	"Payment ID"
//	@Param			payload		body		RequestRefundPayload	true	"Refund reason"
//	@Success		200			{object}	paymentsrepo.Payment
//	@Failure		403			{object}	error
//	@Failure		412			{object}	error	"Payment not refundable"
//	@Security		ApiKeyAuth
//	@Router			/payments/{paymentID}/refund [post]
func (app *application) requestRefundHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid payment ID"))
		return
	}

	var payload RequestRefundPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.paymentSvc.RequestRefund(r.Context(), user.ID, paymentID, payload.Reason)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}

// processRefundHandler godoc
//
//	@Summary		Process a refund
//	@Description	Admin approves a refund. The booking is force-cancelled in the same transaction.
//	@Tags			payments
//	@Produce		json
//	@Param			paymentID	path		int	true	"Payment ID"
//	@Success		200			{object}	paymentsrepo.Payment
//	@Failure		403			{object}	error
//	@Failure		412			{object}	error	"Payment not refundable"
//	@Security		ApiKeyAuth
//	@Router			/payments/{paymentID}/refund/process [post]
func (app *application) processRefundHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid payment ID"))
		return
	}

	payment, err := app.paymentSvc.ProcessRefund(r.Context(), paymentID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	go func() {
		if err := notifications.SendBookingNotification(context.Background(), app.push, app.store, payment.UserID, notifications.PaymentRefunded, payment.BookingID); err != nil {
			app.logger.Warnw("refund notification failed", "payment_id", payment.ID, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusOK, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}
