package main

import (
	"errors"
	"net/http"

	"parkhere/internal/service"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusNotFound, "not found")
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("conflict", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path)
	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// serviceErrorResponse translates the service error taxonomy to HTTP. A
// conflict answer includes the blocking booking and, for extensions, the
// hours that would still fit.
func (app *application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		type conflictEnvelope struct {
			Success            bool   `json:"success"`
			Message            string `json:"message"`
			Status             int    `json:"status"`
			BlockingBookingID  int64  `json:"blocking_booking_id,omitempty"`
			MaxAdditionalHours *int   `json:"max_additional_hours,omitempty"`
		}
		env := conflictEnvelope{
			Success:           false,
			Message:           conflict.Message,
			Status:            http.StatusConflict,
			BlockingBookingID: conflict.BlockingBookingID,
		}
		if conflict.MaxAdditionalHours >= 0 {
			env.MaxAdditionalHours = &conflict.MaxAdditionalHours
		}
		app.logger.Warnw("booking conflict", "method", r.Method, "path", r.URL.Path, "blocking", conflict.BlockingBookingID)
		writeJSON(w, http.StatusConflict, &env)
		return
	}

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		app.internalServerError(w, r, err)
		return
	}

	switch svcErr.Code {
	case service.CodeValidation:
		app.badRequestResponse(w, r, errors.New(svcErr.Message))
	case service.CodeNotFound:
		app.notFoundResponse(w, r, err)
	case service.CodeForbidden:
		app.forbiddenResponse(w, r)
	case service.CodeConflict, service.CodeDuplicate:
		app.conflictResponse(w, r, errors.New(svcErr.Message))
	case service.CodePreconditionFailed:
		app.logger.Warnw("precondition failed", "method", r.Method, "path", r.URL.Path, "error", svcErr.Message)
		writeJSONError(w, http.StatusPreconditionFailed, svcErr.Message)
	case service.CodeAmountMismatch:
		app.logger.Warnw("amount mismatch", "method", r.Method, "path", r.URL.Path, "error", svcErr.Message)
		writeJSONError(w, http.StatusUnprocessableEntity, svcErr.Message)
	default:
		app.internalServerError(w, r, err)
	}
}
