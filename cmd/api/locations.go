package main

import (
	"errors"
	"net/http"
	"strconv"

	"parkhere/internal/domain/locations"
	"parkhere/internal/service"

	"github.com/go-chi/chi/v5"
)

type CreateLocationPayload struct {
	Name      string  `json:"name" validate:"required,max=150"`
	Address   string  `json:"address" validate:"required,max=255"`
	City      string  `json:"city" validate:"required,max=100"`
	Latitude  float64 `json:"latitude" validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
}

// createLocationHandler godoc
//
//	@Summary		Create a parking location
//	@Tags			locations
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateLocationPayload	true	"Location details"
//	@Success		201		{object}	locations.Location
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/locations [post]
func (app *application) createLocationHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateLocationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	loc := &locations.Location{
		Name:      payload.Name,
		Address:   payload.Address,
		City:      payload.City,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}
	if err := app.store.Locations.CreateLocation(r.Context(), loc); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, loc); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listLocationsHandler godoc
//
//	@Summary		List parking locations
//	@Description	Lists active locations, optionally filtered by city or availability
//	@Tags			locations
//	@Produce		json
//	@Param			city		query		string	false	"City filter (partial match)"
//	@Param			available	query		bool	false	"Only locations with free slots"
//	@Success		200			{array}		locations.Location
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/locations [get]
func (app *application) listLocationsHandler(w http.ResponseWriter, r *http.Request) {
	filter := locations.LocationFilter{
		City: r.URL.Query().Get("city"),
	}
	if v := r.URL.Query().Get("available"); v != "" {
		avail, err := strconv.ParseBool(v)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("invalid available filter"))
			return
		}
		filter.AvailableOnly = avail
	}

	list, err := app.store.Locations.ListLocations(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// LocationWithSlots bundles a location and its slot registry for detail views.
type LocationWithSlots struct {
	*locations.Location
	Slots []locations.Slot `json:"slots"`
}

// getLocationHandler godoc
//
//	@Summary		Get a location with its slots
//	@Tags			locations
//	@Produce		json
//	@Param			locationID	path		int	true	"Location ID"
//	@Success		200			{object}	LocationWithSlots
//	@Failure		404			{object}	error
//	@Router			/locations/{locationID} [get]
func (app *application) getLocationHandler(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(chi.URLParam(r, "locationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid location ID"))
		return
	}

	loc, err := app.store.Locations.GetLocation(r.Context(), locationID)
	if err != nil {
		if errors.Is(err, locations.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	slots, err := app.store.Locations.ListSlots(r.Context(), locationID, locations.SlotFilter{})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, LocationWithSlots{Location: loc, Slots: slots}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listSlotsHandler godoc
//
//	@Summary		List slots of a location
//	@Tags			locations
//	@Produce		json
//	@Param			locationID	path		int		true	"Location ID"
//	@Param			type		query		string	false	"Slot type filter"
//	@Param			status		query		string	false	"Slot status filter"
//	@Success		200			{array}		locations.Slot
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Router			/locations/{locationID}/slots [get]
func (app *application) listSlotsHandler(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(chi.URLParam(r, "locationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid location ID"))
		return
	}

	var filter locations.SlotFilter
	if v := r.URL.Query().Get("type"); v != "" {
		filter.Type = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	slots, err := app.store.Locations.ListSlots(r.Context(), locationID, filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, slots); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AddSlotPayload struct {
	SlotNumber   string  `json:"slot_number" validate:"required,max=20"`
	Type         string  `json:"type" validate:"required,oneof=car bike handicap ev"`
	Status       string  `json:"status" validate:"omitempty,oneof=available maintenance"`
	PricePerHour float64 `json:"price_per_hour" validate:"gte=0"`
}

// addSlotHandler godoc
//
//	@Summary		Add a slot to a location
//	@Tags			locations
//	@Accept			json
//	@Produce		json
//	@Param			locationID	path		int				true	"Location ID"
//	@Param			payload		body		AddSlotPayload	true	"Slot details"
//	@Success		201			{object}	locations.Slot
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		409			{object}	error	"Duplicate slot number"
//	@Security		ApiKeyAuth
//	@Router			/locations/{locationID}/slots [post]
func (app *application) addSlotHandler(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(chi.URLParam(r, "locationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid location ID"))
		return
	}

	var payload AddSlotPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	slot, err := app.slotSvc.AddSlot(r.Context(), service.AddSlotInput{
		LocationID:   locationID,
		SlotNumber:   payload.SlotNumber,
		Type:         payload.Type,
		Status:       payload.Status,
		PricePerHour: payload.PricePerHour,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, slot); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateSlotPayload struct {
	Type         *string  `json:"type" validate:"omitempty,oneof=car bike handicap ev"`
	Status       *string  `json:"status" validate:"omitempty,oneof=available maintenance"`
	PricePerHour *float64 `json:"price_per_hour" validate:"omitempty,gte=0"`
}

// updateSlotHandler godoc
//
//	@Summary		Update a slot
//	@Description	Edits type, hourly rate or status; location counters follow the status
//	@Tags			locations
//	@Accept			json
//	@Produce		json
//	@Param			slotID	path		int					true	"Slot ID"
//	@Param			payload	body		UpdateSlotPayload	true	"Fields to update"
//	@Success		200		{object}	locations.Slot
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/slots/{slotID} [patch]
func (app *application) updateSlotHandler(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(chi.URLParam(r, "slotID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid slot ID"))
		return
	}

	var payload UpdateSlotPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	slot, err := app.slotSvc.UpdateSlot(r.Context(), service.UpdateSlotInput{
		SlotID:       slotID,
		Type:         payload.Type,
		Status:       payload.Status,
		PricePerHour: payload.PricePerHour,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, slot); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteSlotHandler godoc
//
//	@Summary		Delete a slot
//	@Description	Rejected while any upcoming or active booking references the slot
//	@Tags			locations
//	@Param			slotID	path	int	true	"Slot ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Failure		412	{object}	error	"Slot has live bookings"
//	@Security		ApiKeyAuth
//	@Router			/slots/{slotID} [delete]
func (app *application) deleteSlotHandler(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(chi.URLParam(r, "slotID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid slot ID"))
		return
	}

	if err := app.slotSvc.DeleteSlot(r.Context(), slotID); err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadLocationPhotoHandler godoc
//
//	@Summary		Upload location photos
//	@Description	Accepts multipart form images and stores them on Cloudinary
//	@Tags			locations
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			locationID	path		int		true	"Location ID"
//	@Param			images		formData	file	true	"Image files"
//	@Success		201			{object}	map[string][]string
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Security		ApiKeyAuth
//	@Router			/locations/{locationID}/photos [post]
func (app *application) uploadLocationPhotoHandler(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(chi.URLParam(r, "locationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid location ID"))
		return
	}

	if _, err := app.store.Locations.GetLocation(r.Context(), locationID); err != nil {
		if errors.Is(err, locations.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	// 10mb total
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		app.badRequestResponse(w, r, errors.New("no images provided"))
		return
	}

	urls, err := app.uploadImagesWithLocationID(files, locationID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	for _, u := range urls {
		if err := app.store.Locations.AddPhotoURL(r.Context(), locationID, u); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string][]string{"photo_urls": urls}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteLocationPhotoHandler godoc
//
//	@Summary		Delete a location photo
//	@Description	Removes the photo from Cloudinary and from the location record
//	@Tags			locations
//	@Param			locationID	path	int		true	"Location ID"
//	@Param			photo_url	query	string	true	"Photo URL to remove"
//	@Success		204
//	@Failure		400	{object}	ErrorBadRequestResponse
//	@Security		ApiKeyAuth
//	@Router			/locations/{locationID}/photos [delete]
func (app *application) deleteLocationPhotoHandler(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(chi.URLParam(r, "locationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid location ID"))
		return
	}

	photoURL := r.URL.Query().Get("photo_url")
	if photoURL == "" {
		app.badRequestResponse(w, r, errors.New("photo_url query parameter is required"))
		return
	}

	if err := app.deletePhotoFromCloudinary(photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Locations.RemovePhotoURL(r.Context(), locationID, photoURL); err != nil {
		if errors.Is(err, locations.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
