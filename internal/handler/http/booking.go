package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/booking"
	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/middleware"
	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/response"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

type BookingHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListByResource(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type bookingHandlerImpl struct {
	bookingService booking.BookingService
}

func NewBookingHandler(bookingService booking.BookingService) BookingHandler {
	return &bookingHandlerImpl{bookingService: bookingService}
}

func (h *bookingHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	orgID, userID := middleware.Identity(r)
	result, err := h.bookingService.Create(r.Context(), orgID, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Booking created", result)
}

func (h *bookingHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Booking ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.bookingService.Get(r.Context(), orgID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *bookingHandlerImpl) ListByResource(w http.ResponseWriter, r *http.Request) {
	resourceType := r.URL.Query().Get("resource_type")
	resourceID := r.URL.Query().Get("resource_id")
	if resourceType == "" || resourceID == "" {
		response.BadRequest(w, "Query parameters 'resource_type' and 'resource_id' are required", nil)
		return
	}

	from, fromOK := validator.IsValidDateTime(r.URL.Query().Get("from"))
	to, toOK := validator.IsValidDateTime(r.URL.Query().Get("to"))
	if !fromOK || !toOK {
		response.BadRequest(w, "Query parameters 'from' and 'to' must be RFC3339 timestamps", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	result, err := h.bookingService.ListByResource(r.Context(), orgID, resourceType, resourceID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *bookingHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Booking ID must be a valid UUID", nil)
		return
	}

	orgID, _ := middleware.Identity(r)
	if err := h.bookingService.Cancel(r.Context(), orgID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Booking cancelled", nil)
}
