package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"khidmaBack/internal/lifecycle"
	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type BookingHandler struct {
	Service *services.BookingService
}

func (h *BookingHandler) CreateOnsiteBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.CreateOnsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ServiceID == 0 || req.Location == "" || req.Governorate == "" {
		http.Error(w, "service_id, location and governorate are required", http.StatusBadRequest)
		return
	}

	booking, err := h.Service.CreateOnsite(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrServiceNotFound):
			http.Error(w, "Service not found", http.StatusNotFound)
		case errors.Is(err, models.ErrActorNotAllowed):
			http.Error(w, "Cannot book your own service", http.StatusForbidden)
		default:
			http.Error(w, "Failed to create booking", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(booking)
}

func (h *BookingHandler) CreateOnlineBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.CreateOnlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ServiceID == 0 || req.ProjectTitle == "" || req.ProjectDescription == "" {
		http.Error(w, "service_id, project_title and project_description are required", http.StatusBadRequest)
		return
	}

	booking, err := h.Service.CreateOnline(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrServiceNotFound):
			http.Error(w, "Service not found", http.StatusNotFound)
		case errors.Is(err, models.ErrActorNotAllowed):
			http.Error(w, "Cannot book your own service", http.StatusForbidden)
		default:
			http.Error(w, "Failed to create booking", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(booking)
}

// ListBookings serves GET /bookings?role=client|provider&status=&variant=.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := models.BookingListFilter{
		UserID:      userID,
		Role:        r.URL.Query().Get("role"),
		Status:      r.URL.Query().Get("status"),
		BookingType: r.URL.Query().Get("variant"),
	}
	if filter.Role == "" {
		filter.Role = models.RoleClient
	}
	if filter.BookingType != "" &&
		filter.BookingType != models.BookingTypeOnsite &&
		filter.BookingType != models.BookingTypeOnline {
		http.Error(w, "Unknown booking variant", http.StatusBadRequest)
		return
	}

	items, err := h.Service.ListBookings(r.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownListRole):
			http.Error(w, "role must be client or provider", http.StatusBadRequest)
		case errors.Is(err, models.ErrInvalidTransition):
			http.Error(w, "Unknown status filter", http.StatusBadRequest)
		default:
			http.Error(w, "Failed to load bookings", http.StatusInternalServerError)
		}
		return
	}
	if items == nil {
		items = []models.BookingListItem{}
	}
	json.NewEncoder(w).Encode(items)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := paramInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var payload any
	switch r.URL.Query().Get(":variant") {
	case models.BookingTypeOnsite:
		payload, err = h.Service.GetOnsite(r.Context(), userID, id)
	case models.BookingTypeOnline:
		payload, err = h.Service.GetOnline(r.Context(), userID, id)
	default:
		http.Error(w, "Unknown booking variant", http.StatusBadRequest)
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBookingNotFound):
			http.Error(w, "Booking not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotBookingParty):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			http.Error(w, "Failed to load booking", http.StatusInternalServerError)
		}
		return
	}
	json.NewEncoder(w).Encode(payload)
}

// UpdateBookingStatus serves PUT /bookings/:variant/:id/status.
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := paramInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}
	variant := r.URL.Query().Get(":variant")

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if !lifecycle.ValidStatus(req.Status) {
		http.Error(w, "Unknown status", http.StatusBadRequest)
		return
	}

	err = h.Service.Transition(r.Context(), userID, variant, id, req.Status, req.ProviderNotes)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBookingNotFound):
			http.Error(w, "Booking not found", http.StatusNotFound)
		case errors.Is(err, models.ErrUnknownBookingType):
			http.Error(w, "Unknown booking variant", http.StatusBadRequest)
		case errors.Is(err, models.ErrNotBookingParty), errors.Is(err, models.ErrActorNotAllowed):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, models.ErrBookingAlreadyDecided):
			http.Error(w, "Booking already decided", http.StatusConflict)
		case errors.Is(err, models.ErrInvalidTransition):
			http.Error(w, "Invalid status transition", http.StatusBadRequest)
		default:
			http.Error(w, "Failed to update booking", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
