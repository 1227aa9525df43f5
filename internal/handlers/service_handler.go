package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type ServiceHandler struct {
	Service *services.ServiceService
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := roleFromContext(r)
	if role != models.RoleProvider && role != models.RoleAdmin {
		http.Error(w, "Only providers can create services", http.StatusForbidden)
		return
	}

	var svc models.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if svc.Title == "" || svc.Category == "" {
		http.Error(w, "title and category are required", http.StatusBadRequest)
		return
	}
	svc.ProviderID = userID

	created, err := h.Service.CreateService(r.Context(), svc)
	if err != nil {
		http.Error(w, "Failed to create service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ServiceHandler) GetServiceByID(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid service id", http.StatusBadRequest)
		return
	}

	svc, err := h.Service.GetServiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrServiceNotFound) {
			http.Error(w, "Service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load service", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(svc)
}

func (h *ServiceHandler) ListByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := paramInt(r, "provider_id")
	if err != nil {
		http.Error(w, "Invalid provider id", http.StatusBadRequest)
		return
	}

	list, err := h.Service.ListByProvider(r.Context(), providerID)
	if err != nil {
		http.Error(w, "Failed to load services", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Service{}
	}
	json.NewEncoder(w).Encode(list)
}
