package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	resp, err := h.Service.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to load notifications", http.StatusInternalServerError)
		return
	}
	if resp.Notifications == nil {
		resp.Notifications = []models.Notification{}
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to load unread count", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"unread_count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := paramInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid notification id", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, models.ErrNotificationNotFound) {
			http.Error(w, "Notification not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to mark notification read", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.MarkAllRead(r.Context(), userID); err != nil {
		http.Error(w, "Failed to mark notifications read", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
