package api

import (
	"net/http"

	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository"
)

type NotificationsHandler struct {
	notificationRepo repository.NotificationRepo
}

func NewNotificationsHandler(nr repository.NotificationRepo) *NotificationsHandler {
	return &NotificationsHandler{notificationRepo: nr}
}

// ListNotifications returns the caller's notifications, newest first.
// ?unread=true filters to unread ones.
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.notificationRepo.ListNotifications(r.Context(), callerID, unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, notifications, http.StatusOK)
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, done := pathID(w, r, "id")
	if done {
		return
	}

	if err := h.notificationRepo.MarkNotificationRead(r.Context(), id, callerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.notificationRepo.MarkAllNotificationsRead(r.Context(), callerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
