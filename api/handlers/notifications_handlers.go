package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dispatch-console/core/auth"
	"dispatch-console/core/realtime"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type NotificationsHandler struct {
	store  store.NotificationsStore
	hub    *realtime.Hub
	logger *utils.Logger
}

func NewNotificationsHandler(ns store.NotificationsStore, hub *realtime.Hub, logger *utils.Logger) *NotificationsHandler {
	return &NotificationsHandler{store: ns, hub: hub, logger: logger}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	items, err := h.store.ListNotifications(r.Context(), strconv.FormatInt(sess.UserID, 10), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Send persists a notification for one user and pushes it to their open
// consoles over the change feed.
func (h *NotificationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var n store.Notification
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(n.UserID) == "" || strings.TrimSpace(n.Subject) == "" {
		writeError(w, http.StatusBadRequest, "user_id and subject are required")
		return
	}
	n.Read = false
	if _, err := h.store.AddNotification(r.Context(), &n); err != nil {
		writeError(w, storeStatus(err), "send notification failed")
		return
	}
	if h.hub != nil {
		h.hub.SendTo(n.UserID, "notification", n)
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.MarkRead(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "mark read failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
