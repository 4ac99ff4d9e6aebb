package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

type NotificationsHandler struct {
	notifications store.NotificationsStore
}

func NewNotificationsHandler(notifications store.NotificationsStore) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := queryInt(r, "limit", 50)
	items, err := h.notifications.ListForUser(r.Context(), sess.UserID, unreadOnly, limit)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), id, sess.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
