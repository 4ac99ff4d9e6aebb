package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

const (
	SessionCookieName = "bow_session"
	CSRFCookieName    = "bow_csrf"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fieldErrors is the 422 payload shape: per-field validation messages.
type fieldErrors map[string]string

func (fe fieldErrors) write(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fe})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	return true
}

// writeStoreError maps store failures onto the API contract: version
// conflicts are 409, everything else a plain 500.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrConflict) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "version conflict"})
		return
	}
	http.Error(w, "server error", http.StatusInternalServerError)
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := strings.ToLower(strings.TrimSpace(strings.SplitN(r.Header.Get("X-Forwarded-Proto"), ",", 2)[0]))
	return proto == "https"
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}
