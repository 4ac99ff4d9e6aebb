package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

type LogsHandler struct {
	audits store.AuditStore
}

func NewLogsHandler(audits store.AuditStore) *LogsHandler {
	return &LogsHandler{audits: audits}
}

func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audits.List(r.Context(), r.URL.Query().Get("action"),
		queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (h *LogsHandler) Export(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audits.List(r.Context(), r.URL.Query().Get("action"),
		queryInt(r, "limit", 500), queryInt(r, "offset", 0))
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	name := fmt.Sprintf("event_feed_%d.csv", time.Now().UTC().Unix())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "timestamp", "username", "action", "details"})
	for _, e := range entries {
		_ = cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.Username,
			e.Action,
			e.Details,
		})
	}
	cw.Flush()
}
