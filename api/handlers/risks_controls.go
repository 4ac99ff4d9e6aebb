package handlers

import (
	"net/http"
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

// Controls and mitigation actions hang off a risk; every route here re-checks
// that the parent risk exists and is editable by the caller.

func (h *RisksHandler) parentRisk(w http.ResponseWriter, r *http.Request) *store.Risk {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil
	}
	risk, err := h.risks.GetRisk(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil
	}
	if risk == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	return risk
}

func (h *RisksHandler) ListControls(w http.ResponseWriter, r *http.Request) {
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	controls, err := h.risks.ListControls(r.Context(), risk.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": controls})
}

func (h *RisksHandler) CreateControl(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var control store.RiskControl
	if !decodeJSON(w, r, &control) {
		return
	}
	if strings.TrimSpace(control.Title) == "" {
		fieldErrors{"title": "title is required"}.write(w)
		return
	}
	control.RiskID = risk.ID
	id, err := h.risks.CreateControl(r.Context(), &control)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	control.ID = id
	h.audits.Log(r.Context(), sess.Username, "risks.control_created", risk.RefNo)
	writeJSON(w, http.StatusCreated, control)
}

func (h *RisksHandler) UpdateControl(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	controlID, ok := urlParamInt64(r, "control_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var control store.RiskControl
	if !decodeJSON(w, r, &control) {
		return
	}
	control.ID = controlID
	control.RiskID = risk.ID
	if err := h.risks.UpdateControl(r.Context(), &control); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.control_updated", risk.RefNo)
	writeJSON(w, http.StatusOK, control)
}

func (h *RisksHandler) DeleteControl(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	controlID, ok := urlParamInt64(r, "control_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.risks.DeleteControl(r.Context(), controlID); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.control_deleted", risk.RefNo)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RisksHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	actions, err := h.risks.ListActions(r.Context(), risk.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": actions})
}

func (h *RisksHandler) CreateAction(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var action store.RiskAction
	if !decodeJSON(w, r, &action) {
		return
	}
	if strings.TrimSpace(action.Title) == "" {
		fieldErrors{"title": "title is required"}.write(w)
		return
	}
	action.RiskID = risk.ID
	if action.Status == "" {
		action.Status = "open"
	}
	id, err := h.risks.CreateAction(r.Context(), &action)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	action.ID = id
	h.audits.Log(r.Context(), sess.Username, "risks.action_created", risk.RefNo)
	writeJSON(w, http.StatusCreated, action)
}

func (h *RisksHandler) UpdateAction(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	actionID, ok := urlParamInt64(r, "action_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var action store.RiskAction
	if !decodeJSON(w, r, &action) {
		return
	}
	action.ID = actionID
	action.RiskID = risk.ID
	if err := h.risks.UpdateAction(r.Context(), &action); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.action_updated", risk.RefNo)
	writeJSON(w, http.StatusOK, action)
}

func (h *RisksHandler) DeleteAction(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	risk := h.parentRisk(w, r)
	if risk == nil {
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	actionID, ok := urlParamInt64(r, "action_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.risks.DeleteAction(r.Context(), actionID); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.action_deleted", risk.RefNo)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
