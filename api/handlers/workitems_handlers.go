package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/riskscore"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

// WorkItemsHandler serves both plain work items and governance items; the
// only difference is the backing store and the governance_type field.
type WorkItemsHandler struct {
	items      store.WorkItemsStore
	users      store.UsersStore
	policy     *rbac.Policy
	audits     store.AuditStore
	logger     *utils.Logger
	governance bool
}

func NewWorkItemsHandler(items store.WorkItemsStore, users store.UsersStore, policy *rbac.Policy, audits store.AuditStore, logger *utils.Logger, governance bool) *WorkItemsHandler {
	return &WorkItemsHandler{items: items, users: users, policy: policy, audits: audits, logger: logger, governance: governance}
}

func (h *WorkItemsHandler) kind() string {
	if h.governance {
		return "governance"
	}
	return "workitems"
}

func (h *WorkItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.WorkItemFilter{
		Search:            strings.TrimSpace(q.Get("search")),
		Department:        strings.TrimSpace(q.Get("department")),
		Status:            strings.TrimSpace(q.Get("status")),
		RAGStatus:         strings.TrimSpace(q.Get("rag_status")),
		ResponsibleUserID: int64(queryInt(r, "responsible_user_id", 0)),
		Limit:             queryInt(r, "limit", 100),
		Offset:            queryInt(r, "offset", 0),
	}
	if due := strings.TrimSpace(q.Get("due_before")); due != "" {
		if t, err := time.Parse("2006-01-02", due); err == nil {
			t = t.UTC()
			filter.DueBefore = &t
		}
	}
	items, err := h.items.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *WorkItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type workItemPayload struct {
	RefNo             string     `json:"ref_no"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	GovernanceType    string     `json:"governance_type"`
	Department        string     `json:"department"`
	ResponsibleUserID *int64     `json:"responsible_user_id"`
	Status            string     `json:"status"`
	RAGStatus         string     `json:"rag_status"`
	Deadline          *time.Time `json:"deadline"`
	Version           int        `json:"version"`
}

func (p workItemPayload) validate() fieldErrors {
	fe := fieldErrors{}
	if strings.TrimSpace(p.Title) == "" {
		fe["title"] = "title is required"
	}
	if p.RAGStatus != "" {
		if _, ok := riskscore.ParseRAG(p.RAGStatus); !ok {
			fe["rag_status"] = "must be one of red, amber, green, blue"
		}
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (p workItemPayload) apply(item *store.WorkItem, governance bool) {
	item.Title = strings.TrimSpace(p.Title)
	item.Description = p.Description
	item.Department = p.Department
	item.ResponsibleUserID = p.ResponsibleUserID
	item.Status = p.Status
	if item.Status == "" {
		item.Status = "open"
	}
	if p.RAGStatus != "" {
		rag, _ := riskscore.ParseRAG(p.RAGStatus)
		item.RAGStatus = string(rag)
	} else {
		item.RAGStatus = ""
	}
	item.Deadline = p.Deadline
	if governance {
		item.GovernanceType = p.GovernanceType
	}
}

func (h *WorkItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	var payload workItemPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(); fe != nil {
		fe.write(w)
		return
	}
	if strings.TrimSpace(payload.RefNo) == "" {
		fieldErrors{"ref_no": "reference number is required"}.write(w)
		return
	}
	item := &store.WorkItem{RefNo: strings.TrimSpace(payload.RefNo)}
	payload.apply(item, h.governance)
	item.CreatedBy = &sess.UserID
	item.UpdatedBy = &sess.UserID
	id, err := h.items.Create(r.Context(), item)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	item.ID = id
	h.audits.Log(r.Context(), sess.Username, h.kind()+".created", item.RefNo)
	writeJSON(w, http.StatusCreated, item)
}

func (h *WorkItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !h.canEdit(r, sess, item) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var payload workItemPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(); fe != nil {
		fe.write(w)
		return
	}
	payload.apply(item, h.governance)
	item.UpdatedBy = &sess.UserID
	if err := h.items.Update(r.Context(), item, payload.Version); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, h.kind()+".updated", item.RefNo)
	writeJSON(w, http.StatusOK, item)
}

func (h *WorkItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !h.canEdit(r, sess, item) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := h.items.SoftDelete(r.Context(), id, sess.UserID); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), sess.Username, h.kind()+".deleted", item.RefNo)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WorkItemsHandler) canEdit(r *http.Request, sess *store.SessionRecord, item *store.WorkItem) bool {
	user, _, err := h.users.FindByUsername(r.Context(), sess.Username)
	if err != nil || user == nil {
		return false
	}
	return rbac.CanEditWorkItem(h.policy, sess, user, item)
}
