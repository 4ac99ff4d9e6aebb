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

type SuppliersHandler struct {
	suppliers store.SuppliersStore
	users     store.UsersStore
	policy    *rbac.Policy
	audits    store.AuditStore
	logger    *utils.Logger
}

func NewSuppliersHandler(suppliers store.SuppliersStore, users store.UsersStore, policy *rbac.Policy, audits store.AuditStore, logger *utils.Logger) *SuppliersHandler {
	return &SuppliersHandler{suppliers: suppliers, users: users, policy: policy, audits: audits, logger: logger}
}

func (h *SuppliersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.SupplierFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Department: strings.TrimSpace(q.Get("department")),
		Status:     strings.TrimSpace(q.Get("status")),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	suppliers, err := h.suppliers.ListSuppliers(r.Context(), filter)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": suppliers})
}

func (h *SuppliersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	sup, err := h.suppliers.GetSupplier(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if sup == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sup)
}

type supplierPayload struct {
	Name              string     `json:"name"`
	Department        string     `json:"department"`
	ResponsibleUserID *int64     `json:"responsible_user_id"`
	Status            string     `json:"status"`
	RAGStatus         string     `json:"rag_status"`
	ReviewDate        *time.Time `json:"review_date"`
	Version           int        `json:"version"`
}

func (p supplierPayload) validate() fieldErrors {
	fe := fieldErrors{}
	if strings.TrimSpace(p.Name) == "" {
		fe["name"] = "name is required"
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

func (p supplierPayload) apply(sup *store.Supplier) {
	sup.Name = strings.TrimSpace(p.Name)
	sup.Department = p.Department
	sup.ResponsibleUserID = p.ResponsibleUserID
	sup.Status = p.Status
	if sup.Status == "" {
		sup.Status = "active"
	}
	if p.RAGStatus != "" {
		rag, _ := riskscore.ParseRAG(p.RAGStatus)
		sup.RAGStatus = string(rag)
	} else {
		sup.RAGStatus = ""
	}
	sup.ReviewDate = p.ReviewDate
}

func (h *SuppliersHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	var payload supplierPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(); fe != nil {
		fe.write(w)
		return
	}
	if existing, err := h.suppliers.FindSupplier(r.Context(), payload.Name, payload.Department); err == nil && existing != nil {
		fieldErrors{"name": "supplier already exists in this department"}.write(w)
		return
	}
	sup := &store.Supplier{}
	payload.apply(sup)
	id, err := h.suppliers.CreateSupplier(r.Context(), sup)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	sup.ID = id
	h.audits.Log(r.Context(), sess.Username, "suppliers.created", sup.Name)
	writeJSON(w, http.StatusCreated, sup)
}

func (h *SuppliersHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	sup, err := h.suppliers.GetSupplier(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if sup == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	var payload supplierPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(); fe != nil {
		fe.write(w)
		return
	}
	payload.apply(sup)
	if err := h.suppliers.UpdateSupplier(r.Context(), sup, payload.Version); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "suppliers.updated", sup.Name)
	writeJSON(w, http.StatusOK, sup)
}

func (h *SuppliersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	sup, err := h.suppliers.GetSupplier(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if sup == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := h.suppliers.SoftDeleteSupplier(r.Context(), id); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "suppliers.deleted", sup.Name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SuppliersHandler) parentSupplier(w http.ResponseWriter, r *http.Request) *store.Supplier {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil
	}
	sup, err := h.suppliers.GetSupplier(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil
	}
	if sup == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	return sup
}

func (h *SuppliersHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	sup := h.parentSupplier(w, r)
	if sup == nil {
		return
	}
	contracts, err := h.suppliers.ListContracts(r.Context(), sup.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": contracts})
}

func (h *SuppliersHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	sup := h.parentSupplier(w, r)
	if sup == nil {
		return
	}
	var contract store.Contract
	if !decodeJSON(w, r, &contract) {
		return
	}
	if strings.TrimSpace(contract.Title) == "" {
		fieldErrors{"title": "title is required"}.write(w)
		return
	}
	contract.SupplierID = sup.ID
	if contract.Status == "" {
		contract.Status = "active"
	}
	id, err := h.suppliers.CreateContract(r.Context(), &contract)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	contract.ID = id
	h.audits.Log(r.Context(), sess.Username, "suppliers.contract_created", sup.Name)
	writeJSON(w, http.StatusCreated, contract)
}

func (h *SuppliersHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	sup := h.parentSupplier(w, r)
	if sup == nil {
		return
	}
	contractID, ok := urlParamInt64(r, "contract_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var contract store.Contract
	if !decodeJSON(w, r, &contract) {
		return
	}
	contract.ID = contractID
	contract.SupplierID = sup.ID
	if err := h.suppliers.UpdateContract(r.Context(), &contract); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "suppliers.contract_updated", sup.Name)
	writeJSON(w, http.StatusOK, contract)
}

func (h *SuppliersHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	sup := h.parentSupplier(w, r)
	if sup == nil {
		return
	}
	contractID, ok := urlParamInt64(r, "contract_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.suppliers.DeleteContract(r.Context(), contractID); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "suppliers.contract_deleted", sup.Name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SuppliersHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	contractID, ok := urlParamInt64(r, "contract_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	invoices, err := h.suppliers.ListInvoices(r.Context(), contractID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": invoices})
}

func (h *SuppliersHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	contractID, ok := urlParamInt64(r, "contract_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	contract, err := h.suppliers.GetContract(r.Context(), contractID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if contract == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	var invoice store.Invoice
	if !decodeJSON(w, r, &invoice) {
		return
	}
	if invoice.Amount < 0 {
		fieldErrors{"amount": "must not be negative"}.write(w)
		return
	}
	invoice.ContractID = contract.ID
	if invoice.Status == "" {
		invoice.Status = "pending"
	}
	id, err := h.suppliers.CreateInvoice(r.Context(), &invoice)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	invoice.ID = id
	h.audits.Log(r.Context(), sess.Username, "suppliers.invoice_created", invoice.RefNo)
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *SuppliersHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	invoiceID, ok := urlParamInt64(r, "invoice_id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var invoice store.Invoice
	if !decodeJSON(w, r, &invoice) {
		return
	}
	if invoice.Amount < 0 {
		fieldErrors{"amount": "must not be negative"}.write(w)
		return
	}
	invoice.ID = invoiceID
	if err := h.suppliers.UpdateInvoice(r.Context(), &invoice); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "suppliers.invoice_updated", invoice.RefNo)
	writeJSON(w, http.StatusOK, invoice)
}
