package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/riskscore"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

type RisksHandler struct {
	cfg    *config.AppConfig
	risks  store.RisksStore
	users  store.UsersStore
	policy *rbac.Policy
	audits store.AuditStore
	logger *utils.Logger
}

func NewRisksHandler(cfg *config.AppConfig, risks store.RisksStore, users store.UsersStore, policy *rbac.Policy, audits store.AuditStore, logger *utils.Logger) *RisksHandler {
	return &RisksHandler{cfg: cfg, risks: risks, users: users, policy: policy, audits: audits, logger: logger}
}

// riskView is a stored risk plus the derived scoring fields. Derived values
// are never persisted; they are recomputed on every read.
type riskView struct {
	store.Risk
	riskscore.Derived
}

func (h *RisksHandler) view(risk *store.Risk, categories map[int64]store.RiskCategory) riskView {
	in := riskscore.Inputs{
		FinancialImpact:     riskscore.ImpactLevel(risk.FinancialImpact),
		RegulatoryImpact:    riskscore.ImpactLevel(risk.RegulatoryImpact),
		ReputationalImpact:  riskscore.ImpactLevel(risk.ReputationalImpact),
		InherentProbability: riskscore.Probability(risk.InherentProbability),
		ResidualImpact:      riskscore.ImpactLevel(risk.ResidualImpact),
		ResidualProbability: riskscore.Probability(risk.ResidualProbability),
	}
	threshold := -1.0
	if risk.CategoryID != nil {
		if cat, ok := categories[*risk.CategoryID]; ok {
			threshold = cat.AppetiteThreshold
		}
	}
	derived := riskscore.Compute(in, threshold, h.cfg.Risk.AppetiteMargin)
	if threshold < 0 {
		// No category means no appetite to measure against.
		derived.AppetiteStatus = nil
	}
	return riskView{Risk: *risk, Derived: derived}
}

func (h *RisksHandler) categoryIndex(r *http.Request) map[int64]store.RiskCategory {
	cats, err := h.risks.ListCategories(r.Context(), 0)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("risk categories: %v", err)
		}
		return nil
	}
	out := make(map[int64]store.RiskCategory, len(cats))
	for _, c := range cats {
		out[c.ID] = c
	}
	return out
}

func (h *RisksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RiskFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Department: strings.TrimSpace(q.Get("department")),
		Status:     strings.TrimSpace(q.Get("status")),
		CategoryID: int64(queryInt(r, "category_id", 0)),
		ThemeID:    int64(queryInt(r, "theme_id", 0)),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	risks, err := h.risks.ListRisks(r.Context(), filter)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	categories := h.categoryIndex(r)
	items := make([]riskView, 0, len(risks))
	for i := range risks {
		items = append(items, h.view(&risks[i], categories))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *RisksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	risk, err := h.risks.GetRisk(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if risk == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.view(risk, h.categoryIndex(r)))
}

type riskPayload struct {
	RefNo               string     `json:"ref_no"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	CategoryID          *int64     `json:"category_id"`
	Department          string     `json:"department"`
	OwnerUserID         *int64     `json:"owner_user_id"`
	ResponsibleUserID   *int64     `json:"responsible_user_id"`
	FinancialImpact     int        `json:"financial_impact"`
	RegulatoryImpact    int        `json:"regulatory_impact"`
	ReputationalImpact  int        `json:"reputational_impact"`
	InherentProbability int        `json:"inherent_probability"`
	ResidualImpact      int        `json:"residual_impact"`
	ResidualProbability int        `json:"residual_probability"`
	Status              string     `json:"status"`
	ReviewDate          *time.Time `json:"review_date"`
	Version             int        `json:"version"`
}

func (p riskPayload) validate() fieldErrors {
	fe := fieldErrors{}
	if strings.TrimSpace(p.Title) == "" {
		fe["title"] = "title is required"
	}
	for field, v := range map[string]int{
		"financial_impact":     p.FinancialImpact,
		"regulatory_impact":    p.RegulatoryImpact,
		"reputational_impact":  p.ReputationalImpact,
		"residual_impact":      p.ResidualImpact,
		"inherent_probability": p.InherentProbability,
		"residual_probability": p.ResidualProbability,
	} {
		if v < 0 || v > 5 {
			fe[field] = "must be between 0 and 5"
		}
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (p riskPayload) apply(risk *store.Risk) {
	risk.Title = strings.TrimSpace(p.Title)
	risk.Description = p.Description
	risk.CategoryID = p.CategoryID
	risk.Department = p.Department
	risk.OwnerUserID = p.OwnerUserID
	risk.ResponsibleUserID = p.ResponsibleUserID
	risk.FinancialImpact = p.FinancialImpact
	risk.RegulatoryImpact = p.RegulatoryImpact
	risk.ReputationalImpact = p.ReputationalImpact
	risk.InherentProbability = p.InherentProbability
	risk.ResidualImpact = p.ResidualImpact
	risk.ResidualProbability = p.ResidualProbability
	risk.Status = p.Status
	risk.ReviewDate = p.ReviewDate
}

func (h *RisksHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	var payload riskPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(); fe != nil {
		fe.write(w)
		return
	}
	risk := &store.Risk{Status: "open"}
	payload.apply(risk)
	risk.RefNo = strings.TrimSpace(payload.RefNo)
	if risk.RefNo == "" {
		refNo, err := h.risks.NextRefNo(r.Context(), "RSK")
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		risk.RefNo = refNo
	}
	risk.CreatedBy = &sess.UserID
	risk.UpdatedBy = &sess.UserID
	if _, err := h.risks.CreateRisk(r.Context(), risk); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.created", risk.RefNo)
	writeJSON(w, http.StatusCreated, h.view(risk, h.categoryIndex(r)))
}

func (h *RisksHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	risk, err := h.risks.GetRisk(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if risk == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var payload riskPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(); fe != nil {
		fe.write(w)
		return
	}
	payload.apply(risk)
	risk.UpdatedBy = &sess.UserID
	if err := h.risks.UpdateRisk(r.Context(), risk, payload.Version); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.updated", risk.RefNo)
	writeJSON(w, http.StatusOK, h.view(risk, h.categoryIndex(r)))
}

func (h *RisksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	risk, err := h.risks.GetRisk(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if risk == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !h.canEdit(r, sess, risk) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := h.risks.SoftDeleteRisk(r.Context(), id, sess.UserID); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.deleted", risk.RefNo)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RisksHandler) canEdit(r *http.Request, sess *store.SessionRecord, risk *store.Risk) bool {
	user, _, err := h.users.FindByUsername(r.Context(), sess.Username)
	if err != nil || user == nil {
		return false
	}
	return rbac.CanEditRisk(h.policy, sess, user, risk)
}

// Heatmap aggregates residual scores into the 5x5 probability/impact grid.
func (h *RisksHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	risks, err := h.risks.ListRisks(r.Context(), store.RiskFilter{
		Department: strings.TrimSpace(r.URL.Query().Get("department")),
		Limit:      10000,
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	points := make([]riskscore.HeatmapPoint, 0, len(risks))
	for _, risk := range risks {
		in := riskscore.Inputs{
			FinancialImpact:     riskscore.ImpactLevel(risk.FinancialImpact),
			RegulatoryImpact:    riskscore.ImpactLevel(risk.RegulatoryImpact),
			ReputationalImpact:  riskscore.ImpactLevel(risk.ReputationalImpact),
			InherentProbability: riskscore.Probability(risk.InherentProbability),
			ResidualImpact:      riskscore.ImpactLevel(risk.ResidualImpact),
			ResidualProbability: riskscore.Probability(risk.ResidualProbability),
		}
		impact := riskscore.ImpactLevel(risk.ResidualImpact)
		if !impact.Valid() {
			impact = riskscore.CombinedImpact(in)
		}
		probability := riskscore.Probability(risk.ResidualProbability)
		if !probability.Valid() {
			probability = riskscore.Probability(risk.InherentProbability)
		}
		points = append(points, riskscore.HeatmapPoint{Impact: impact, Probability: probability})
	}
	writeJSON(w, http.StatusOK, riskscore.BuildHeatmap(points))
}

func (h *RisksHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.risks.ListThemes(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": themes})
}

func (h *RisksHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	var theme store.RiskTheme
	if !decodeJSON(w, r, &theme) {
		return
	}
	if strings.TrimSpace(theme.Name) == "" {
		fieldErrors{"name": "name is required"}.write(w)
		return
	}
	id, err := h.risks.CreateTheme(r.Context(), &theme)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	theme.ID = id
	h.audits.Log(r.Context(), sess.Username, "risks.theme_created", theme.Name)
	writeJSON(w, http.StatusCreated, theme)
}

func (h *RisksHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.risks.DeleteTheme(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.theme_deleted", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RisksHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	themeID := int64(queryInt(r, "theme_id", 0))
	cats, err := h.risks.ListCategories(r.Context(), themeID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cats})
}

func (h *RisksHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	var cat store.RiskCategory
	if !decodeJSON(w, r, &cat) {
		return
	}
	if fe := validateCategory(&cat); fe != nil {
		fe.write(w)
		return
	}
	id, err := h.risks.CreateCategory(r.Context(), &cat)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cat.ID = id
	h.audits.Log(r.Context(), sess.Username, "risks.category_created", cat.Name)
	writeJSON(w, http.StatusCreated, cat)
}

func (h *RisksHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var cat store.RiskCategory
	if !decodeJSON(w, r, &cat) {
		return
	}
	cat.ID = id
	if fe := validateCategory(&cat); fe != nil {
		fe.write(w)
		return
	}
	if err := h.risks.UpdateCategory(r.Context(), &cat); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.category_updated", cat.Name)
	writeJSON(w, http.StatusOK, cat)
}

func (h *RisksHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.risks.DeleteCategory(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), sess.Username, "risks.category_deleted", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func validateCategory(cat *store.RiskCategory) fieldErrors {
	fe := fieldErrors{}
	if strings.TrimSpace(cat.Name) == "" {
		fe["name"] = "name is required"
	}
	if cat.AppetiteThreshold < 0 || cat.AppetiteThreshold > 25 {
		fe["appetite_threshold"] = "must be between 0 and 25"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}
