package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/riskscore"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

type DashboardHandler struct {
	cfg        *config.AppConfig
	risks      store.RisksStore
	workItems  store.WorkItemsStore
	governance store.WorkItemsStore
	suppliers  store.SuppliersStore
	logger     *utils.Logger
}

func NewDashboardHandler(cfg *config.AppConfig, risks store.RisksStore, workItems, governance store.WorkItemsStore, suppliers store.SuppliersStore, logger *utils.Logger) *DashboardHandler {
	return &DashboardHandler{cfg: cfg, risks: risks, workItems: workItems, governance: governance, suppliers: suppliers, logger: logger}
}

type itemSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByRAG    map[string]int `json:"by_rag"`
	DueSoon  int            `json:"due_soon"`
	Overdue  int            `json:"overdue"`
}

type riskSummary struct {
	Total         int            `json:"total"`
	ByTier        map[string]int `json:"by_tier"`
	ByResidualRAG map[string]int `json:"by_residual_rag"`
	ByAppetite    map[string]int `json:"by_appetite"`
	Unscored      int            `json:"unscored"`
}

// Summary aggregates the landing-page counters in one round trip.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	risks, err := h.risks.ListRisks(ctx, store.RiskFilter{Limit: 10000})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	categories, err := h.risks.ListCategories(ctx, 0)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	catIndex := make(map[int64]store.RiskCategory, len(categories))
	for _, c := range categories {
		catIndex[c.ID] = c
	}

	rs := riskSummary{
		Total:         len(risks),
		ByTier:        map[string]int{},
		ByResidualRAG: map[string]int{},
		ByAppetite:    map[string]int{},
	}
	for i := range risks {
		risk := &risks[i]
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
			if cat, ok := catIndex[*risk.CategoryID]; ok {
				threshold = cat.AppetiteThreshold
			}
		}
		derived := riskscore.Compute(in, threshold, h.cfg.Risk.AppetiteMargin)
		if derived.Tier == nil {
			rs.Unscored++
			continue
		}
		rs.ByTier[string(*derived.Tier)]++
		if derived.ResidualRAG != nil {
			rs.ByResidualRAG[string(*derived.ResidualRAG)]++
		}
		if threshold >= 0 && derived.AppetiteStatus != nil {
			rs.ByAppetite[string(*derived.AppetiteStatus)]++
		}
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, h.cfg.Reminders.DueSoonDays)

	work, err := h.itemSummary(ctx, h.workItems, now, cutoff)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	gov, err := h.itemSummary(ctx, h.governance, now, cutoff)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	suppliers, err := h.suppliers.ListSuppliers(ctx, store.SupplierFilter{Limit: 10000})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	supByRAG := map[string]int{}
	reviewDue := 0
	for _, sup := range suppliers {
		if sup.RAGStatus != "" {
			supByRAG[strings.ToLower(sup.RAGStatus)]++
		}
		if sup.ReviewDate != nil && sup.ReviewDate.Before(cutoff) {
			reviewDue++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"risks":            rs,
		"work_items":       work,
		"governance_items": gov,
		"suppliers": map[string]any{
			"total":      len(suppliers),
			"by_rag":     supByRAG,
			"review_due": reviewDue,
		},
		"generated_at": now,
	})
}

func (h *DashboardHandler) itemSummary(ctx context.Context, items store.WorkItemsStore, now, cutoff time.Time) (itemSummary, error) {
	list, err := items.List(ctx, store.WorkItemFilter{Limit: 10000})
	if err != nil {
		return itemSummary{}, err
	}
	out := itemSummary{
		Total:    len(list),
		ByStatus: map[string]int{},
		ByRAG:    map[string]int{},
	}
	for _, item := range list {
		status := strings.ToLower(item.Status)
		out.ByStatus[status]++
		if item.RAGStatus != "" {
			out.ByRAG[strings.ToLower(item.RAGStatus)]++
		}
		if item.Deadline == nil || isClosedStatus(status) {
			continue
		}
		if item.Deadline.Before(now) {
			out.Overdue++
		} else if item.Deadline.Before(cutoff) {
			out.DueSoon++
		}
	}
	return out, nil
}

func isClosedStatus(status string) bool {
	switch status {
	case "completed", "closed", "cancelled", "done":
		return true
	default:
		return false
	}
}
