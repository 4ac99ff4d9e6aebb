package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

type riskResponse struct {
	ID                  int64   `json:"id"`
	RefNo               string  `json:"ref_no"`
	Title               string  `json:"title"`
	Version             int     `json:"version"`
	InherentScore       *int    `json:"inherent_risk_score"`
	ResidualScore       *int    `json:"residual_risk_score"`
	InherentRAG         *string `json:"inherent_rag"`
	ResidualRAG         *string `json:"residual_rag"`
	Tier                *string `json:"risk_tier"`
	AppetiteStatus      *string `json:"appetite_status"`
	FinancialImpact     int     `json:"financial_impact"`
	InherentProbability int     `json:"inherent_probability"`
}

func (e *testEnv) seedCategory(t *testing.T, theme, name string, threshold float64) int64 {
	t.Helper()
	ctx := context.Background()
	themeID, err := e.risks.CreateTheme(ctx, &store.RiskTheme{Name: theme})
	if err != nil {
		t.Fatalf("create theme: %v", err)
	}
	catID, err := e.risks.CreateCategory(ctx, &store.RiskCategory{
		ThemeID:           themeID,
		Name:              name,
		AppetiteThreshold: threshold,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return catID
}

func TestCreateRiskDerivesScores(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "riskmgr", "manager")
	sess := env.startSession(t, u, "manager")
	catID := env.seedCategory(t, "Operational", "Third Party", 12)

	resp := env.do(t, http.MethodPost, "/api/risks/", map[string]any{
		"title":                "Vendor concentration",
		"category_id":          catID,
		"financial_impact":     4,
		"regulatory_impact":    2,
		"reputational_impact":  3,
		"inherent_probability": 5,
	}, sess)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var risk riskResponse
	decodeBody(t, resp, &risk)

	if risk.RefNo == "" {
		t.Fatalf("expected generated ref_no")
	}
	// Combined inherent impact is the worst dimension: 4 x 5 = 20.
	if risk.InherentScore == nil || *risk.InherentScore != 20 {
		t.Fatalf("inherent score = %v, want 20", risk.InherentScore)
	}
	if risk.InherentRAG == nil || *risk.InherentRAG != "red" {
		t.Fatalf("inherent rag = %v, want red", risk.InherentRAG)
	}
	if risk.Tier == nil || *risk.Tier != "A" {
		t.Fatalf("tier = %v, want A", risk.Tier)
	}
	// No residual components: the residual view falls back to inherent.
	if risk.ResidualScore == nil || *risk.ResidualScore != 20 {
		t.Fatalf("residual score = %v, want 20", risk.ResidualScore)
	}
	// 20 is beyond threshold 12 + margin 2.
	if risk.AppetiteStatus == nil || *risk.AppetiteStatus != "exceeded" {
		t.Fatalf("appetite = %v, want exceeded", risk.AppetiteStatus)
	}
}

func TestRiskWithoutCategoryHasNoAppetite(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "riskmgr2", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/risks/", map[string]any{
		"title":                "Uncategorised exposure",
		"financial_impact":     2,
		"inherent_probability": 2,
	}, sess)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var risk riskResponse
	decodeBody(t, resp, &risk)
	if risk.InherentScore == nil || *risk.InherentScore != 4 {
		t.Fatalf("inherent score = %v, want 4", risk.InherentScore)
	}
	if risk.AppetiteStatus != nil {
		t.Fatalf("appetite should be null without a category, got %v", *risk.AppetiteStatus)
	}
}

func TestRiskComponentValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "riskmgr3", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/risks/", map[string]any{
		"title":            "Bad components",
		"financial_impact": 9,
	}, sess)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestRiskUpdateVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "riskmgr4", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/risks/", map[string]any{
		"title":                "Conflicted",
		"financial_impact":     3,
		"inherent_probability": 3,
	}, sess)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var created riskResponse
	decodeBody(t, resp, &created)

	path := "/api/risks/" + itoa(created.ID)
	first := env.do(t, http.MethodPut, path, map[string]any{
		"title":                "Conflicted v2",
		"financial_impact":     3,
		"inherent_probability": 3,
		"version":              created.Version,
	}, sess)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first update status %d", first.StatusCode)
	}

	// Replaying the original version must be rejected.
	stale := env.do(t, http.MethodPut, path, map[string]any{
		"title":                "Conflicted v3",
		"financial_impact":     3,
		"inherent_probability": 3,
		"version":              created.Version,
	}, sess)
	if stale.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on stale version, got %d", stale.StatusCode)
	}
}

func TestRiskSoftDeleteHidesFromList(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "riskmgr5", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/risks/", map[string]any{
		"title":                "To remove",
		"financial_impact":     1,
		"inherent_probability": 1,
	}, sess)
	var created riskResponse
	decodeBody(t, resp, &created)

	del := env.do(t, http.MethodDelete, "/api/risks/"+itoa(created.ID), nil, sess)
	if del.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", del.StatusCode)
	}

	list := env.do(t, http.MethodGet, "/api/risks/", nil, sess)
	var listBody struct {
		Items []riskResponse `json:"items"`
	}
	decodeBody(t, list, &listBody)
	for _, item := range listBody.Items {
		if item.ID == created.ID {
			t.Fatalf("deleted risk still listed")
		}
	}
}
