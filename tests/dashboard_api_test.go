package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

func TestDashboardSummaryCounts(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "dash1", "manager")
	sess := env.startSession(t, u, "manager")
	catID := env.seedCategory(t, "Operational", "Resilience", 10)

	ctx := context.Background()
	if _, err := env.risks.CreateRisk(ctx, &store.Risk{
		RefNo: "RSK-1", Title: "Scored", CategoryID: &catID,
		FinancialImpact: 4, InherentProbability: 4, Version: 1,
	}); err != nil {
		t.Fatalf("create risk: %v", err)
	}
	if _, err := env.risks.CreateRisk(ctx, &store.Risk{
		RefNo: "RSK-2", Title: "Unscored", Version: 1,
	}); err != nil {
		t.Fatalf("create risk: %v", err)
	}
	if _, err := env.workItems.Create(ctx, &store.WorkItem{
		RefNo: "BOW-1", Title: "Open item", Status: "open", RAGStatus: "green", Version: 1,
	}); err != nil {
		t.Fatalf("create work item: %v", err)
	}

	resp := env.do(t, http.MethodGet, "/api/dashboard/summary", nil, sess)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status %d", resp.StatusCode)
	}
	var body struct {
		Risks struct {
			Total    int            `json:"total"`
			ByTier   map[string]int `json:"by_tier"`
			Unscored int            `json:"unscored"`
		} `json:"risks"`
		WorkItems struct {
			Total    int            `json:"total"`
			ByStatus map[string]int `json:"by_status"`
		} `json:"work_items"`
	}
	decodeBody(t, resp, &body)
	if body.Risks.Total != 2 {
		t.Fatalf("risk total %d, want 2", body.Risks.Total)
	}
	// 4 x 4 = 16 lands in tier A.
	if body.Risks.ByTier["A"] != 1 {
		t.Fatalf("tier A count %d, want 1", body.Risks.ByTier["A"])
	}
	if body.Risks.Unscored != 1 {
		t.Fatalf("unscored %d, want 1", body.Risks.Unscored)
	}
	if body.WorkItems.ByStatus["open"] != 1 {
		t.Fatalf("open work items %d, want 1", body.WorkItems.ByStatus["open"])
	}
}

func TestNotificationsScopedToUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "notify1", "manager")
	u2 := env.createUser(t, "notify2", "manager")
	sess := env.startSession(t, u1, "manager")

	ctx := context.Background()
	n1 := &store.Notification{UserID: u1.ID, Kind: "system", Title: "Mine"}
	if _, err := env.notifications.Create(ctx, n1); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if _, err := env.notifications.Create(ctx, &store.Notification{UserID: u2.ID, Kind: "system", Title: "Theirs"}); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	resp := env.do(t, http.MethodGet, "/api/notifications/", nil, sess)
	var body struct {
		Items []store.Notification `json:"items"`
	}
	decodeBody(t, resp, &body)
	if len(body.Items) != 1 || body.Items[0].Title != "Mine" {
		t.Fatalf("expected only own notifications, got %+v", body.Items)
	}

	read := env.do(t, http.MethodPost, "/api/notifications/"+itoa(n1.ID)+"/read", nil, sess)
	if read.StatusCode != http.StatusOK {
		t.Fatalf("mark read status %d", read.StatusCode)
	}

	// Reading someone else's notification is a 404, not a cross-user write.
	again := env.do(t, http.MethodPost, "/api/notifications/"+itoa(n1.ID)+"/read", nil, sess)
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("second mark read status %d, want 404", again.StatusCode)
	}
}

func TestAuditLogListAndExport(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "auditor", "admin")
	sess := env.startSession(t, admin, "admin")

	env.audits.Log(context.Background(), "auditor", "risks.created", "RSK-9")
	env.audits.Log(context.Background(), "auditor", "auth.login_success", "")

	resp := env.do(t, http.MethodGet, "/api/logs/?action=risks.", nil, sess)
	var body struct {
		Items []store.AuditEntry `json:"items"`
	}
	decodeBody(t, resp, &body)
	if len(body.Items) != 1 || body.Items[0].Action != "risks.created" {
		t.Fatalf("filtered log wrong: %+v", body.Items)
	}

	export := env.do(t, http.MethodGet, "/api/logs/export", nil, sess)
	if export.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", export.StatusCode)
	}
	if ct := export.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("export content type %q", ct)
	}
	if cd := export.Header.Get("Content-Disposition"); !strings.Contains(cd, "event_feed_") {
		t.Fatalf("export disposition %q", cd)
	}
}
