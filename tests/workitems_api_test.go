package tests

import (
	"net/http"
	"testing"
)

type workItemResponse struct {
	ID        int64  `json:"id"`
	RefNo     string `json:"ref_no"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	RAGStatus string `json:"rag_status"`
	Version   int    `json:"version"`
}

func TestWorkItemLifecycle(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "worker1", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/work-items/", map[string]any{
		"ref_no":     "BOW-2001",
		"title":      "Quarterly DR test",
		"rag_status": "Amber",
	}, sess)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var created workItemResponse
	decodeBody(t, resp, &created)
	if created.Status != "open" {
		t.Fatalf("default status %q, want open", created.Status)
	}
	if created.RAGStatus != "amber" {
		t.Fatalf("rag not canonicalized: %q", created.RAGStatus)
	}

	path := "/api/work-items/" + itoa(created.ID)
	upd := env.do(t, http.MethodPut, path, map[string]any{
		"ref_no":  "BOW-2001",
		"title":   "Quarterly DR test",
		"status":  "in_progress",
		"version": created.Version,
	}, sess)
	if upd.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", upd.StatusCode)
	}

	stale := env.do(t, http.MethodPut, path, map[string]any{
		"ref_no":  "BOW-2001",
		"title":   "Quarterly DR test",
		"version": created.Version,
	}, sess)
	if stale.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on stale version, got %d", stale.StatusCode)
	}

	del := env.do(t, http.MethodDelete, path, nil, sess)
	if del.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", del.StatusCode)
	}
	list := env.do(t, http.MethodGet, "/api/work-items/", nil, sess)
	var listBody struct {
		Items []workItemResponse `json:"items"`
	}
	decodeBody(t, list, &listBody)
	for _, item := range listBody.Items {
		if item.ID == created.ID {
			t.Fatalf("deleted item still listed")
		}
	}
}

func TestWorkItemRequiresRefNo(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "worker2", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/work-items/", map[string]any{
		"title": "No reference",
	}, sess)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestGovernanceItemsAreSeparateFromWorkItems(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "worker3", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/governance-items/", map[string]any{
		"ref_no":          "GOV-1",
		"title":           "Annual policy review",
		"governance_type": "policy",
	}, sess)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}

	workList := env.do(t, http.MethodGet, "/api/work-items/", nil, sess)
	var workBody struct {
		Items []workItemResponse `json:"items"`
	}
	decodeBody(t, workList, &workBody)
	for _, item := range workBody.Items {
		if item.RefNo == "GOV-1" {
			t.Fatalf("governance item leaked into work items")
		}
	}

	govList := env.do(t, http.MethodGet, "/api/governance-items/", nil, sess)
	var govBody struct {
		Items []workItemResponse `json:"items"`
	}
	decodeBody(t, govList, &govBody)
	found := false
	for _, item := range govBody.Items {
		if item.RefNo == "GOV-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("governance item not listed")
	}
}

func TestWorkItemRejectsBadRAG(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "worker4", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/work-items/", map[string]any{
		"ref_no":     "BOW-2002",
		"title":      "Bad RAG",
		"rag_status": "purple",
	}, sess)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}
