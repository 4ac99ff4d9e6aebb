package tests

import (
	"net/http"
	"testing"
)

type supplierResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Version    int    `json:"version"`
}

func TestSupplierContractInvoiceChain(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "supplier1", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/suppliers/", map[string]any{
		"name":       "Acme Hosting",
		"department": "IT",
	}, sess)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create supplier status %d", resp.StatusCode)
	}
	var sup supplierResponse
	decodeBody(t, resp, &sup)
	if sup.Status != "active" {
		t.Fatalf("default status %q, want active", sup.Status)
	}

	contractResp := env.do(t, http.MethodPost, "/api/suppliers/"+itoa(sup.ID)+"/contracts", map[string]any{
		"ref_no":       "CT-100",
		"title":        "Hosting 2026",
		"annual_value": 120000.0,
	}, sess)
	if contractResp.StatusCode != http.StatusCreated {
		t.Fatalf("create contract status %d", contractResp.StatusCode)
	}
	var contract struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, contractResp, &contract)

	invoiceResp := env.do(t, http.MethodPost, "/api/suppliers/contracts/"+itoa(contract.ID)+"/invoices", map[string]any{
		"ref_no": "INV-1",
		"amount": 10000.0,
	}, sess)
	if invoiceResp.StatusCode != http.StatusCreated {
		t.Fatalf("create invoice status %d", invoiceResp.StatusCode)
	}

	listResp := env.do(t, http.MethodGet, "/api/suppliers/contracts/"+itoa(contract.ID)+"/invoices", nil, sess)
	var invoices struct {
		Items []struct {
			RefNo  string  `json:"ref_no"`
			Amount float64 `json:"amount"`
			Status string  `json:"status"`
		} `json:"items"`
	}
	decodeBody(t, listResp, &invoices)
	if len(invoices.Items) != 1 || invoices.Items[0].RefNo != "INV-1" {
		t.Fatalf("invoice listing wrong: %+v", invoices.Items)
	}
	if invoices.Items[0].Status != "pending" {
		t.Fatalf("default invoice status %q, want pending", invoices.Items[0].Status)
	}
}

func TestSupplierDuplicateNameInDepartmentRejected(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "supplier2", "manager")
	sess := env.startSession(t, u, "manager")

	first := env.do(t, http.MethodPost, "/api/suppliers/", map[string]any{
		"name":       "Duplicated Corp",
		"department": "Finance",
	}, sess)
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("first create status %d", first.StatusCode)
	}
	second := env.do(t, http.MethodPost, "/api/suppliers/", map[string]any{
		"name":       "duplicated corp",
		"department": "Finance",
	}, sess)
	if second.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for duplicate, got %d", second.StatusCode)
	}
}

func TestSupplierUpdateVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "supplier3", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/suppliers/", map[string]any{
		"name":       "Versioned Ltd",
		"department": "Ops",
	}, sess)
	var sup supplierResponse
	decodeBody(t, resp, &sup)

	path := "/api/suppliers/" + itoa(sup.ID)
	first := env.do(t, http.MethodPut, path, map[string]any{
		"name":       "Versioned Ltd",
		"department": "Ops",
		"rag_status": "green",
		"version":    sup.Version,
	}, sess)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first update status %d", first.StatusCode)
	}
	stale := env.do(t, http.MethodPut, path, map[string]any{
		"name":       "Versioned Ltd",
		"department": "Ops",
		"version":    sup.Version,
	}, sess)
	if stale.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", stale.StatusCode)
	}
}
