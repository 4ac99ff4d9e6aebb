package tests

import (
	"net/http"
	"testing"
)

func TestLoginSetsSessionAndCSRFCookies(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "admin")

	resp := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": testPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}

	var sessionCookie, csrfCookie *http.Cookie
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "bow_session":
			sessionCookie = c
		case "bow_csrf":
			csrfCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatalf("session cookie not set")
	}
	if !sessionCookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	if csrfCookie == nil || csrfCookie.Value == "" {
		t.Fatalf("csrf cookie not set")
	}
	if csrfCookie.HttpOnly {
		t.Fatalf("csrf cookie must be readable by the client")
	}

	var body struct {
		CSRFToken string `json:"csrf_token"`
		User      struct {
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	if body.CSRFToken != csrfCookie.Value {
		t.Fatalf("csrf token mismatch between body and cookie")
	}
	if body.User.Username != "alice" {
		t.Fatalf("unexpected user %q", body.User.Username)
	}

	// The issued cookies authenticate follow-up requests.
	req, _ := http.NewRequest(http.MethodGet, env.ts.URL+"/api/auth/me", nil)
	req.AddCookie(sessionCookie)
	meResp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("me status %d", meResp.StatusCode)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bob", "viewer")

	resp := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "bob",
		"password": "not-the-password",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequestWithoutSessionIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/risks/", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "carol", "manager")
	sess := env.startSession(t, u, "manager")

	// Session cookie alone is not enough for state-changing methods.
	req, _ := http.NewRequest(http.MethodPost, env.ts.URL+"/api/risks/themes", nil)
	req.AddCookie(&http.Cookie{Name: "bow_session", Value: sess.ID})
	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf, got %d", resp.StatusCode)
	}

	ok := env.do(t, http.MethodPost, "/api/risks/themes", map[string]string{"name": "Operational"}, sess)
	if ok.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 with csrf, got %d", ok.StatusCode)
	}
}

func TestViewerCannotManageRisks(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "dave", "viewer")
	sess := env.startSession(t, u, "viewer")

	resp := env.do(t, http.MethodPost, "/api/risks/themes", map[string]string{"name": "Legal"}, sess)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	listResp := env.do(t, http.MethodGet, "/api/risks/", nil, sess)
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("viewer should read risks, got %d", listResp.StatusCode)
	}
}
