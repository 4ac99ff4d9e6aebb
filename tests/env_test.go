package tests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/api"
	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/importer"
	"github.com/Wazadriano/bow-tavira-sub002/core/notify"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

const testPassword = "correct-horse-42"

type testEnv struct {
	cfg           *config.AppConfig
	db            *sql.DB
	users         store.UsersStore
	sessions      store.SessionStore
	audits        store.AuditStore
	risks         store.RisksStore
	workItems     store.WorkItemsStore
	governance    store.WorkItemsStore
	suppliers     store.SuppliersStore
	notifications store.NotificationsStore
	sm            *auth.SessionManager
	runner        *importer.Runner
	progress      *importer.ProgressStore
	ts            *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DBPath:     filepath.Join(dir, "bow.db"),
		Pepper:     "test-pepper",
		SessionTTL: time.Hour,
		Risk:       config.RiskConfig{AppetiteMargin: 2},
		Imports: config.ImportsConfig{
			TempDir:        filepath.Join(dir, "imports"),
			UploadMaxBytes: 1 << 20,
			PreviewRows:    10,
			ErrorCap:       50,
			ProgressTTL:    time.Hour,
		},
	}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, cfg.DBDriver, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	env := &testEnv{
		cfg:           cfg,
		db:            db,
		users:         store.NewUsersStore(db),
		sessions:      store.NewSessionsStore(db),
		audits:        store.NewAuditStore(db),
		risks:         store.NewRisksStore(db),
		workItems:     store.NewWorkItemsStore(db),
		governance:    store.NewGovernanceItemsStore(db),
		suppliers:     store.NewSuppliersStore(db),
		notifications: store.NewNotificationsStore(db),
	}
	env.sm = auth.NewSessionManager(env.sessions, cfg, logger)
	notifySvc := notify.NewService(env.notifications, logger)
	deps := importer.Deps{
		Risks:      env.risks,
		WorkItems:  env.workItems,
		Governance: env.governance,
		Suppliers:  env.suppliers,
		Users:      env.users,
		Audits:     env.audits,
		Notify:     notifySvc,
	}
	env.progress = importer.NewProgressStore(cfg.Imports.ProgressTTL)
	env.runner = importer.NewRunner(deps, env.progress, cfg.Imports.ErrorCap, logger)

	server := api.NewServer(cfg, api.ServerDeps{
		Users:          env.users,
		Sessions:       env.sessions,
		Audits:         env.audits,
		Risks:          env.risks,
		WorkItems:      env.workItems,
		Governance:     env.governance,
		Suppliers:      env.suppliers,
		Notifications:  env.notifications,
		SessionManager: env.sm,
		Policy:         rbac.NewPolicy(rbac.DefaultRoles()),
		ImportRunner:   env.runner,
		ImportProgress: env.progress,
		ImportDeps:     deps,
	}, logger)
	env.ts = httptest.NewServer(server.Handler())
	t.Cleanup(env.ts.Close)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string, roles ...string) *store.User {
	t.Helper()
	hash, salt, err := auth.HashPassword(testPassword, e.cfg.Pepper)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &store.User{
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: hash,
		Salt:         salt,
		Active:       true,
	}
	id, err := e.users.Create(context.Background(), u, roles)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	u.ID = id
	return u
}

// startSession mints a session directly, bypassing the login endpoint and its
// rate limiter.
func (e *testEnv) startSession(t *testing.T, u *store.User, roles ...string) *auth.Session {
	t.Helper()
	sess, err := e.sm.Create(context.Background(), u, roles, "127.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

// do sends an authenticated request to the test server. A nil session sends
// the request bare; bodies are JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path string, body any, sess *auth.Session) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.AddCookie(&http.Cookie{Name: "bow_session", Value: sess.ID})
		req.AddCookie(&http.Cookie{Name: "bow_csrf", Value: sess.CSRFToken})
		if method != http.MethodGet && method != http.MethodHead {
			req.Header.Set("X-CSRF-Token", sess.CSRFToken)
		}
	}
	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
