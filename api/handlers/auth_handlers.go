package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/bootstrap"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

type AuthHandler struct {
	cfg            *config.AppConfig
	users          store.UsersStore
	sessions       store.SessionStore
	sessionManager *auth.SessionManager
	policy         *rbac.Policy
	audits         store.AuditStore
	logger         *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, users store.UsersStore, sessions store.SessionStore, sm *auth.SessionManager, policy *rbac.Policy, audits store.AuditStore, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, sessions: sessions, sessionManager: sm, policy: policy, audits: audits, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Safety net: the default admin must exist before any login attempt.
	if err := bootstrap.EnsureDefaultAdmin(r.Context(), h.users, h.cfg, h.logger); err != nil && h.logger != nil {
		h.logger.Errorf("ensure default admin: %v", err)
	}
	var cred auth.Credentials
	if !decodeJSON(w, r, &cred) {
		return
	}
	cred.Username = strings.ToLower(strings.TrimSpace(cred.Username))
	if err := utils.ValidateUsername(cred.Username); err != nil {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}
	user, roles, err := h.users.FindByUsername(r.Context(), cred.Username)
	if err != nil || user == nil || !user.Active {
		h.audits.Log(r.Context(), cred.Username, "auth.login_failed", "user missing or inactive")
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.VerifyPassword(cred.Password, h.cfg.Pepper, user.PasswordHash, user.Salt) {
		h.audits.Log(r.Context(), cred.Username, "auth.login_failed", "invalid password")
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	sess, err := h.sessionManager.Create(r.Context(), user, roles, clientIP(r), r.UserAgent())
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("login session create failed for %s: %v", cred.Username, err)
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), user.Username, "auth.login_success", "")
	h.setSessionCookies(w, r, sess.ID, sess.CSRFToken, sess.ExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       userView(user, roles),
		"csrf_token": sess.CSRFToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor := ""
	if sr := auth.SessionFromContext(r.Context()); sr != nil {
		actor = sr.Username
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		_ = h.sessions.DeleteSession(r.Context(), cookie.Value, actor)
	}
	h.clearSessionCookies(w, r)
	h.audits.Log(r.Context(), actor, "auth.logout", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sr := auth.SessionFromContext(r.Context())
	user, roles, err := h.users.FindByUsername(r.Context(), sr.Username)
	if err != nil || user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       userView(user, roles),
		"csrf_token": sr.CSRFToken,
	})
}

func (h *AuthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	sr := auth.SessionFromContext(r.Context())
	now := time.Now().UTC()
	_ = h.sessions.UpdateActivity(r.Context(), sr.ID, now, h.cfg.EffectiveSessionTTL())
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "last_seen_at": now})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sr := auth.SessionFromContext(r.Context())
	var payload struct {
		Current  string `json:"current_password"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	user, roles, err := h.users.FindByUsername(r.Context(), sr.Username)
	if err != nil || user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !auth.VerifyPassword(payload.Current, h.cfg.Pepper, user.PasswordHash, user.Salt) {
		fieldErrors{"current_password": "current password is incorrect"}.write(w)
		return
	}
	if err := auth.ValidatePassword(payload.Password); err != nil {
		fieldErrors{"password": "password must be at least 8 characters"}.write(w)
		return
	}
	hash, salt, err := auth.HashPassword(payload.Password, h.cfg.Pepper)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	user.PasswordHash = hash
	user.Salt = salt
	user.RequirePasswordChange = false
	if err := h.users.Update(r.Context(), user, roles); err != nil {
		writeStoreError(w, err)
		return
	}
	// Session rotation invalidates any token leaked before the change.
	newSess, err := h.sessionManager.Rotate(r.Context(), sr.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), user.Username, "auth.password_changed", "")
	h.setSessionCookies(w, r, newSess.ID, newSess.CSRFToken, newSess.ExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "csrf_token": newSess.CSRFToken})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, r *http.Request, sessionID, csrfToken string, expires time.Time) {
	secure := isSecureRequest(r)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	secure := isSecureRequest(r)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func userView(u *store.User, roles []string) map[string]any {
	return map[string]any{
		"id":                      u.ID,
		"username":                u.Username,
		"email":                   u.Email,
		"full_name":               u.FullName,
		"department":              u.Department,
		"position":                u.Position,
		"roles":                   roles,
		"active":                  u.Active,
		"require_password_change": u.RequirePasswordChange,
	}
}
