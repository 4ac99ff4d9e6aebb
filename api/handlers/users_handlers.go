package handlers

import (
	"net/http"
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

type UsersHandler struct {
	cfg    *config.AppConfig
	users  store.UsersStore
	policy *rbac.Policy
	audits store.AuditStore
	logger *utils.Logger
}

func NewUsersHandler(cfg *config.AppConfig, users store.UsersStore, policy *rbac.Policy, audits store.AuditStore, logger *utils.Logger) *UsersHandler {
	return &UsersHandler{cfg: cfg, users: users, policy: policy, audits: audits, logger: logger}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.UserFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Department: strings.TrimSpace(q.Get("department")),
		ActiveOnly: q.Get("active") == "true",
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	users, err := h.users.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	items := make([]map[string]any, 0, len(users))
	for i := range users {
		roles, _ := h.users.RolesFor(r.Context(), users[i].ID)
		items = append(items, userView(&users[i], roles))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	roles, _ := h.users.RolesFor(r.Context(), user.ID)
	writeJSON(w, http.StatusOK, userView(user, roles))
}

type userPayload struct {
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FullName   string   `json:"full_name"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	Password   string   `json:"password"`
	Roles      []string `json:"roles"`
	Active     *bool    `json:"active"`
}

func (p userPayload) validate(creating bool) fieldErrors {
	fe := fieldErrors{}
	if creating {
		if err := utils.ValidateUsername(strings.ToLower(strings.TrimSpace(p.Username))); err != nil {
			fe["username"] = "3-64 chars: lowercase letters, digits, . _ -"
		}
		if err := auth.ValidatePassword(p.Password); err != nil {
			fe["password"] = "password must be at least 8 characters"
		}
	}
	if strings.TrimSpace(p.FullName) == "" {
		fe["full_name"] = "full name is required"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.SessionFromContext(r.Context())
	var payload userPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(true); fe != nil {
		fe.write(w)
		return
	}
	hash, salt, err := auth.HashPassword(payload.Password, h.cfg.Pepper)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	user := &store.User{
		Username:              strings.ToLower(strings.TrimSpace(payload.Username)),
		Email:                 payload.Email,
		FullName:              payload.FullName,
		Department:            payload.Department,
		Position:              payload.Position,
		PasswordHash:          hash,
		Salt:                  salt,
		RequirePasswordChange: true,
		Active:                true,
	}
	roles := payload.Roles
	if len(roles) == 0 {
		roles = []string{"viewer"}
	}
	id, err := h.users.Create(r.Context(), user, roles)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.audits.Log(r.Context(), actor.Username, "users.created", user.Username)
	user.ID = id
	writeJSON(w, http.StatusCreated, userView(user, roles))
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.SessionFromContext(r.Context())
	id, ok := urlParamInt64(r, "id")
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	var payload userPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if fe := payload.validate(false); fe != nil {
		fe.write(w)
		return
	}
	user.Email = payload.Email
	user.FullName = payload.FullName
	user.Department = payload.Department
	user.Position = payload.Position
	if payload.Active != nil {
		user.Active = *payload.Active
	}
	if payload.Password != "" {
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
		user.RequirePasswordChange = true
	}
	roles := payload.Roles
	if err := h.users.Update(r.Context(), user, roles); err != nil {
		writeStoreError(w, err)
		return
	}
	if roles == nil {
		roles, _ = h.users.RolesFor(r.Context(), user.ID)
	}
	h.audits.Log(r.Context(), actor.Username, "users.updated", user.Username)
	writeJSON(w, http.StatusOK, userView(user, roles))
}
