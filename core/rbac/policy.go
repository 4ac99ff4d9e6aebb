package rbac

import (
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Permission = string

const (
	PermDashboardView   Permission = "dashboard.view"
	PermUsersView       Permission = "users.view"
	PermUsersManage     Permission = "users.manage"
	PermAuditView       Permission = "audit.view"
	PermRisksView       Permission = "risks.view"
	PermRisksManage     Permission = "risks.manage"
	PermWorkView        Permission = "workitems.view"
	PermWorkManage      Permission = "workitems.manage"
	PermSuppliersView   Permission = "suppliers.view"
	PermSuppliersManage Permission = "suppliers.manage"
	PermImportsRun      Permission = "imports.run"
	PermNotifView       Permission = "notifications.view"
)

const modelText = `
[request_definition]
r = sub, perm

[policy_definition]
p = sub, perm

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (r.perm == p.perm || p.perm == "*")
`

// Policy answers role -> permission checks through a casbin enforcer built
// from the in-code grant table.
type Policy struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

type RoleGrant struct {
	Role        string
	Permissions []Permission
}

func DefaultRoles() []RoleGrant {
	return []RoleGrant{
		{Role: "admin", Permissions: []Permission{"*"}},
		{Role: "manager", Permissions: []Permission{
			PermDashboardView, PermUsersView, PermAuditView,
			PermRisksView, PermRisksManage,
			PermWorkView, PermWorkManage,
			PermSuppliersView, PermSuppliersManage,
			PermImportsRun, PermNotifView,
		}},
		{Role: "contributor", Permissions: []Permission{
			PermDashboardView, PermUsersView,
			PermRisksView, PermRisksManage,
			PermWorkView, PermWorkManage,
			PermSuppliersView, PermNotifView,
		}},
		{Role: "viewer", Permissions: []Permission{
			PermDashboardView, PermUsersView,
			PermRisksView, PermWorkView, PermSuppliersView, PermNotifView,
		}},
	}
}

func NewPolicy(grants []RoleGrant) *Policy {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		// The model text is a compile-time constant; failing to parse it is
		// a programming error.
		panic(err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		panic(err)
	}
	for _, g := range grants {
		role := strings.ToLower(strings.TrimSpace(g.Role))
		for _, perm := range g.Permissions {
			_, _ = e.AddPolicy(role, string(perm))
		}
	}
	return &Policy{enforcer: e}
}

// Allowed reports whether any of the session roles grants the permission.
func (p *Policy) Allowed(roles []string, perm Permission) bool {
	if p == nil || p.enforcer == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, role := range roles {
		ok, err := p.enforcer.Enforce(strings.ToLower(strings.TrimSpace(role)), string(perm))
		if err == nil && ok {
			return true
		}
	}
	return false
}
