package rbac

import (
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

// Resource-level authorization is expressed as composable predicates over the
// session and the record, layered on top of the role/permission policy.

func IsAdmin(sess *store.SessionRecord) bool {
	if sess == nil {
		return false
	}
	for _, r := range sess.Roles {
		if strings.EqualFold(r, "admin") {
			return true
		}
	}
	return false
}

func IsOwner(sess *store.SessionRecord, ownerUserID *int64) bool {
	return sess != nil && ownerUserID != nil && *ownerUserID == sess.UserID
}

func IsResponsible(sess *store.SessionRecord, responsibleUserID *int64) bool {
	return sess != nil && responsibleUserID != nil && *responsibleUserID == sess.UserID
}

// SameDepartment compares the session user's department with the record's.
func SameDepartment(userDepartment, recordDepartment string) bool {
	d := strings.TrimSpace(userDepartment)
	return d != "" && strings.EqualFold(d, strings.TrimSpace(recordDepartment))
}

// CanEditRisk: admins, the risk owner, the responsible party, or a user from
// the risk's department holding the manage permission.
func CanEditRisk(p *Policy, sess *store.SessionRecord, user *store.User, risk *store.Risk) bool {
	if sess == nil || risk == nil {
		return false
	}
	if IsAdmin(sess) {
		return true
	}
	if !p.Allowed(sess.Roles, PermRisksManage) {
		return false
	}
	if IsOwner(sess, risk.OwnerUserID) || IsResponsible(sess, risk.ResponsibleUserID) {
		return true
	}
	return user != nil && SameDepartment(user.Department, risk.Department)
}

// CanEditWorkItem mirrors CanEditRisk for work and governance items.
func CanEditWorkItem(p *Policy, sess *store.SessionRecord, user *store.User, item *store.WorkItem) bool {
	if sess == nil || item == nil {
		return false
	}
	if IsAdmin(sess) {
		return true
	}
	if !p.Allowed(sess.Roles, PermWorkManage) {
		return false
	}
	if IsResponsible(sess, item.ResponsibleUserID) {
		return true
	}
	return user != nil && SameDepartment(user.Department, item.Department)
}
