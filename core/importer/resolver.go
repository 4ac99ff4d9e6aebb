package importer

import (
	"fmt"
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

// UserResolver maps free-text name cells ("J. Smith", "jane.smith@corp")
// onto user ids. It works off a directory snapshot taken at job start, so a
// single import sees a consistent user set, and memoizes per distinct input
// so a 5000-row sheet resolves each name once.
type UserResolver struct {
	users    []store.User
	cache    map[string]*int64
	warnings []string
	warned   map[string]bool
}

func NewUserResolver(users []store.User) *UserResolver {
	return &UserResolver{
		users:  users,
		cache:  map[string]*int64{},
		warned: map[string]bool{},
	}
}

// Resolve returns the matched user id, or nil for blank or unknown inputs.
// Only unknown non-blank inputs produce a warning, once per distinct value.
func (r *UserResolver) Resolve(input string) *int64 {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	key := strings.ToLower(input)
	if id, ok := r.cache[key]; ok {
		return id
	}
	id := r.lookup(key)
	r.cache[key] = id
	if id == nil && !r.warned[key] {
		r.warned[key] = true
		r.warnings = append(r.warnings, fmt.Sprintf("User not found: '%s'", input))
	}
	return id
}

// Warnings returns the accumulated unknown-user warnings in first-seen order.
func (r *UserResolver) Warnings() []string {
	return r.warnings
}

// lookup order: exact full name, exact email, then substring match on full
// name. Exact always beats fuzzy; fuzzy ties break on the lowest user id so
// repeated imports of the same sheet resolve identically.
func (r *UserResolver) lookup(key string) *int64 {
	for _, u := range r.users {
		if strings.ToLower(u.FullName) == key {
			return &u.ID
		}
	}
	for _, u := range r.users {
		if u.Email != "" && strings.ToLower(u.Email) == key {
			return &u.ID
		}
	}
	var best *int64
	for _, u := range r.users {
		if u.FullName == "" || !strings.Contains(strings.ToLower(u.FullName), key) {
			continue
		}
		if best == nil || u.ID < *best {
			id := u.ID
			best = &id
		}
	}
	return best
}
