package routegroups

import "net/http"

// Guards bundles the middleware closures route groups compose around
// handlers, so route files stay free of server internals.
type Guards struct {
	WithSession       func(http.HandlerFunc) http.HandlerFunc
	RequirePermission func(string) func(http.HandlerFunc) http.HandlerFunc
}

// SessionPerm wraps a handler in session auth plus a permission check.
func (g Guards) SessionPerm(perm string, h http.HandlerFunc) http.HandlerFunc {
	return g.WithSession(g.RequirePermission(perm)(h))
}

// Session wraps a handler in session auth only.
func (g Guards) Session(h http.HandlerFunc) http.HandlerFunc {
	return g.WithSession(h)
}
