package routegroups

import "net/http"

// Guards bundles the middleware the route groups need without importing the
// server package.
type Guards struct {
	WithSession       func(http.HandlerFunc) http.HandlerFunc
	RequirePermission func(string) func(http.HandlerFunc) http.HandlerFunc
}

// SessionPerm wraps a handler in session auth plus a permission check.
func (g Guards) SessionPerm(perm string, h http.HandlerFunc) http.HandlerFunc {
	return g.WithSession(g.RequirePermission(perm)(h))
}
