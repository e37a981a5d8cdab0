package rbac

import (
	"context"
	"log/slog"
	"net/http"
)

// DefaultLoginPath is where anonymous visitors are sent.
const DefaultLoginPath = "/login"

// Middleware wires route protection for HTTP handlers.
type Middleware struct {
	// Resolve returns the principal of the current request, or nil.
	Resolve   func(ctx context.Context) Principal
	LoginPath string
	Logger    *slog.Logger
}

// RequireIdentity lets any authenticated role through and redirects
// anonymous visitors to the login page. The decision is taken on every
// request from the principal resolved for that request.
func (m Middleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.currentRole(r).Authenticated() {
			if m.Logger != nil {
				m.Logger.Debug("guard redirect", slog.String("path", r.URL.Path))
			}
			http.Redirect(w, r, m.loginPath(), http.StatusSeeOther)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) currentRole(r *http.Request) Role {
	if m.Resolve == nil {
		return RoleAnonymous
	}
	principal := m.Resolve(r.Context())
	if principal == nil {
		return RoleAnonymous
	}
	return principal.CurrentRole()
}

func (m Middleware) loginPath() string {
	if m.LoginPath == "" {
		return DefaultLoginPath
	}
	return m.LoginPath
}
