package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/educontrol/educontrol/internal/rbac"
	"github.com/educontrol/educontrol/internal/shared"
	"github.com/educontrol/educontrol/internal/view"
)

// Provider builds a Gate for every request. It is constructed once at
// process start.
type Provider struct {
	client   Authenticator
	logger   *slog.Logger
	observer LoginObserver
}

// NewProvider constructs a Provider.
func NewProvider(client Authenticator, logger *slog.Logger, observer LoginObserver) *Provider {
	return &Provider{client: client, logger: logger, observer: observer}
}

// Open returns an initialized Gate backed by store.
func (p *Provider) Open(store Store) *Gate {
	gate := NewGate(p.client, store, p.logger, p.observer)
	gate.Initialize()
	return gate
}

// Middleware opens a Gate over the request's session and installs it in the
// request context. It must run after the session middleware.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		var store Store
		if sess != nil {
			store = NewSessionStore(sess)
		}
		gate := p.Open(store)
		next.ServeHTTP(w, r.WithContext(ContextWithGate(r.Context(), gate)))
	})
}

type gateContextKey struct{}

// ContextWithGate stores the gate in context.
func ContextWithGate(ctx context.Context, gate *Gate) context.Context {
	return context.WithValue(ctx, gateContextKey{}, gate)
}

// GateFromContext extracts the gate from context.
func GateFromContext(ctx context.Context) *Gate {
	gate, _ := ctx.Value(gateContextKey{}).(*Gate)
	return gate
}

// IdentityFromContext returns the current identity, anonymous when no gate
// is installed.
func IdentityFromContext(ctx context.Context) Identity {
	return GateFromContext(ctx).Identity()
}

// PrincipalFromContext adapts IdentityFromContext for rbac.Middleware.
func PrincipalFromContext(ctx context.Context) rbac.Principal {
	return IdentityFromContext(ctx)
}

// ViewerFromContext builds the layout snapshot for the current identity.
func ViewerFromContext(ctx context.Context) view.Viewer {
	return NewViewer(IdentityFromContext(ctx))
}

// NewViewer converts an identity into the layout snapshot.
func NewViewer(id Identity) view.Viewer {
	return view.Viewer{
		Authenticated: id.Authenticated(),
		UserID:        id.UserID,
		DisplayName:   id.DisplayName,
		SubjectID:     id.SubjectID,
		RoleLabel:     id.Role.Label(),
		Nav:           rbac.Navigation(id.Role),
	}
}
