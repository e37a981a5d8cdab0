package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/educontrol/educontrol/internal/rbac"
)

// Login outcomes reported to a LoginObserver.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// LoginObserver receives the outcome of every login attempt.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// Gate owns the identity of one browser session. The in-memory identity is
// the source of truth for reads; the store mirrors it so the next request
// can restore it.
type Gate struct {
	client   Authenticator
	store    Store
	logger   *slog.Logger
	observer LoginObserver

	mu       sync.RWMutex
	identity Identity
}

// NewGate constructs an anonymous Gate. Call Initialize to restore a
// persisted identity.
func NewGate(client Authenticator, store Store, logger *slog.Logger, observer LoginObserver) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{client: client, store: store, logger: logger, observer: observer}
}

var errIdentityIncomplete = errors.New("auth: persisted identity is incomplete")

// Initialize adopts the identity persisted in the store. Unreadable or
// inconsistent storage leaves the gate anonymous; an inconsistent record is
// discarded when the store supports it.
func (g *Gate) Initialize() {
	restored, err := g.restore()
	if err != nil {
		g.logger.Debug("restore identity", slog.Any("error", err))
		restored = Anonymous
		if errors.Is(err, errIdentityIncomplete) {
			g.discard()
		}
	}
	g.mu.Lock()
	g.identity = restored
	g.mu.Unlock()
}

func (g *Gate) restore() (Identity, error) {
	if g.store == nil {
		return Anonymous, ErrStorageUnavailable
	}
	values := make(map[string]string, len(identityKeys))
	for _, key := range identityKeys {
		v, err := g.store.Get(key)
		if err != nil {
			return Anonymous, err
		}
		values[key] = v
	}
	if values[KeyUserID] == "" && values[KeyRole] == "" {
		return Anonymous, nil
	}
	role, ok := rbac.ParseRole(values[KeyRole])
	if !ok || values[KeyUserID] == "" {
		return Anonymous, errIdentityIncomplete
	}
	return Identity{
		UserID:      values[KeyUserID],
		Role:        role,
		DisplayName: values[KeyDisplayName],
		SubjectID:   values[KeySubjectID],
	}, nil
}

func (g *Gate) discard() {
	d, ok := g.store.(Discarder)
	if !ok {
		return
	}
	if err := d.Discard(); err != nil {
		g.logger.Warn("discard session", slog.Any("error", err))
		return
	}
	g.logger.Info("discarded inconsistent session")
}

// Login submits the credentials once. On success the identity is replaced
// as a whole and persisted; on any failure the current identity is kept
// and false is returned.
func (g *Gate) Login(ctx context.Context, credential, secret string) bool {
	if g.client == nil {
		g.logger.Error("login without authenticator")
		g.observe(OutcomeUnavailable)
		return false
	}
	next, err := g.client.Authenticate(ctx, credential, secret)
	if err == nil && !next.Authenticated() {
		err = ErrAuthenticationRejected
	}
	if err != nil {
		if errors.Is(err, ErrAuthenticationRejected) {
			g.logger.Info("login rejected", slog.Any("error", err))
			g.observe(OutcomeRejected)
		} else {
			g.logger.Warn("login failed", slog.Any("error", err))
			g.observe(OutcomeUnavailable)
		}
		return false
	}

	g.mu.Lock()
	g.identity = next
	g.mu.Unlock()

	if err := g.persist(next); err != nil {
		g.logger.Warn("persist identity", slog.Any("error", err))
	}
	g.observe(OutcomeSuccess)
	return true
}

func (g *Gate) persist(id Identity) error {
	if g.store == nil {
		return ErrStorageUnavailable
	}
	fields := map[string]string{
		KeyUserID:      id.UserID,
		KeyRole:        id.Role.String(),
		KeyDisplayName: id.DisplayName,
		KeySubjectID:   id.SubjectID,
	}
	var errs []error
	for _, key := range identityKeys {
		if err := g.store.Set(key, fields[key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logout resets the identity to anonymous and removes every persisted
// field. Calling it while anonymous is harmless.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.identity = Anonymous
	g.mu.Unlock()

	if g.store == nil {
		return
	}
	var errs []error
	for _, key := range identityKeys {
		if err := g.store.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		g.logger.Warn("clear identity", slog.Any("error", err))
	}
}

// Identity returns a snapshot of the current identity without any I/O.
func (g *Gate) Identity() Identity {
	if g == nil {
		return Anonymous
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity
}

func (g *Gate) observe(outcome string) {
	if g.observer != nil {
		g.observer.ObserveLogin(outcome)
	}
}
