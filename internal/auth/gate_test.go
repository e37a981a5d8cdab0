package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educontrol/educontrol/internal/rbac"
	"github.com/educontrol/educontrol/internal/shared"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) Get(key string) (string, error) { return m.values[key], nil }
func (m *memoryStore) Set(key, value string) error   { m.values[key] = value; return nil }
func (m *memoryStore) Delete(key string) error       { delete(m.values, key); return nil }

type discardingStore struct {
	*memoryStore
	discarded int
}

func (d *discardingStore) Discard() error {
	d.discarded++
	d.values = make(map[string]string)
	return nil
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, error) { return "", ErrStorageUnavailable }
func (brokenStore) Set(string, string) error   { return ErrStorageUnavailable }
func (brokenStore) Delete(string) error        { return ErrStorageUnavailable }

type stubAuthenticator struct {
	identity Identity
	err      error
	calls    int
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, credential, secret string) (Identity, error) {
	s.calls++
	return s.identity, s.err
}

type countingObserver map[string]int

func (c countingObserver) ObserveLogin(outcome string) { c[outcome]++ }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var student = Identity{UserID: "7", Role: rbac.RoleStudent, SubjectID: "11111111-1"}

func TestGateLoginLogoutScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"id_usuario":"7","tipo_usuario":"alumno","rut":"11111111-1"}`))
	}))
	defer srv.Close()

	store := newMemoryStore()
	gate := NewGate(NewClient(srv.URL, "", time.Second), store, quietLogger(), nil)
	gate.Initialize()
	require.False(t, gate.Identity().Authenticated())

	ok := gate.Login(context.Background(), "a@b.com", "secret")
	require.True(t, ok)
	assert.Equal(t, Identity{UserID: "7", Role: rbac.RoleStudent, DisplayName: "", SubjectID: "11111111-1"}, gate.Identity())
	assert.Equal(t, map[string]string{
		KeyUserID:      "7",
		KeyRole:        "alumno",
		KeyDisplayName: "",
		KeySubjectID:   "11111111-1",
	}, store.values)

	gate.Logout()
	assert.Equal(t, Anonymous, gate.Identity())
	assert.Empty(t, store.values)
}

func TestGateLoginUnauthorizedKeepsIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newMemoryStore()
	observer := countingObserver{}
	gate := NewGate(NewClient(srv.URL, "", time.Second), store, quietLogger(), observer)
	gate.Initialize()

	before := gate.Identity()
	assert.False(t, gate.Login(context.Background(), "a@b.com", "wrong"))
	assert.Equal(t, before, gate.Identity())
	assert.Empty(t, store.values)
	assert.Equal(t, 1, observer[OutcomeRejected])
}

func TestGateFailedLoginKeepsAuthenticatedIdentity(t *testing.T) {
	store := newMemoryStore()
	auth := &stubAuthenticator{identity: student}
	gate := NewGate(auth, store, quietLogger(), nil)
	require.True(t, gate.Login(context.Background(), "a@b.com", "secret"))

	auth.identity, auth.err = Identity{}, fmt.Errorf("%w: dial tcp", ErrTransportUnavailable)
	assert.False(t, gate.Login(context.Background(), "other@b.com", "secret"))
	assert.Equal(t, student, gate.Identity())
	assert.Equal(t, "7", store.values[KeyUserID])
	assert.Equal(t, 2, auth.calls)
}

func TestGateLoginOverwritesPreviousIdentity(t *testing.T) {
	store := newMemoryStore()
	auth := &stubAuthenticator{identity: Identity{UserID: "1", Role: rbac.RoleAdmin, DisplayName: "Marta", SubjectID: "9-9"}}
	gate := NewGate(auth, store, quietLogger(), nil)
	require.True(t, gate.Login(context.Background(), "m@b.com", "x"))

	auth.identity = student
	require.True(t, gate.Login(context.Background(), "a@b.com", "x"))
	assert.Equal(t, student, gate.Identity())
	assert.Equal(t, "", store.values[KeyDisplayName], "stale display name must not survive")
}

func TestGateRejectsAnonymousGrant(t *testing.T) {
	gate := NewGate(&stubAuthenticator{}, newMemoryStore(), quietLogger(), nil)
	assert.False(t, gate.Login(context.Background(), "a@b.com", "x"))
	assert.False(t, gate.Identity().Authenticated())
}

func TestGateLogoutIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	gate := NewGate(&stubAuthenticator{identity: student}, store, quietLogger(), nil)
	require.True(t, gate.Login(context.Background(), "a@b.com", "x"))

	gate.Logout()
	once := gate.Identity()
	onceStore := fmt.Sprint(store.values)
	gate.Logout()

	assert.Equal(t, once, gate.Identity())
	assert.Equal(t, onceStore, fmt.Sprint(store.values))
	assert.Equal(t, Anonymous, gate.Identity())
}

func TestGatePersistenceRoundTrip(t *testing.T) {
	store := newMemoryStore()
	named := Identity{UserID: "3", Role: rbac.RoleSubAdmin, DisplayName: "Pedro", SubjectID: "12345678-9"}
	gate := NewGate(&stubAuthenticator{identity: named}, store, quietLogger(), nil)
	require.True(t, gate.Login(context.Background(), "p@b.com", "x"))

	reloaded := NewGate(nil, store, quietLogger(), nil)
	reloaded.Initialize()
	assert.Equal(t, gate.Identity(), reloaded.Identity())
}

func TestGateInitializeMalformedStorage(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown role":  {KeyUserID: "7", KeyRole: "root"},
		"missing id":    {KeyRole: "admi"},
		"missing role":  {KeyUserID: "7", KeyDisplayName: "Ana"},
		"only metadata": {KeyDisplayName: "Ana", KeySubjectID: "1-1"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMemoryStore()
			for k, v := range values {
				store.values[k] = v
			}
			gate := NewGate(nil, store, quietLogger(), nil)
			gate.Initialize()
			assert.Equal(t, Anonymous, gate.Identity())
		})
	}
}

func TestGateInitializeDiscardsInconsistentRecord(t *testing.T) {
	store := &discardingStore{memoryStore: newMemoryStore()}
	store.values[KeyUserID] = "7"
	store.values[KeyRole] = "root"
	store.values["csrf_token"] = "abc"

	gate := NewGate(nil, store, quietLogger(), nil)
	gate.Initialize()
	assert.Equal(t, Anonymous, gate.Identity())
	assert.Equal(t, 1, store.discarded)
	assert.Empty(t, store.values)

	clean := &discardingStore{memoryStore: newMemoryStore()}
	clean.values[KeyDisplayName] = "Ana"
	NewGate(nil, clean, quietLogger(), nil).Initialize()
	assert.Zero(t, clean.discarded, "a record without identity is left alone")

	valid := &discardingStore{memoryStore: newMemoryStore()}
	valid.values[KeyUserID] = "7"
	valid.values[KeyRole] = "alumno"
	NewGate(nil, valid, quietLogger(), nil).Initialize()
	assert.Zero(t, valid.discarded)
}

func TestSessionStoreDiscardDestroysSession(t *testing.T) {
	sess := &shared.Session{ID: "abc"}
	store := NewSessionStore(sess)
	require.NoError(t, store.Set(KeyUserID, "7"))
	require.NoError(t, store.Set(KeyRole, "superuser"))

	gate := NewGate(nil, store, quietLogger(), nil)
	gate.Initialize()
	assert.Equal(t, Anonymous, gate.Identity())
	assert.Equal(t, "", sess.Get(KeyUserID))

	assert.ErrorIs(t, NewSessionStore(nil).Discard(), ErrStorageUnavailable)
}

func TestGateStorageUnavailable(t *testing.T) {
	observer := countingObserver{}
	gate := NewGate(&stubAuthenticator{identity: student}, brokenStore{}, quietLogger(), observer)
	gate.Initialize()
	assert.Equal(t, Anonymous, gate.Identity())

	assert.True(t, gate.Login(context.Background(), "a@b.com", "x"), "storage failure must not fail login")
	assert.Equal(t, student, gate.Identity())
	assert.Equal(t, 1, observer[OutcomeSuccess])

	gate.Logout()
	assert.Equal(t, Anonymous, gate.Identity())

	nilStore := NewGate(&stubAuthenticator{identity: student}, nil, quietLogger(), nil)
	nilStore.Initialize()
	assert.True(t, nilStore.Login(context.Background(), "a@b.com", "x"))
	nilStore.Logout()
	assert.Equal(t, Anonymous, nilStore.Identity())
}

func TestGateWithoutAuthenticator(t *testing.T) {
	observer := countingObserver{}
	gate := NewGate(nil, newMemoryStore(), quietLogger(), observer)
	assert.False(t, gate.Login(context.Background(), "a@b.com", "x"))
	assert.Equal(t, 1, observer[OutcomeUnavailable])
}

// The role is present exactly when the last login/logout that changed
// anything was a successful login.
func TestGateRoleTracksLastSuccessfulLogin(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	grants := []Identity{
		student,
		{UserID: "1", Role: rbac.RoleAdmin},
		{UserID: "2", Role: rbac.RoleSubAdmin, DisplayName: "Sub"},
	}
	failures := []error{
		fmt.Errorf("%w: status 401", ErrAuthenticationRejected),
		fmt.Errorf("%w: timeout", ErrTransportUnavailable),
		errors.New("unexpected"),
	}

	for run := 0; run < 50; run++ {
		store := newMemoryStore()
		auth := &stubAuthenticator{}
		gate := NewGate(auth, store, quietLogger(), nil)
		gate.Initialize()
		expected := Anonymous

		for step := 0; step < 20; step++ {
			switch rng.Intn(3) {
			case 0:
				auth.identity, auth.err = grants[rng.Intn(len(grants))], nil
				require.True(t, gate.Login(context.Background(), "x@b.com", "x"))
				expected = auth.identity
			case 1:
				auth.identity, auth.err = Identity{}, failures[rng.Intn(len(failures))]
				require.False(t, gate.Login(context.Background(), "x@b.com", "x"))
			default:
				gate.Logout()
				expected = Anonymous
			}
			require.Equal(t, expected, gate.Identity())
			require.Equal(t, expected.UserID == "", !gate.Identity().Role.Authenticated())

			reloaded := NewGate(nil, store, quietLogger(), nil)
			reloaded.Initialize()
			require.Equal(t, expected, reloaded.Identity())
		}
	}
}

func TestNilGateIdentityIsAnonymous(t *testing.T) {
	var gate *Gate
	assert.Equal(t, Anonymous, gate.Identity())
	assert.Equal(t, Anonymous, IdentityFromContext(context.Background()))
}
