package auth

import "github.com/educontrol/educontrol/internal/shared"

// Keys under which an identity is persisted.
const (
	KeyUserID      = "userId"
	KeyRole        = "role"
	KeyDisplayName = "displayName"
	KeySubjectID   = "subjectId"
)

var identityKeys = []string{KeyUserID, KeyRole, KeyDisplayName, KeySubjectID}

// Store is flat string key/value storage that survives page reloads. A
// missing key reads as the empty string.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Discarder is implemented by stores that can drop their whole record,
// including values this package does not own.
type Discarder interface {
	Discard() error
}

// SessionStore persists identity fields in the cookie session.
type SessionStore struct {
	sess *shared.Session
}

// NewSessionStore wraps sess. A nil session yields a store whose every
// operation fails with ErrStorageUnavailable.
func NewSessionStore(sess *shared.Session) *SessionStore {
	return &SessionStore{sess: sess}
}

// Get implements Store.
func (s *SessionStore) Get(key string) (string, error) {
	if s == nil || s.sess == nil {
		return "", ErrStorageUnavailable
	}
	return s.sess.Get(key), nil
}

// Set implements Store.
func (s *SessionStore) Set(key, value string) error {
	if s == nil || s.sess == nil {
		return ErrStorageUnavailable
	}
	s.sess.Set(key, value)
	return nil
}

// Delete implements Store.
func (s *SessionStore) Delete(key string) error {
	if s == nil || s.sess == nil {
		return ErrStorageUnavailable
	}
	s.sess.Delete(key)
	return nil
}

// Discard destroys the underlying session.
func (s *SessionStore) Discard() error {
	if s == nil || s.sess == nil {
		return ErrStorageUnavailable
	}
	s.sess.Destroy()
	return nil
}

var (
	_ Store     = (*SessionStore)(nil)
	_ Discarder = (*SessionStore)(nil)
)
