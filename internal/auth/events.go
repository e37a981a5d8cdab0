package auth

import (
	"context"
	"time"
)

// Session event kinds.
const (
	EventLogin       = "login"
	EventLoginFailed = "login_failed"
	EventLogout      = "logout"
)

// SessionEvent describes a change of a browser session's identity.
type SessionEvent struct {
	Kind       string
	UserID     string
	Role       string
	Credential string
	RemoteAddr string
	UserAgent  string
	OccurredAt time.Time
}

// EventPublisher hands session events to the audit pipeline.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event SessionEvent) error
}
