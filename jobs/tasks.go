package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionEvent records a login, failed login or logout.
	TaskSessionEvent = "auth:session_event"
	// TaskAuditPrune removes audit rows older than the retention window.
	TaskAuditPrune = "audit:prune"
)

// SessionEventPayload is the queued form of an auth.SessionEvent.
type SessionEventPayload struct {
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id,omitempty"`
	Role       string    `json:"role,omitempty"`
	Credential string    `json:"credential,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSessionEventTask constructs an Asynq task.
func NewSessionEventTask(payload SessionEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionEvent, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// AuditPrunePayload configures one retention run.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditPruneTask constructs an Asynq task.
func NewAuditPruneTask(retentionDays int) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPrunePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
