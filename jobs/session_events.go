package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/educontrol/educontrol/internal/auth"
	jobmetrics "github.com/educontrol/educontrol/internal/jobs"
	"github.com/educontrol/educontrol/internal/shared"
)

// AuditRecorder persists audit rows.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SessionEventJob writes queued session events to the audit log.
type SessionEventJob struct {
	Recorder AuditRecorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewSessionEventJob initialises the session event handler.
func NewSessionEventJob(recorder AuditRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionEventJob {
	return &SessionEventJob{Recorder: recorder, Logger: logger, Metrics: metrics}
}

// Handle processes TaskSessionEvent tasks.
func (j *SessionEventJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Recorder == nil {
		return errors.New("session event: handler not configured")
	}
	var payload SessionEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("session event: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	entry, ok := auditEntry(payload)
	if !ok {
		j.logger().Warn("dropping session event", slog.String("kind", payload.Kind))
		return fmt.Errorf("session event: unknown kind %q: %w", payload.Kind, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskSessionEvent)
	defer func() { _ = tracker.End(err) }()

	if err = j.Recorder.Record(ctx, entry); err != nil {
		j.logger().Error("record session event", slog.String("kind", payload.Kind), slog.Any("error", err))
		return err
	}
	j.Metrics.CountSessionEvent(payload.Kind)
	return nil
}

func auditEntry(p SessionEventPayload) (shared.AuditLog, bool) {
	meta := map[string]any{}
	if p.Role != "" {
		meta["role"] = p.Role
	}
	if p.RemoteAddr != "" {
		meta["remote_addr"] = p.RemoteAddr
	}
	if p.UserAgent != "" {
		meta["user_agent"] = p.UserAgent
	}
	entry := shared.AuditLog{
		ActorID: p.UserID,
		Action:  "auth." + p.Kind,
		Entity:  "session",
		Meta:    meta,
		At:      p.OccurredAt,
	}
	switch p.Kind {
	case auth.EventLogin, auth.EventLogout:
		if p.UserID == "" {
			return shared.AuditLog{}, false
		}
		entry.EntityID = p.UserID
	case auth.EventLoginFailed:
		// Failed attempts have no user id; the credential identifies them.
		entry.EntityID = p.Credential
		if entry.EntityID == "" {
			entry.EntityID = "unknown"
		}
	default:
		return shared.AuditLog{}, false
	}
	return entry, true
}

func (j *SessionEventJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
