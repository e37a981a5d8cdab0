package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/educontrol/educontrol/internal/jobs"
)

// DefaultAuditRetentionDays applies when a prune task carries no window.
const DefaultAuditRetentionDays = 180

// AuditPruner deletes audit rows older than a cutoff.
type AuditPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPruneJob enforces the audit log retention window.
type AuditPruneJob struct {
	Pruner  AuditPruner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAuditPruneJob initialises the retention handler.
func NewAuditPruneJob(pruner AuditPruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPruneJob {
	return &AuditPruneJob{
		Pruner:  pruner,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskAuditPrune tasks.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Pruner == nil {
		return errors.New("audit prune: handler not configured")
	}
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("audit prune: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = DefaultAuditRetentionDays
	}

	tracker := j.Metrics.Track(TaskAuditPrune)
	defer func() { _ = tracker.End(err) }()

	cutoff := j.now().AddDate(0, 0, -payload.RetentionDays)
	removed, err := j.Pruner.Prune(ctx, cutoff)
	if err != nil {
		j.logger().Error("audit prune failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddPruned(removed)
	j.logger().Info("audit prune finished",
		slog.Int("retention_days", payload.RetentionDays),
		slog.Int64("removed", removed),
	)
	return nil
}

func (j *AuditPruneJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}

func (j *AuditPruneJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
