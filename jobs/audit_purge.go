package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gewog/AccessGuard/internal/audit"
)

// AuditPurgeJob trims decision-log entries past the retention window.
type AuditPurgeJob struct {
	Service *audit.Service
	Logger  *slog.Logger
	// DefaultRetention applies when the payload carries no window.
	DefaultRetention time.Duration
}

// NewAuditPurgeJob initialises the purge handler.
func NewAuditPurgeJob(service *audit.Service, logger *slog.Logger, retention time.Duration) *AuditPurgeJob {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &AuditPurgeJob{Service: service, Logger: logger, DefaultRetention: retention}
}

// Handle executes the purge.
func (j *AuditPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("audit purge: handler not configured")
	}
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := j.DefaultRetention
	if payload.RetentionHours > 0 {
		retention = time.Duration(payload.RetentionHours) * time.Hour
	}

	deleted, err := j.Service.Purge(ctx, retention)
	if err != nil {
		j.log().Error("audit purge", slog.Any("error", err))
		return err
	}
	j.log().Info("audit purge complete",
		slog.Int64("deleted", deleted),
		slog.Duration("retention", retention))
	return nil
}

func (j *AuditPurgeJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
