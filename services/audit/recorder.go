// Package audit persists the decision trail. Recording is best-effort
// by design: a failed write never changes the HTTP-visible outcome of
// the request it describes.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/repositories"
)

// Metrics is the subset of instrumentation the recorder reports to.
type Metrics interface {
	ObserveAuditWriteFailure()
}

// Recorder writes audit records and serves the audit listing.
type Recorder struct {
	repo    repositories.AuditRepository
	metrics Metrics
	timeout time.Duration
	logger  *zap.Logger
}

// NewRecorder creates a new recorder. The timeout bounds each write
// independently of the caller's deadline.
func NewRecorder(repo repositories.AuditRepository, metrics Metrics, timeout time.Duration, logger *zap.Logger) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		repo:    repo,
		metrics: metrics,
		timeout: timeout,
		logger:  logger,
	}
}

// Record persists one audit record. The write runs on a detached
// context so caller cancellation cannot suppress the trail, and any
// failure is logged and swallowed. Inserts are idempotent per record
// ID at the repository layer.
func (r *Recorder) Record(ctx context.Context, record *models.AuditRecord) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.repo.Insert(writeCtx, record); err != nil {
		if r.metrics != nil {
			r.metrics.ObserveAuditWriteFailure()
		}
		r.logger.Error("failed to persist audit record",
			zap.String("log_id", record.ID),
			zap.String("status", string(record.DecisionStatus)),
			zap.Error(err))
		return
	}

	r.logger.Debug("audit record persisted",
		zap.String("log_id", record.ID),
		zap.String("status", string(record.DecisionStatus)),
		zap.Int64("duration_ms", record.DurationMs))
}

// List returns the most recent records, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]*models.AuditRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.repo.List(ctx, limit)
}
