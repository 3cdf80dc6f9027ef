package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"gigledger/internal/mq"
	"gigledger/internal/repository"
	"gigledger/internal/util"
)

// JobAuditHandler appends every ledger event to the job_events audit table.
// It consumes a wildcard binding, so one queue covers the full event stream.
type JobAuditHandler struct {
	repo    *repository.JobEventRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewJobAuditHandler(repo *repository.JobEventRepository, deduper *util.Deduper, logger *zap.Logger) *JobAuditHandler {
	return &JobAuditHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *JobAuditHandler) Handle(ctx context.Context, evt mq.Event) error {
	jobID := extractJobID(evt.Data)

	if !h.deduper.AcquireOnce(ctx, "audit", evt.Type, jobID) {
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_type", evt.Type),
			zap.Uint64("job_id", jobID),
		)
		return nil
	}

	if err := h.repo.Insert(ctx, evt.Type, jobID, evt.Data); err != nil {
		h.logger.Error("Failed to insert audit row",
			zap.String("event_type", evt.Type),
			zap.Uint64("job_id", jobID),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("Event audited",
		zap.String("event_type", evt.Type),
		zap.Uint64("job_id", jobID),
	)
	return nil
}

// extractJobID pulls the job id shared by all job.* payloads; registry and
// ledger events without one audit under id 0.
func extractJobID(data json.RawMessage) uint64 {
	var probe struct {
		JobID uint64 `json:"job_id"`
	}
	_ = json.Unmarshal(data, &probe)
	return probe.JobID
}
