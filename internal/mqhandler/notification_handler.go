package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"gigledger/internal/mq"
	"gigledger/internal/repository"
	"gigledger/internal/util"
)

// NotificationHandler turns assignment and payout events into in-app
// notifications for the freelancer.
type NotificationHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewNotificationHandler(repo *repository.NotificationRepository, deduper *util.Deduper, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *NotificationHandler) HandleJobAssigned(ctx context.Context, data json.RawMessage) error {
	var p mq.JobAssignedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Error("Failed to unmarshal job assigned payload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "notify", mq.EventJobAssigned, p.JobID) {
		return nil
	}

	n := &repository.Notification{
		Recipient: p.Freelancer,
		Type:      "job_assigned",
		Content:   fmt.Sprintf("You were assigned to job #%d", p.JobID),
	}
	return h.insert(ctx, n, p.JobID)
}

func (h *NotificationHandler) HandlePaymentReleased(ctx context.Context, data json.RawMessage) error {
	var p mq.PaymentReleasedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Error("Failed to unmarshal payment released payload", zap.Error(err))
		return err
	}

	// A job can release several payments; dedup on the released amount too.
	if !h.deduper.AcquireOnce(ctx, "notify-pay-"+fmt.Sprint(p.Amount), mq.EventPaymentReleased, p.JobID) {
		return nil
	}

	content := fmt.Sprintf("Payment of %d released for job #%d", p.Amount, p.JobID)
	if p.Completed {
		content += " (job complete)"
	}
	n := &repository.Notification{
		Recipient: p.Freelancer,
		Type:      "payment_released",
		Content:   content,
	}
	return h.insert(ctx, n, p.JobID)
}

func (h *NotificationHandler) insert(ctx context.Context, n *repository.Notification, jobID uint64) error {
	if err := h.repo.Insert(ctx, n); err != nil {
		h.logger.Error("Failed to insert notification",
			zap.Uint64("job_id", jobID),
			zap.String("recipient", string(n.Recipient)),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("Notification created",
		zap.Uint64("job_id", jobID),
		zap.String("type", n.Type),
	)
	return nil
}
