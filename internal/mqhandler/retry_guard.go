package mqhandler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gigledger/internal/mq"
	"gigledger/internal/util"
)

// WithRetryGuard bounds redelivery loops: non-retryable failures and
// exhausted retry budgets dead-letter instead of requeueing forever.
func WithRetryGuard(h mq.MessageHandler, counter *util.RetryCounter, maxAttempts int64, logger *zap.Logger) mq.MessageHandler {
	return func(ctx context.Context, evt mq.Event) error {
		key := fmt.Sprintf("retry:%s:%d", evt.Type, extractJobID(evt.Data))

		err := h(ctx, evt)
		if err == nil {
			counter.Reset(ctx, key)
			return nil
		}

		retryable, label := util.IsRetryableError(err)
		if !retryable {
			logger.Warn("Dead-lettering non-retryable event",
				zap.String("event_type", evt.Type),
				zap.String("reason", label),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", mq.ErrDiscard, err)
		}

		count, cntErr := counter.IncrementAndGet(ctx, key)
		if cntErr == nil && count >= maxAttempts {
			logger.Warn("Dead-lettering event after retry budget",
				zap.String("event_type", evt.Type),
				zap.Int64("attempts", count),
				zap.Error(err),
			)
			counter.Reset(ctx, key)
			return fmt.Errorf("%w: %v", mq.ErrDiscard, err)
		}

		return err
	}
}
