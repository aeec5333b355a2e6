package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/middleware"
)

// QueueScheduler drains the outbox on a fixed interval.
type QueueScheduler struct {
	processor portssvc.OutboxProcessorSvc
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewQueueScheduler creates a scheduler. A nil logger uses slog.Default.
func NewQueueScheduler(processor portssvc.OutboxProcessorSvc, interval time.Duration, batchSize int, logger *slog.Logger) *QueueScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueScheduler{
		processor: processor,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With(slog.String("component", "queue_scheduler")),
	}
}

// Run blocks until ctx is cancelled, running one sync per tick.
// A non-positive interval disables the scheduler and Run returns immediately.
func (q *QueueScheduler) Run(ctx context.Context) {
	if q.interval <= 0 {
		q.logger.Info("Queue scheduler disabled")
		return
	}

	q.logger.Info("Queue scheduler started", slog.Duration("interval", q.interval))
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Queue scheduler stopped")
			return
		case <-ticker.C:
			q.tick(ctx)
		}
	}
}

func (q *QueueScheduler) tick(ctx context.Context) {
	ctx = middleware.WithLogger(ctx, q.logger)
	if _, err := q.processor.RunQueueSync(ctx, q.batchSize, ""); err != nil && ctx.Err() == nil {
		q.logger.Error("Queue sync run failed", slog.String("error", err.Error()))
	}
}
