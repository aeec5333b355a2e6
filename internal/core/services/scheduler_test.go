package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/core/services"
	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	calls atomic.Int32
	limit atomic.Int32
}

func (p *countingProcessor) RunQueueSync(_ context.Context, limit int, _ domain.SourceType) (*domain.SyncResult, error) {
	p.calls.Add(1)
	p.limit.Store(int32(limit))
	return &domain.SyncResult{}, nil
}

func TestQueueScheduler_RunsUntilCancelled(t *testing.T) {
	processor := &countingProcessor{}
	scheduler := services.NewQueueScheduler(processor, 5*time.Millisecond, 7, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return processor.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.EqualValues(t, 7, processor.limit.Load())
}

func TestQueueScheduler_DisabledReturnsImmediately(t *testing.T) {
	processor := &countingProcessor{}
	scheduler := services.NewQueueScheduler(processor, 0, 10, nil)

	scheduler.Run(context.Background())

	assert.Zero(t, processor.calls.Load())
}
