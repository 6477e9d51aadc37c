package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/scanera/product-service/internal/importer"
)

func TestSchedulerRunsPeriodically(t *testing.T) {
	var calls atomic.Int32
	sync := func(ctx context.Context) (importer.Summary, error) {
		calls.Add(1)
		return importer.Summary{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(10*time.Millisecond, sync, zerolog.Nop())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestSchedulerDisabledWithZeroInterval(t *testing.T) {
	s := New(0, func(ctx context.Context) (importer.Summary, error) {
		t.Fatal("sync must not run when scheduler is disabled")
		return importer.Summary{}, nil
	}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler should return immediately")
	}
}
