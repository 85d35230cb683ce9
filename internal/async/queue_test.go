package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/image2text/constants"
)

func TestExtractionQueueIsSequentialByDefault(t *testing.T) {
	var (
		mu       sync.Mutex
		order    []string
		inFlight atomic.Int32
		maxSeen  atomic.Int32
	)
	handle := func(_ context.Context, job Job) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		order = append(order, job.Path)
		mu.Unlock()
		if job.Path == "b.png" {
			return errors.New("boom")
		}
		return nil
	}

	q := NewExtractionQueue(handle, nil)
	for _, p := range []string{"a.png", "b.png", "c.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, Mode: constants.ModePrinted}))
	}
	require.NoError(t, q.Shutdown(context.Background()))

	assert.Equal(t, []string{"a.png", "b.png", "c.pdf"}, order, "a failed job does not stop the queue")
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestExtractionQueueAfterShutdown(t *testing.T) {
	var calls atomic.Int32
	q := NewExtractionQueue(func(context.Context, Job) error { calls.Add(1); return nil }, nil, WithWorkers(2), WithQueueSize(1))
	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "late.png"}))
	assert.Zero(t, calls.Load())
}

func TestExtractionQueueTimeout(t *testing.T) {
	got := make(chan error, 1)
	q := NewExtractionQueue(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	}, nil, WithProcessTimeout(20*time.Millisecond))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "slow.pdf"}))
	require.NoError(t, q.Shutdown(context.Background()))

	assert.ErrorIs(t, <-got, context.DeadlineExceeded)
}

func TestExtractionQueueShutdownDeadlineWaitsForWorkers(t *testing.T) {
	var (
		started  = make(chan struct{})
		finished atomic.Bool
		calls    atomic.Int32
	)
	q := NewExtractionQueue(func(ctx context.Context, _ Job) error {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	}, nil, WithProcessTimeout(time.Hour))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "stuck.png"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "queued.png"}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := q.Shutdown(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, finished.Load(), "handler still running after Shutdown returned")
	assert.Equal(t, int32(1), calls.Load(), "queued job runs after the deadline")
}
