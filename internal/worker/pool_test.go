package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	pool.Start()

	var running, peak, done int32
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		err := pool.Submit(Job{
			ID: fmt.Sprintf("job-%d", i),
			Handler: func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				atomic.AddInt32(&done, 1)
				return nil
			},
			Result: results,
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	pool.Stop()

	if done != 10 {
		t.Errorf("ran %d jobs, want 10", done)
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", peak)
	}
	close(results)
	for err := range results {
		if err != nil {
			t.Errorf("job error = %v", err)
		}
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Start()
	pool.Stop()

	if err := pool.Submit(Job{ID: "late", Handler: func(context.Context) error { return nil }}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Submit() error = %v, want ErrPoolStopped", err)
	}
}

func TestWorkerPool_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	results := make(chan error, 2)

	if err := pool.Submit(Job{
		ID: "blocking",
		Handler: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
		Result: results,
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-started

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Queued behind the blocking job; it must not run after cancellation.
		_ = pool.Submit(Job{
			ID:      "queued",
			Handler: func(context.Context) error { return errors.New("should not run") },
			Result:  results,
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()
	pool.Stop()
	close(results)

	for err := range results {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("job result = %v, want context.Canceled", err)
		}
	}
}
