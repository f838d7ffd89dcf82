package plagiarism

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type jobFunc func(ctx context.Context) error

func (f jobFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	defer pool.Close()

	if pool.Size() != 3 {
		t.Fatalf("expected 3 workers, got %d", pool.Size())
	}

	var wg sync.WaitGroup
	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := pool.Submit(jobFunc(func(context.Context) error {
			defer wg.Done()
			ran.Add(1)
			if ran.Load()%5 == 0 {
				return errors.New("logged and ignored")
			}
			return nil
		}))
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()

	if ran.Load() != 20 {
		t.Fatalf("expected 20 jobs to run, got %d", ran.Load())
	}
}

func TestWorkerPoolSizesFromCPU(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	defer pool.Close()
	if pool.Size() < 1 {
		t.Fatalf("expected at least one worker, got %d", pool.Size())
	}
}

func TestWorkerPoolRejectsAfterClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()
	pool.Close()

	err := pool.Submit(jobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestWorkerPoolCancelsJobsOnClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)

	started := make(chan struct{})
	var sawCancel atomic.Bool
	if err := pool.Submit(jobFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	})); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	<-started
	pool.Close()
	if !sawCancel.Load() {
		t.Fatal("expected running job to observe cancellation")
	}
}

func TestWorkerPoolSurvivesPanickingJob(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	defer pool.Close()

	done := make(chan struct{})
	if err := pool.Submit(jobFunc(func(context.Context) error { panic("bad window") })); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := pool.Submit(jobFunc(func(context.Context) error {
		close(done)
		return nil
	})); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	<-done
	if pool.Pending() != 0 {
		t.Fatalf("expected an empty queue, got %d", pool.Pending())
	}
}
