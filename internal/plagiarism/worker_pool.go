package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned by Submit after Close
var ErrPoolClosed = errors.New("worker pool closed")

// Job is a unit of work run by a WorkerPool
type Job interface {
	Execute(ctx context.Context) error
}

// WorkerPool runs comparison jobs on a fixed set of goroutines fed by a
// bounded queue. Submit blocks while the queue is full.
type WorkerPool struct {
	size   int
	queue  chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts size workers; size <= 0 derives it from the CPU count
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		size = defaultWorkerCount()
	}
	poolCtx, cancel := context.WithCancel(ctx)

	p := &WorkerPool{
		size:   size,
		queue:  make(chan Job, size*2),
		ctx:    poolCtx,
		cancel: cancel,
	}
	p.wg.Add(size)
	for id := range size {
		go p.run(id)
	}

	log.Info().Int("workers", size).Int("queue", cap(p.queue)).Msg("Worker pool started")
	return p
}

// defaultWorkerCount leaves a quarter of the CPUs, at least one, to the rest
// of the process
func defaultWorkerCount() int {
	cpus := runtime.NumCPU()
	return max(1, cpus-max(1, cpus/4))
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			if err := p.execute(job); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("Comparison job failed")
			}
		}
	}
}

// execute runs job, reporting a panic as an error
func (p *WorkerPool) execute(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Execute(p.ctx)
}

// Submit queues job, blocking while the queue is full
func (p *WorkerPool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.queue <- job:
		return nil
	}
}

// Close cancels the pool context and waits for the workers to exit
func (p *WorkerPool) Close() {
	p.cancel()

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return p.size
}

// Pending returns the number of queued jobs not yet picked up
func (p *WorkerPool) Pending() int {
	return len(p.queue)
}
