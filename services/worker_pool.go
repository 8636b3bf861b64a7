package services

import (
	"context"
	"sync"
)

// WorkerPool runs submitted tasks on a fixed number of goroutines.
//
// The pool is built once at startup and lives as long as the process.
// Close exists for tests and one-shot tools; it stops the workers after
// their current task and abandons anything still queued.
type WorkerPool struct {
	tasks   chan func()
	quit    chan struct{}
	workers int
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWorkerPool starts workers goroutines fed by a queue of queueSize tasks.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &WorkerPool{
		tasks:   make(chan func(), queueSize),
		quit:    make(chan struct{}),
		workers: workers,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *WorkerPool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit enqueues task, waiting for queue space until ctx is done.
func (p *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Workers returns the fixed concurrency of the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Close stops the workers and waits for running tasks to return.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
