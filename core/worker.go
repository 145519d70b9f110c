package core

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolStopped is returned when submitting to a stopped pool.
var ErrPoolStopped = errors.New("worker pool is stopped")

// WorkerPool is a fixed-size pool for parallel task processing. Batch
// analysis fans out across it; shared state touched by tasks must carry its
// own synchronization.
type WorkerPool struct {
	workers int
	taskCh  chan func()
	wg      sync.WaitGroup
	logger  *zap.SugaredLogger
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	running bool
}

// NewWorkerPool creates a pool with the given worker count and queue size.
// Workers do not start until Start is called.
func NewWorkerPool(ctx context.Context, workers, queueSize int, logger *zap.SugaredLogger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workers: workers,
		taskCh:  make(chan func(), queueSize),
		logger:  logger,
		ctx:     poolCtx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines. Calling Start on a running pool is
// a no-op.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.running {
		return
	}
	wp.running = true

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	wp.logger.Debugf("Worker pool started with %d workers", wp.workers)
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case task, ok := <-wp.taskCh:
			if !ok {
				return
			}
			task()
		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues a task, blocking while the queue is full. It returns
// ErrPoolStopped once the pool context is cancelled.
func (wp *WorkerPool) Submit(task func()) error {
	select {
	case wp.taskCh <- task:
		return nil
	case <-wp.ctx.Done():
		return ErrPoolStopped
	}
}

// Stop cancels the workers and waits for in-flight tasks to finish. Safe to
// call multiple times.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if !wp.running {
		wp.mu.Unlock()
		return
	}
	wp.running = false
	wp.mu.Unlock()

	wp.cancel()
	wp.wg.Wait()
}
