// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrQueueFull is returned by Execute when the pool's queue is at
	// capacity.
	ErrQueueFull = errors.New("executor: queue full")

	// ErrClosed is returned by Execute after Close.
	ErrClosed = errors.New("executor: closed")
)

// Executor accepts tasks for asynchronous execution.
type Executor interface {
	// Execute schedules task and returns without waiting for it. A
	// non-nil error means the task will never run.
	Execute(task func()) error
}

// PoolConfig holds the parameters for NewPool.
type PoolConfig struct {
	// Workers is the number of goroutines running tasks. Zero means 1.
	Workers int

	// QueueSize is the number of tasks that may wait for a worker.
	// Zero means unbuffered: a task is accepted only when a worker is
	// idle.
	QueueSize int

	// Logger receives task panics. Nil discards.
	Logger *slog.Logger
}

// Pool is a fixed set of worker goroutines draining a bounded queue.
type Pool struct {
	tasks  chan func()
	logger *slog.Logger

	// mu guards closed against concurrent Execute and Close so that
	// no send races the channel close.
	mu     sync.RWMutex
	closed bool

	workers sync.WaitGroup

	executed atomic.Uint64
	rejected atomic.Uint64
	panicked atomic.Uint64
}

// NewPool starts the workers. The caller must Close the pool.
func NewPool(config PoolConfig) (*Pool, error) {
	if config.Workers < 0 {
		return nil, fmt.Errorf("executor: Workers must not be negative, got %d", config.Workers)
	}
	if config.QueueSize < 0 {
		return nil, fmt.Errorf("executor: QueueSize must not be negative, got %d", config.QueueSize)
	}
	workers := config.Workers
	if workers == 0 {
		workers = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool := &Pool{
		tasks:  make(chan func(), config.QueueSize),
		logger: logger,
	}
	pool.workers.Add(workers)
	for range workers {
		go pool.work()
	}
	return pool, nil
}

// Execute implements Executor.
func (p *Pool) Execute(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.rejected.Add(1)
		return ErrClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		p.rejected.Add(1)
		return ErrQueueFull
	}
}

func (p *Pool) work() {
	defer p.workers.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.panicked.Add(1)
			p.logger.Error("executor task panicked", "panic", recovered)
		}
	}()
	task()
	p.executed.Add(1)
}

// Close stops accepting tasks and waits for queued tasks to finish or
// for ctx to expire, whichever comes first. Tasks still queued when
// ctx expires keep running in the background; Close does not cancel
// them. Calling Close more than once is safe.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		p.logger.Warn("executor close abandoned queued tasks", "queued", len(p.tasks))
		return fmt.Errorf("executor: draining queue: %w", ctx.Err())
	}
}

// Executed returns the number of tasks that ran to completion.
func (p *Pool) Executed() uint64 { return p.executed.Load() }

// Rejected returns the number of tasks refused by Execute.
func (p *Pool) Rejected() uint64 { return p.rejected.Load() }

// Panicked returns the number of tasks that panicked.
func (p *Pool) Panicked() uint64 { return p.panicked.Load() }
