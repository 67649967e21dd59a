// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/simsensor/lib/testutil"
)

func newPool(t *testing.T, config PoolConfig) *Pool {
	t.Helper()
	pool, err := NewPool(config)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close(context.Background()) })
	return pool
}

func TestExecuteRunsTask(t *testing.T) {
	pool := newPool(t, PoolConfig{Workers: 2, QueueSize: 4})
	done := make(chan struct{})
	if err := pool.Execute(func() { close(done) }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	testutil.RequireClosed(t, done, 5*time.Second, "waiting for task")
}

func TestSingleWorkerPreservesOrder(t *testing.T) {
	pool := newPool(t, PoolConfig{Workers: 1, QueueSize: 100})

	var mu sync.Mutex
	var order []int
	for i := 0; i < 100; i++ {
		if err := pool.Execute(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Execute %d: %v", i, err)
		}
	}
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(order) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("task %d ran at position %d", got, i)
		}
	}
	if pool.Executed() != 100 {
		t.Errorf("Executed() = %d, want 100", pool.Executed())
	}
}

func TestExecuteRejectsWhenFull(t *testing.T) {
	pool := newPool(t, PoolConfig{Workers: 1, QueueSize: 1})

	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Execute(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Execute blocker: %v", err)
	}
	testutil.RequireClosed(t, started, 5*time.Second, "waiting for blocker to start")

	if err := pool.Execute(func() {}); err != nil {
		t.Fatalf("Execute queued: %v", err)
	}
	if err := pool.Execute(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Execute on full queue = %v, want ErrQueueFull", err)
	}
	if pool.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", pool.Rejected())
	}
	close(release)
}

func TestExecuteAfterClose(t *testing.T) {
	pool := newPool(t, PoolConfig{})
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pool.Execute(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Execute after Close = %v, want ErrClosed", err)
	}
	if err := pool.Close(context.Background()); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestCloseHonorsContext(t *testing.T) {
	pool, err := NewPool(PoolConfig{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	if err := pool.Execute(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	testutil.RequireClosed(t, started, 5*time.Second, "waiting for task to start")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pool.Close(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Close with cancelled context = %v, want context.Canceled", err)
	}
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := newPool(t, PoolConfig{Workers: 1, QueueSize: 2})
	if err := pool.Execute(func() { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	if err := pool.Execute(func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	testutil.RequireClosed(t, done, 5*time.Second, "waiting for task after panic")
	if pool.Panicked() != 1 {
		t.Errorf("Panicked() = %d, want 1", pool.Panicked())
	}
}

func TestNewPoolValidates(t *testing.T) {
	if _, err := NewPool(PoolConfig{Workers: -1}); err == nil {
		t.Error("expected error for negative Workers")
	}
	if _, err := NewPool(PoolConfig{QueueSize: -1}); err == nil {
		t.Error("expected error for negative QueueSize")
	}
}
