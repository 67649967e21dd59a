// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"sync"
)

// MemorySink keeps envelopes in memory and can be told to fail.
type MemorySink struct {
	mu        sync.Mutex
	envelopes []*Envelope
	retain    int
	written   uint64
	failure   error
	closed    bool
	received  chan *Envelope
}

// NewMemorySink returns a sink whose Received channel buffers up to
// notify envelopes; when the buffer is full notifications are dropped
// but envelopes are still recorded.
func NewMemorySink(notify int) *MemorySink {
	return &MemorySink{received: make(chan *Envelope, notify)}
}

// NewBoundedMemorySink is NewMemorySink keeping only the most recent
// retain envelopes. Older envelopes are counted by Written and dropped.
func NewBoundedMemorySink(notify, retain int) *MemorySink {
	if retain <= 0 {
		panic("channel: non-positive retain for NewBoundedMemorySink")
	}
	sink := NewMemorySink(notify)
	sink.retain = retain
	return sink
}

// Write implements Sink.
func (m *MemorySink) Write(_ context.Context, envelope *Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.failure != nil {
		return m.failure
	}
	m.envelopes = append(m.envelopes, envelope)
	m.written++
	// Storage holds fewer than 2*retain envelopes.
	if m.retain > 0 && len(m.envelopes) >= 2*m.retain {
		kept := copy(m.envelopes, m.envelopes[len(m.envelopes)-m.retain:])
		clear(m.envelopes[kept:])
		m.envelopes = m.envelopes[:kept]
	}
	select {
	case m.received <- envelope:
	default:
	}
	return nil
}

// Close implements Sink.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Fail makes every later Write return err. Nil clears the failure.
func (m *MemorySink) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// Envelopes returns a copy of the retained envelopes, oldest first.
func (m *MemorySink) Envelopes() []*Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Envelope(nil), m.retained()...)
}

// Len returns the number of retained envelopes.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.retained())
}

// Written returns the number of envelopes accepted, retained or not.
func (m *MemorySink) Written() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written
}

// retained must be called with m.mu held.
func (m *MemorySink) retained() []*Envelope {
	if m.retain > 0 && len(m.envelopes) > m.retain {
		return m.envelopes[len(m.envelopes)-m.retain:]
	}
	return m.envelopes
}

// Received delivers envelopes as they are written.
func (m *MemorySink) Received() <-chan *Envelope {
	return m.received
}
