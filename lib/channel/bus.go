// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/simsensor/lib/clock"
	"github.com/bureau-foundation/simsensor/lib/codec"
)

var (
	// ErrClosed is returned by Register and Publish after Close.
	ErrClosed = errors.New("channel: bus closed")

	// ErrForeignPublisher is returned when Publish receives a handle
	// registered on a different bus.
	ErrForeignPublisher = errors.New("channel: publisher belongs to another bus")
)

// Sink receives every published envelope.
type Sink interface {
	Write(ctx context.Context, envelope *Envelope) error
	Close() error
}

// Publisher is the handle returned by Register.
type Publisher struct {
	bus      *Bus
	topic    string
	typeName string
	sequence atomic.Uint64
}

// Topic returns the registered topic.
func (p *Publisher) Topic() string { return p.topic }

// Type returns the registered message type name.
func (p *Publisher) Type() string { return p.typeName }

// Bus routes published messages to a Sink.
type Bus struct {
	sink  Sink
	clock clock.Clock

	mu     sync.Mutex
	topics map[string]*Publisher
	closed bool
}

// NewBus returns a bus writing to sink. A nil clock means clock.Real().
func NewBus(sink Sink, clk clock.Clock) *Bus {
	if clk == nil {
		clk = clock.Real()
	}
	return &Bus{
		sink:   sink,
		clock:  clk,
		topics: make(map[string]*Publisher),
	}
}

// Register binds typeName to topic and returns the publisher handle.
// Registering the same pair again returns the existing handle;
// registering a topic under a second type is an error.
func (b *Bus) Register(topic, typeName string) (*Publisher, error) {
	if topic == "" {
		return nil, fmt.Errorf("channel: registering %q: empty topic", typeName)
	}
	if typeName == "" {
		return nil, fmt.Errorf("channel: registering topic %q: empty type name", topic)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if existing, ok := b.topics[topic]; ok {
		if existing.typeName != typeName {
			return nil, fmt.Errorf("channel: topic %q already registered with type %s, cannot register %s",
				topic, existing.typeName, typeName)
		}
		return existing, nil
	}
	publisher := &Publisher{bus: b, topic: topic, typeName: typeName}
	b.topics[topic] = publisher
	return publisher, nil
}

// Publish encodes message and writes it to the sink under publisher's
// topic.
func (b *Bus) Publish(ctx context.Context, publisher *Publisher, message any) error {
	if publisher == nil || publisher.bus != b {
		return ErrForeignPublisher
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	payload, err := codec.Marshal(message)
	if err != nil {
		return fmt.Errorf("channel: encoding %s for %q: %w", publisher.typeName, publisher.topic, err)
	}
	envelope := &Envelope{
		Topic:     publisher.topic,
		Type:      publisher.typeName,
		Sequence:  publisher.sequence.Add(1) - 1,
		Timestamp: b.clock.Now().UnixNano(),
		Payload:   payload,
	}
	if err := b.sink.Write(ctx, envelope); err != nil {
		return fmt.Errorf("channel: publishing on %q: %w", publisher.topic, err)
	}
	return nil
}

// Topics returns the number of registered topics.
func (b *Bus) Topics() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics)
}

// Close rejects further publishes and closes the sink. Publishes
// already inside the sink complete first only if the sink serializes
// Close against Write, which every sink in this package does.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.sink.Close()
}
