// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jointsensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bureau-foundation/simsensor/lib/channel"
	"github.com/bureau-foundation/simsensor/lib/config"
	"github.com/bureau-foundation/simsensor/lib/executor"
	"github.com/bureau-foundation/simsensor/lib/rate"
	"github.com/bureau-foundation/simsensor/lib/schema/sensor"
	"github.com/bureau-foundation/simsensor/lib/sim"
)

// ErrAlreadyInitialized is returned by a second call to Initialize.
var ErrAlreadyInitialized = errors.New("jointsensor: publisher already initialized")

// Bus is the subset of [channel.Bus] the publisher needs.
type Bus interface {
	Register(topic, typeName string) (*channel.Publisher, error)
	Publish(ctx context.Context, publisher *channel.Publisher, message any) error
}

// Config holds the collaborators of a Publisher.
type Config struct {
	// Model resolves sensor names during Initialize.
	Model sim.Model

	// Data is read on every publish tick. It must stay valid for the
	// publisher's lifetime.
	Data sim.Data

	Bus      Bus
	Executor executor.Executor

	// MaxRate is the simulator tick rate in Hz. Zero means
	// rate.MaxTickRate.
	MaxRate uint32

	Logger *slog.Logger
}

// Options configures what a Publisher publishes.
type Options struct {
	Topic     string
	Frequency uint32
	Joints    []config.Joint
}

// OptionsFromConfig converts a publisher section of the config file.
func OptionsFromConfig(publisher config.PublisherConfig) Options {
	return Options{
		Topic:     publisher.Topic,
		Frequency: publisher.Frequency,
		Joints:    publisher.Joints,
	}
}

// JointSample is one joint's sensor values at a publish tick.
type JointSample struct {
	Position float64
	Velocity float64
}

// Stats are the publisher's running counters.
type Stats struct {
	// Ticks counts calls to Tick after a successful Initialize.
	Ticks uint64
	// PublishTicks counts ticks the schedule marked due.
	PublishTicks uint64
	// Published counts messages the bus accepted.
	Published uint64
	// Failures counts publish errors returned by the bus.
	Failures uint64
	// Rejected counts snapshots the executor refused.
	Rejected uint64
}

// Publisher samples bound joint sensors on scheduled ticks and
// publishes them. Tick must be called from a single goroutine.
type Publisher struct {
	model    sim.Model
	data     sim.Data
	bus      Bus
	executor executor.Executor
	maxRate  uint32
	logger   *slog.Logger

	// Set by Initialize; read-only afterwards.
	options  Options
	bindings []Binding
	schedule *rate.Schedule
	handle   *channel.Publisher
	ready    bool

	ticks        atomic.Uint64
	publishTicks atomic.Uint64
	published    atomic.Uint64
	failures     atomic.Uint64
	rejected     atomic.Uint64
}

// New returns an uninitialized publisher. Tick does nothing until
// Initialize succeeds.
func New(config Config) *Publisher {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxRate := config.MaxRate
	if maxRate == 0 {
		maxRate = rate.MaxTickRate
	}
	return &Publisher{
		model:    config.Model,
		data:     config.Data,
		bus:      config.Bus,
		executor: config.Executor,
		maxRate:  maxRate,
		logger:   logger,
	}
}

// Initialize validates the frequency against the tick rate, resolves
// every sensor binding, and registers the message type on the bus, in
// that order. Any failure leaves the publisher uninitialized.
func (p *Publisher) Initialize(options Options) error {
	if p.ready {
		return ErrAlreadyInitialized
	}
	if p.model == nil || p.data == nil || p.bus == nil || p.executor == nil {
		return errors.New("jointsensor: model, data, bus and executor are required")
	}

	schedule, err := rate.NewSchedule(options.Frequency, p.maxRate)
	if err != nil {
		return fmt.Errorf("topic %q: %w", options.Topic, err)
	}
	bindings, err := ResolveBindings(p.model, options.Joints)
	if err != nil {
		return fmt.Errorf("topic %q: %w", options.Topic, err)
	}
	handle, err := p.bus.Register(options.Topic, sensor.JointStateType)
	if err != nil {
		return fmt.Errorf("registering %s on topic %q: %w", sensor.JointStateType, options.Topic, err)
	}

	p.options = Options{
		Topic:     options.Topic,
		Frequency: options.Frequency,
		Joints:    append([]config.Joint(nil), options.Joints...),
	}
	p.bindings = bindings
	p.schedule = schedule
	p.handle = handle
	p.ready = true

	p.logger.Info("joint sensor publisher initialized",
		"topic", options.Topic,
		"frequency", options.Frequency,
		"interval_ticks", schedule.BaseInterval(),
		"exact", schedule.Exact(),
		"joints", len(bindings),
	)
	return nil
}

// Start is part of the module lifecycle. Publishing is driven entirely
// by Tick.
func (p *Publisher) Start() {}

// Shutdown is part of the module lifecycle. Tasks already handed to the
// executor are drained by the executor's owner.
func (p *Publisher) Shutdown() {}

// Options returns the effective options after Initialize, or the zero
// value before.
func (p *Publisher) Options() Options {
	options := p.options
	options.Joints = append([]config.Joint(nil), p.options.Joints...)
	return options
}

// Bindings returns the resolved bindings in configuration order.
func (p *Publisher) Bindings() []Binding {
	return append([]Binding(nil), p.bindings...)
}

// Tick is called once per simulator step, after the step has updated
// the sensor data.
func (p *Publisher) Tick() {
	if !p.ready {
		return
	}
	p.ticks.Add(1)
	if !p.schedule.Due() {
		return
	}
	p.publishTicks.Add(1)

	snapshot := make([]JointSample, len(p.bindings))
	for i, binding := range p.bindings {
		snapshot[i] = JointSample{
			Position: read(p.data, binding.Position),
			Velocity: read(p.data, binding.Velocity),
		}
	}
	p.schedule.Advance()

	if err := p.executor.Execute(func() { p.publish(snapshot) }); err != nil {
		p.rejected.Add(1)
		p.logger.Warn("dropping joint state sample",
			"topic", p.options.Topic,
			"error", err,
		)
	}
}

// publish runs on the executor. It owns snapshot.
func (p *Publisher) publish(snapshot []JointSample) {
	message := &sensor.JointState{Data: make([]sensor.JointStateEntry, len(snapshot))}
	for i, sample := range snapshot {
		message.Data[i] = sensor.JointStateEntry{
			Name:     p.bindings[i].Name,
			Position: sample.Position,
			Velocity: sample.Velocity,
		}
	}
	if err := p.bus.Publish(context.Background(), p.handle, message); err != nil {
		p.failures.Add(1)
		p.logger.Warn("publishing joint state failed",
			"topic", p.options.Topic,
			"error", err,
		)
		return
	}
	p.published.Add(1)
}

// Stats returns a snapshot of the counters. Safe for concurrent use.
func (p *Publisher) Stats() Stats {
	return Stats{
		Ticks:        p.ticks.Load(),
		PublishTicks: p.publishTicks.Load(),
		Published:    p.published.Load(),
		Failures:     p.failures.Load(),
		Rejected:     p.rejected.Load(),
	}
}
