// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/simsensor/lib/channel"
	"github.com/bureau-foundation/simsensor/lib/clock"
	"github.com/bureau-foundation/simsensor/lib/config"
	"github.com/bureau-foundation/simsensor/lib/executor"
	"github.com/bureau-foundation/simsensor/lib/jointsensor"
	"github.com/bureau-foundation/simsensor/lib/sim"
)

// system is everything a run owns, wired together.
type system struct {
	simulation *sim.Synthetic
	sink       channel.Sink
	bus        *channel.Bus
	pool       *executor.Pool
	publishers []*jointsensor.Publisher
	stepper    *sim.Stepper
	logger     *slog.Logger
}

// newSystem builds the simulator, sink, bus, executor and publishers
// described by cfg. Every publisher is initialized before newSystem
// returns; the first failure tears down what was built and is returned.
func newSystem(cfg *config.Config, clk clock.Clock, maxTicks uint64, logger *slog.Logger) (*system, error) {
	simulation, err := sim.NewSynthetic(sensorsOf(cfg), cfg.Simulation.TickRate)
	if err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}

	sink, err := openSink(cfg.Sink, logger)
	if err != nil {
		return nil, err
	}
	bus := channel.NewBus(sink, clk)

	pool, err := executor.NewPool(executor.PoolConfig{
		Workers:   cfg.Executor.Workers,
		QueueSize: cfg.Executor.QueueSize,
		Logger:    logger,
	})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("creating executor: %w", err)
	}

	s := &system{
		simulation: simulation,
		sink:       sink,
		bus:        bus,
		pool:       pool,
		logger:     logger,
	}

	for _, publisherConfig := range cfg.Publishers {
		publisher := jointsensor.New(jointsensor.Config{
			Model:    simulation,
			Data:     simulation,
			Bus:      bus,
			Executor: pool,
			MaxRate:  cfg.Simulation.TickRate,
			Logger:   logger.With("topic", publisherConfig.Topic),
		})
		if err := publisher.Initialize(jointsensor.OptionsFromConfig(publisherConfig)); err != nil {
			s.close(context.Background())
			return nil, err
		}
		s.publishers = append(s.publishers, publisher)
	}

	s.stepper, err = sim.NewStepper(sim.StepperConfig{
		Simulation: simulation,
		TickRate:   cfg.Simulation.TickRate,
		MaxCatchUp: cfg.Simulation.MaxCatchUp,
		MaxTicks:   maxTicks,
		Clock:      clk,
		Logger:     logger,
	})
	if err != nil {
		s.close(context.Background())
		return nil, err
	}
	for _, publisher := range s.publishers {
		s.stepper.OnTick(publisher.Tick)
	}
	return s, nil
}

// sensorsOf lists the sensor pairs of every configured joint, so the
// synthetic simulator exposes each name a publisher binds.
func sensorsOf(cfg *config.Config) []sim.JointSensors {
	var sensors []sim.JointSensors
	for _, publisher := range cfg.Publishers {
		for _, joint := range publisher.Joints {
			sensors = append(sensors, sim.JointSensors{
				Position: joint.BindJointPosSensor,
				Velocity: joint.BindJointVelSensor,
			})
		}
	}
	return sensors
}

// memoryRetention bounds what the memory sink keeps during a run.
const memoryRetention = 256

// stdoutWriter hides os.Stdout's Close from the frame sink.
type stdoutWriter struct{ io.Writer }

func openSink(sinkConfig config.SinkConfig, logger *slog.Logger) (channel.Sink, error) {
	switch sinkConfig.Kind {
	case config.SinkMemory, "":
		return channel.NewBoundedMemorySink(0, memoryRetention), nil
	case config.SinkFrame:
		compression, err := channel.ParseCompression(sinkConfig.Compression)
		if err != nil {
			return nil, err
		}
		if sinkConfig.Path == "-" {
			return channel.NewFrameSink(stdoutWriter{os.Stdout}, compression), nil
		}
		return channel.CreateFrameFile(sinkConfig.Path, compression)
	case config.SinkSQLite:
		return channel.OpenRecorder(sinkConfig.Path, logger)
	default:
		return nil, fmt.Errorf("unknown sink kind %q", sinkConfig.Kind)
	}
}

// run steps the simulation until ctx is done or the tick limit is
// reached, then shuts down.
func (s *system) run(ctx context.Context) error {
	for _, publisher := range s.publishers {
		publisher.Start()
	}
	s.logger.Info("simulation running",
		"publishers", len(s.publishers),
		"sensors", s.simulation.Model().Len(),
	)
	runErr := s.stepper.Run(ctx)

	// Drain with a fresh context: ctx is usually already cancelled.
	return errors.Join(runErr, s.close(context.Background()))
}

// close stops the publishers, drains the executor and closes the sink.
func (s *system) close(ctx context.Context) error {
	for _, publisher := range s.publishers {
		publisher.Shutdown()
	}
	var errs []error
	if err := s.pool.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing sink: %w", err))
	}
	s.logStats()
	return errors.Join(errs...)
}

func (s *system) logStats() {
	for _, publisher := range s.publishers {
		stats := publisher.Stats()
		options := publisher.Options()
		s.logger.Info("publisher stopped",
			"topic", options.Topic,
			"frequency", options.Frequency,
			"ticks", stats.Ticks,
			"published", stats.Published,
			"failures", stats.Failures,
			"rejected", stats.Rejected,
		)
	}
	if s.stepper != nil {
		s.logger.Info("simulation stopped",
			"ticks", s.stepper.Ticks(),
			"skipped", s.stepper.Skipped(),
			"executed", s.pool.Executed(),
			"panicked", s.pool.Panicked(),
		)
	}
}
