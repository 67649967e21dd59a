// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/simsensor/lib/clock"
)

// Steppable is a simulation that advances one fixed tick per Step.
type Steppable interface {
	Step()
}

// Hook runs once per tick, after the simulation step, on the stepper
// goroutine.
type Hook func()

// StepperConfig holds the parameters for NewStepper.
type StepperConfig struct {
	// Simulation is stepped once per tick. Required.
	Simulation Steppable

	// TickRate is the fixed step rate in ticks per second. Required.
	TickRate uint32

	// MaxCatchUp bounds how many ticks a single wake-up may run when
	// the stepper has fallen behind the clock. Ticks beyond the bound
	// are skipped and counted. Zero means 1.
	MaxCatchUp int

	// MaxTicks stops Run after this many ticks. Zero means unbounded.
	MaxTicks uint64

	// Clock paces the stepper. Nil means clock.Real().
	Clock clock.Clock

	// Logger receives catch-up warnings. Nil discards.
	Logger *slog.Logger
}

// Stepper drives a Steppable at a fixed tick rate.
type Stepper struct {
	simulation Steppable
	period     time.Duration
	maxCatchUp uint64
	maxTicks   uint64
	clock      clock.Clock
	logger     *slog.Logger
	hooks      []Hook

	ticks   atomic.Uint64
	skipped atomic.Uint64
}

// NewStepper validates config and returns an idle stepper.
func NewStepper(config StepperConfig) (*Stepper, error) {
	if config.Simulation == nil {
		return nil, fmt.Errorf("stepper: Simulation is required")
	}
	if config.TickRate == 0 {
		return nil, fmt.Errorf("stepper: TickRate must be positive")
	}
	maxCatchUp := config.MaxCatchUp
	if maxCatchUp <= 0 {
		maxCatchUp = 1
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Stepper{
		simulation: config.Simulation,
		period:     time.Second / time.Duration(config.TickRate),
		maxCatchUp: uint64(maxCatchUp),
		maxTicks:   config.MaxTicks,
		clock:      clk,
		logger:     logger,
	}, nil
}

// OnTick registers a hook. Hooks must be registered before Run.
func (s *Stepper) OnTick(hook Hook) {
	s.hooks = append(s.hooks, hook)
}

// Step runs one tick: the simulation step followed by every hook in
// registration order.
func (s *Stepper) Step() {
	s.simulation.Step()
	for _, hook := range s.hooks {
		hook()
	}
	s.ticks.Add(1)
}

// Ticks returns the number of completed ticks.
func (s *Stepper) Ticks() uint64 { return s.ticks.Load() }

// Skipped returns the number of ticks dropped by the catch-up bound.
func (s *Stepper) Skipped() uint64 { return s.skipped.Load() }

// Run steps the simulation in real time until ctx is cancelled or
// MaxTicks is reached. On each clock wake-up it runs as many ticks as
// the elapsed time calls for, up to MaxCatchUp.
func (s *Stepper) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.period)
	defer ticker.Stop()

	start := s.clock.Now()
	var scheduled uint64

	for {
		select {
		case now := <-ticker.C:
			target := uint64(now.Sub(start) / s.period)
			if target <= scheduled {
				continue
			}
			behind := target - scheduled
			scheduled = target
			if behind > s.maxCatchUp {
				s.skipped.Add(behind - s.maxCatchUp)
				s.logger.Warn("simulation fell behind, skipping ticks",
					"behind", behind,
					"skipped", behind-s.maxCatchUp,
				)
				behind = s.maxCatchUp
			}
			for range behind {
				s.Step()
				if s.maxTicks > 0 && s.Ticks() >= s.maxTicks {
					return nil
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}
