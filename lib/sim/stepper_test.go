// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"context"
	"testing"
	"time"

	"github.com/bureau-foundation/simsensor/lib/clock"
	"github.com/bureau-foundation/simsensor/lib/testutil"
)

type countingSimulation struct {
	steps int
}

func (c *countingSimulation) Step() { c.steps++ }

func startStepper(t *testing.T, ctx context.Context, stepper *Stepper) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- stepper.Run(ctx) }()
	return done
}

func TestNewStepperValidates(t *testing.T) {
	if _, err := NewStepper(StepperConfig{TickRate: 1000}); err == nil {
		t.Error("expected error without Simulation")
	}
	if _, err := NewStepper(StepperConfig{Simulation: &countingSimulation{}}); err == nil {
		t.Error("expected error for zero TickRate")
	}
}

func TestStepRunsHooksAfterSimulation(t *testing.T) {
	simulation := &countingSimulation{}
	stepper, err := NewStepper(StepperConfig{Simulation: simulation, TickRate: 1000})
	if err != nil {
		t.Fatal(err)
	}
	var observed []int
	stepper.OnTick(func() { observed = append(observed, simulation.steps) })

	stepper.Step()
	stepper.Step()

	if len(observed) != 2 || observed[0] != 1 || observed[1] != 2 {
		t.Errorf("hook observed steps %v, want [1 2]", observed)
	}
	if stepper.Ticks() != 2 {
		t.Errorf("Ticks() = %d, want 2", stepper.Ticks())
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	simulation := &countingSimulation{}
	stepper, err := NewStepper(StepperConfig{
		Simulation: simulation,
		TickRate:   1000,
		MaxCatchUp: 100,
		MaxTicks:   10,
		Clock:      fake,
	})
	if err != nil {
		t.Fatal(err)
	}

	done := startStepper(t, context.Background(), stepper)
	fake.WaitForTimers(1)
	fake.Advance(10 * time.Millisecond)

	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run to return"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if simulation.steps != 10 {
		t.Errorf("simulation stepped %d times, want 10", simulation.steps)
	}
	if stepper.Skipped() != 0 {
		t.Errorf("Skipped() = %d, want 0", stepper.Skipped())
	}
}

func TestRunBoundsCatchUp(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	stepper, err := NewStepper(StepperConfig{
		Simulation: &countingSimulation{},
		TickRate:   1000,
		MaxCatchUp: 4,
		Clock:      fake,
	})
	if err != nil {
		t.Fatal(err)
	}
	stepped := make(chan struct{}, 100)
	stepper.OnTick(func() { stepped <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := startStepper(t, ctx, stepper)
	fake.WaitForTimers(1)
	fake.Advance(10 * time.Millisecond)

	for i := 0; i < 4; i++ {
		testutil.RequireReceive(t, stepped, 5*time.Second, "waiting for tick %d", i)
	}
	cancel()
	testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run to return")

	if stepper.Ticks() != 4 {
		t.Errorf("Ticks() = %d, want 4", stepper.Ticks())
	}
	if stepper.Skipped() != 6 {
		t.Errorf("Skipped() = %d, want 6", stepper.Skipped())
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	stepper, err := NewStepper(StepperConfig{
		Simulation: &countingSimulation{},
		TickRate:   1000,
		Clock:      clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := startStepper(t, ctx, stepper)
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run to return"); err != nil {
		t.Errorf("Run: %v", err)
	}
}
