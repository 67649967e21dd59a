// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the simulation
// stepper and the message bus.
//
// Production code receives Real(); tests receive Fake() and move time
// forward explicitly with Advance. The clock reads the current time and
// creates periodic tickers.
//
// A goroutine that creates a fake ticker registers a pending waiter.
// Tests call WaitForTimers before Advance so that registration and
// advancement cannot race:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go stepper.Run(ctx)
//	c.WaitForTimers(1)
//	c.Advance(time.Millisecond)
package clock
