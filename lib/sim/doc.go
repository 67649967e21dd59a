// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sim defines the narrow view of a physics simulator that the
// sensor publishers consume, plus a small synthetic simulator and a
// fixed-rate stepper used by the simsensor binary and by tests.
//
// A [Model] resolves sensor names to offsets once, at initialization.
// A [Data] exposes the live sensor buffer indexed by those offsets and
// is read on every publish tick. Both are owned by the host and must
// outlive every publisher bound to them.
//
// [Stepper] advances a [Steppable] at a fixed tick rate and invokes
// registered per-tick hooks synchronously on its own goroutine, after
// each step. Hooks therefore never run concurrently with each other or
// with the step.
package sim
