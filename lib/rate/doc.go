// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rate quantizes a requested publish frequency onto a
// simulator that advances in integer ticks at a fixed maximum rate.
//
// The ideal gap between publishes is maxRate/frequency ticks, which is
// generally not an integer. A [Schedule] publishes on the first tick at
// or after each ideal publish instant, so successive gaps alternate
// between floor and floor+1 ticks and the long-run average equals the
// requested rate exactly. [Quantize] refuses frequencies whose two
// candidate gaps differ from the ideal gap by more than
// [MaxRelativeError], since those would produce visible jitter.
//
// All bookkeeping is integer. The threshold is kept scaled by the
// frequency (threshold = due/frequency), so accumulating the base
// interval never rounds. Counter and threshold are rebased by
// [RebaseModulus] together once the counter passes it, which bounds
// both values without shifting the phase of the pattern.
package rate
