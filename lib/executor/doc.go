// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor runs publish work off the simulation tick path.
//
// [Executor.Execute] is fire-and-forget and never blocks: a [Pool]
// whose queue is full rejects the task with [ErrQueueFull] instead of
// stalling the caller, mirroring how the telemetry relay drops rather
// than queues when its shipper falls behind. Tasks may complete out of
// submission order when the pool has more than one worker; a pool with
// one worker runs them strictly in order.
package executor
