// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jointsensor samples joint position and velocity sensors from
// a fixed-step simulation and publishes them as [sensor.JointState]
// messages at a configured rate.
//
// A [Publisher] is driven by the simulation loop: [Publisher.Tick] is
// called once per simulator step. The requested frequency rarely
// divides the tick rate, so publish ticks come from a [rate.Schedule]
// that alternates between the two nearest whole-tick gaps and keeps the
// long-run average on target.
//
// Sensor names are resolved to buffer offsets once, in
// [Publisher.Initialize]. The per-tick path does no string lookups and
// does not allocate on ticks that do not publish. On publish ticks the
// sampled values are copied into a snapshot that is handed to an
// [executor.Executor]; building and sending the message happens off the
// simulation goroutine, and a failure there is logged and counted but
// never stops the simulation.
package jointsensor
