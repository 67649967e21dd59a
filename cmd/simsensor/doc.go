// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Simsensor runs a synthetic fixed-step simulation and publishes joint
// sensor readings at configured rates.
//
// Subcommands:
//
//	simsensor run --config simsensor.yaml [--ticks N] [--duration D] [--output PATH]
//	simsensor inspect FILE [--diagnose] [--limit N]
//
// run builds one publisher per entry in the config file's publishers
// list, steps the simulation in real time, and writes every message to
// the configured sink: memory (counted and discarded), a frame file, or
// a SQLite database. inspect reads a frame file back, verifying each
// frame's checksum.
package main
