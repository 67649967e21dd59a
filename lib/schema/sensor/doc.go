// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sensor defines the outbound message types published by the
// simulation sensor publishers.
//
// Types carry json tags only; lib/codec falls back to them for CBOR
// map keys, so the same struct serves the wire format and the JSON
// rendering printed by "simsensor inspect".
package sensor
