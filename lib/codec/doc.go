// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single CBOR configuration used on the wire.
//
// Published message payloads and the bus envelopes around them are
// encoded with Core Deterministic Encoding, so the same snapshot always
// produces the same bytes and frame checksums are reproducible.
// Callers import this package instead of fxamacker/cbor directly.
package codec
