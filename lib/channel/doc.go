// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel is the outbound message bus used by the sensor
// publishers.
//
// A publisher registers a (topic, message type) pair once with
// [Bus.Register] and receives a [Publisher] handle. Each
// [Bus.Publish] encodes the message as CBOR, wraps it in an
// [Envelope] stamped with the topic's next sequence number and the
// bus clock, and hands the envelope to a [Sink]. Sinks decide where
// envelopes go:
//
//   - [MemorySink] keeps them in process (tests, dry runs).
//   - [FrameSink] writes checksummed, optionally compressed frames to
//     a file or stream; [FrameReader] reads them back.
//   - [RecorderSink] records them into a SQLite database.
//
// Publish is safe for concurrent use. Publish errors are returned to
// the caller; the bus does not retry.
package channel
