// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/simsensor/lib/codec"
)

// Envelope is the unit a Sink stores or transmits.
type Envelope struct {
	Topic string `cbor:"topic"`
	Type  string `cbor:"type"`

	// Sequence numbers messages per topic, starting at 0. Envelopes
	// may reach a sink out of order when publishes run on several
	// workers; Sequence restores the order.
	Sequence uint64 `cbor:"sequence"`

	// Timestamp is the publish time in Unix nanoseconds.
	Timestamp int64 `cbor:"timestamp"`

	// Payload is the CBOR-encoded message.
	Payload codec.RawMessage `cbor:"payload"`
}

// Time returns Timestamp as a time.Time.
func (e *Envelope) Time() time.Time {
	return time.Unix(0, e.Timestamp)
}

// Decode unmarshals the payload into message.
func (e *Envelope) Decode(message any) error {
	if err := codec.Unmarshal(e.Payload, message); err != nil {
		return fmt.Errorf("decoding %s payload on %q: %w", e.Type, e.Topic, err)
	}
	return nil
}
