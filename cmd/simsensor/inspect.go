// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/simsensor/lib/channel"
	"github.com/bureau-foundation/simsensor/lib/codec"
	"github.com/bureau-foundation/simsensor/lib/schema/sensor"
)

type inspectOptions struct {
	Diagnose bool
	Limit    int
}

func inspectCommand() *command {
	var options inspectOptions
	return &command{
		Name:    "inspect",
		Summary: "Print the messages in a frame file",
		Description: `Read a frame file written by "simsensor run", verify each frame's
checksum, and print one line per message. Joint state messages are
summarized; --diagnose prints every envelope in CBOR diagnostic
notation instead.`,
		Usage: "simsensor inspect FILE [--diagnose] [--limit N]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&options.Diagnose, "diagnose", false, "print CBOR diagnostic notation")
			flagSet.IntVarP(&options.Limit, "limit", "n", 0, "stop after this many messages (0 = all)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one frame file, got %d arguments", len(args))
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			return inspectFrames(os.Stdout, file, options)
		},
	}
}

// inspectFrames writes one line per envelope in r to w.
func inspectFrames(w io.Writer, r io.Reader, options inspectOptions) error {
	reader := channel.NewFrameReader(r)
	for count := 0; options.Limit <= 0 || count < options.Limit; count++ {
		envelope, raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", count, err)
		}

		if options.Diagnose {
			notation, err := codec.Diagnose(raw)
			if err != nil {
				return fmt.Errorf("frame %d: %w", count, err)
			}
			fmt.Fprintln(w, notation)
			continue
		}

		fmt.Fprintf(w, "%s %s #%d %s", envelope.Time().UTC().Format(time.RFC3339Nano), envelope.Topic, envelope.Sequence, envelope.Type)
		if envelope.Type == sensor.JointStateType {
			var state sensor.JointState
			if err := envelope.Decode(&state); err != nil {
				return fmt.Errorf("frame %d: decoding %s: %w", count, envelope.Type, err)
			}
			for _, entry := range state.Data {
				fmt.Fprintf(w, " %s=(%.6g, %.6g)", entry.Name, entry.Position, entry.Velocity)
			}
		} else {
			fmt.Fprintf(w, " (%d bytes)", len(envelope.Payload))
		}
		fmt.Fprintln(w)
	}
	return nil
}
