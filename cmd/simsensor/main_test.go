// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/simsensor/lib/channel"
	"github.com/bureau-foundation/simsensor/lib/clock"
	"github.com/bureau-foundation/simsensor/lib/config"
	"github.com/bureau-foundation/simsensor/lib/schema/sensor"
)

const legsConfig = `
simulation:
  tick_rate: 1000
executor:
  workers: 1
  queue_size: 256
publishers:
  - topic: legs
    frequency: 500
    joints:
      - name: hip
        bind_joint: hip
        bind_jointpos_sensor: hip_pos
        bind_jointvel_sensor: hip_vel
      - name: knee
        bind_joint: knee
        bind_jointpos_sensor: knee_pos
  - topic: arm
    frequency: 70
    joints:
      - name: elbow
        bind_jointpos_sensor: elbow_pos
        bind_jointvel_sensor: elbow_vel
`

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simsensor.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func parseConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(content), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cfg
}

func TestSystemPublishesOnSchedule(t *testing.T) {
	s, err := newSystem(parseConfig(t, legsConfig), clock.Real(), 0, discardLogger())
	if err != nil {
		t.Fatalf("newSystem: %v", err)
	}
	for range 1000 {
		s.stepper.Step()
	}
	if err := s.close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	sink := s.sink.(*channel.MemorySink)
	for _, envelope := range sink.Envelopes() {
		if envelope.Topic != "legs" {
			continue
		}
		var state sensor.JointState
		if err := envelope.Decode(&state); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		knee, err := state.Entry("knee")
		if err != nil {
			t.Fatal(err)
		}
		if knee.Velocity != 0 {
			t.Errorf("knee velocity = %v, want 0", knee.Velocity)
		}
	}

	publishTicks := make(map[string]uint64)
	var published uint64
	for _, publisher := range s.publishers {
		stats := publisher.Stats()
		publishTicks[publisher.Options().Topic] = stats.PublishTicks
		published += stats.Published
		if stats.Published+stats.Rejected != stats.PublishTicks {
			t.Errorf("%s: published %d + rejected %d != publish ticks %d",
				publisher.Options().Topic, stats.Published, stats.Rejected, stats.PublishTicks)
		}
	}
	if publishTicks["legs"] != 500 {
		t.Errorf("legs had %d publish ticks over 1000 ticks, want 500", publishTicks["legs"])
	}
	if publishTicks["arm"] < 68 || publishTicks["arm"] > 72 {
		t.Errorf("arm had %d publish ticks over 1000 ticks, want 70 ± 2", publishTicks["arm"])
	}
	if got := sink.Written(); got != published {
		t.Errorf("sink accepted %d envelopes, want %d", got, published)
	}
}

func TestDefaultSinkStaysBounded(t *testing.T) {
	cfg := parseConfig(t, legsConfig)
	if cfg.Sink.Kind != config.SinkMemory {
		t.Fatalf("default sink kind = %q, want memory", cfg.Sink.Kind)
	}
	s, err := newSystem(cfg, clock.Real(), 0, discardLogger())
	if err != nil {
		t.Fatalf("newSystem: %v", err)
	}
	sink := s.sink.(*channel.MemorySink)

	for tick := range 20_000 {
		s.stepper.Step()
		if tick%1000 == 999 && sink.Len() > memoryRetention {
			t.Fatalf("after %d ticks the sink retains %d envelopes, want at most %d", tick+1, sink.Len(), memoryRetention)
		}
	}
	if err := s.close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	var publishTicks, published uint64
	for _, publisher := range s.publishers {
		stats := publisher.Stats()
		publishTicks += stats.PublishTicks
		published += stats.Published
	}
	// 20000 ticks: 10000 legs messages plus 1400 arm messages.
	if publishTicks != 11_400 {
		t.Errorf("%d publish ticks, want 11400", publishTicks)
	}
	if got := sink.Written(); got != published || got < memoryRetention {
		t.Errorf("sink accepted %d envelopes, want %d (at least %d)", got, published, memoryRetention)
	}
	if sink.Len() != memoryRetention {
		t.Errorf("sink retains %d envelopes, want %d", sink.Len(), memoryRetention)
	}
}

func TestNewSystemRejectsInfeasibleFrequency(t *testing.T) {
	cfg := parseConfig(t, legsConfig)
	cfg.Publishers[1].Frequency = 300

	_, err := newSystem(cfg, clock.Real(), 0, discardLogger())
	if err == nil {
		t.Fatal("expected error for 300 Hz at 1000 Hz tick rate")
	}
	if !strings.Contains(err.Error(), "300") {
		t.Errorf("error %q does not name the frequency", err)
	}
}

func TestRunSimulationInvalidConfig(t *testing.T) {
	path := writeConfig(t, "simulation:\n  tick_rate: 1000\n")
	err := runSimulation(context.Background(), runOptions{ConfigPath: path}, clock.Real(), discardLogger())
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("got %v, want invalid config error", err)
	}
}

func TestRunSimulationFrameFile(t *testing.T) {
	configPath := writeConfig(t, legsConfig)
	output := filepath.Join(t.TempDir(), "out.ssf")

	err := runSimulation(context.Background(), runOptions{
		ConfigPath: configPath,
		Ticks:      200,
		Output:     output,
	}, clock.Real(), discardLogger())
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}

	file, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var out bytes.Buffer
	if err := inspectFrames(&out, file, inspectOptions{}); err != nil {
		t.Fatalf("inspectFrames: %v", err)
	}
	var legs, arm int
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		switch {
		case strings.Contains(line, " legs #"):
			legs++
			if !strings.Contains(line, "hip=(") || !strings.Contains(line, "knee=(") {
				t.Errorf("legs line missing joints: %s", line)
			}
		case strings.Contains(line, " arm #"):
			arm++
		default:
			t.Errorf("unexpected line: %s", line)
		}
	}
	// 200 ticks: legs on every 2nd tick, arm on ticks 0, 15, 29, ...
	if legs != 100 {
		t.Errorf("got %d legs messages, want 100", legs)
	}
	if arm != 14 {
		t.Errorf("got %d arm messages, want 14", arm)
	}
}

func TestRunSimulationSQLite(t *testing.T) {
	database := filepath.Join(t.TempDir(), "messages.db")
	t.Setenv("SIMSENSOR_TEST_DB", database)
	configPath := writeConfig(t, legsConfig+"sink:\n  kind: sqlite\n  path: ${SIMSENSOR_TEST_DB}\n")

	err := runSimulation(context.Background(), runOptions{ConfigPath: configPath, Ticks: 100}, clock.Real(), discardLogger())
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}

	recorder, err := channel.OpenRecorder(database, nil)
	if err != nil {
		t.Fatalf("OpenRecorder: %v", err)
	}
	defer recorder.Close()
	count, err := recorder.Count(context.Background(), "legs")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 50 {
		t.Errorf("recorded %d legs messages, want 50", count)
	}
}

func TestInspectLimitAndDiagnose(t *testing.T) {
	var frames bytes.Buffer
	sink := channel.NewFrameSink(&frames, channel.CompressionLZ4)
	bus := channel.NewBus(sink, nil)
	publisher, err := bus.Register("legs", sensor.JointStateType)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		state := &sensor.JointState{Data: []sensor.JointStateEntry{{Name: "hip", Position: float64(i)}}}
		if err := bus.Publish(context.Background(), publisher, state); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	encoded := frames.Bytes()

	var out bytes.Buffer
	if err := inspectFrames(&out, bytes.NewReader(encoded), inspectOptions{Limit: 3}); err != nil {
		t.Fatalf("inspectFrames: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines with limit 3, want 3:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[2], "#2") || !strings.Contains(lines[2], "hip=(2, 0)") {
		t.Errorf("third line = %q", lines[2])
	}

	out.Reset()
	if err := inspectFrames(&out, bytes.NewReader(encoded), inspectOptions{Diagnose: true, Limit: 1}); err != nil {
		t.Fatalf("inspectFrames --diagnose: %v", err)
	}
	if !strings.Contains(out.String(), `"legs"`) {
		t.Errorf("diagnostic output missing topic: %s", out.String())
	}
}

func TestInspectCorruptFrame(t *testing.T) {
	var frames bytes.Buffer
	bus := channel.NewBus(channel.NewFrameSink(&frames, channel.CompressionNone), nil)
	publisher, err := bus.Register("legs", sensor.JointStateType)
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(context.Background(), publisher, &sensor.JointState{}); err != nil {
		t.Fatal(err)
	}
	encoded := frames.Bytes()
	encoded[len(encoded)-1] ^= 0xff

	var out bytes.Buffer
	if err := inspectFrames(&out, bytes.NewReader(encoded), inspectOptions{}); err == nil {
		t.Error("expected checksum error")
	}
}

func TestUnknownCommand(t *testing.T) {
	err := run([]string{"launch"})
	if err == nil || !strings.Contains(err.Error(), `unknown command "launch"`) {
		t.Errorf("got %v, want unknown command error", err)
	}
}

func TestRunRejectsPositionalArguments(t *testing.T) {
	err := run([]string{"run", "extra"})
	if err == nil || !strings.Contains(err.Error(), "unexpected argument") {
		t.Errorf("got %v, want unexpected argument error", err)
	}
}

func TestFileLoggerWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simsensor.log")
	logger, closer := newFileLogger(path, slog.LevelInfo)
	logger.Info("publisher stopped", "topic", "legs")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), `"topic":"legs"`) {
		t.Errorf("log file missing structured field: %s", data)
	}
}

func TestCommandErrorsAreSingleLine(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no subcommand", nil, "subcommand required"},
		{"unknown command", []string{"launch"}, `unknown command "launch"`},
		{"unknown flag", []string{"run", "--bogus"}, "unknown flag: --bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if strings.Contains(err.Error(), "\n") {
				t.Errorf("error spans several lines: %q", err)
			}
			if !strings.HasSuffix(err.Error(), "for usage)") {
				t.Errorf("error %q does not point at --help", err)
			}
		})
	}
}
