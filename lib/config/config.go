// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file for Load.
const EnvironmentVariable = "SIMSENSOR_CONFIG"

// Sink kinds.
const (
	SinkMemory = "memory"
	SinkFrame  = "frame"
	SinkSQLite = "sqlite"
)

// Config is the top-level configuration.
type Config struct {
	Simulation SimulationConfig  `yaml:"simulation" json:"simulation"`
	Executor   ExecutorConfig    `yaml:"executor" json:"executor"`
	Sink       SinkConfig        `yaml:"sink" json:"sink"`
	Publishers []PublisherConfig `yaml:"publishers" json:"publishers"`
}

// SimulationConfig configures the synthetic simulator and its stepper.
type SimulationConfig struct {
	// TickRate is the fixed step rate in Hz.
	TickRate uint32 `yaml:"tick_rate" json:"tick_rate"`

	// MaxCatchUp bounds the ticks run per wake-up after a stall.
	MaxCatchUp int `yaml:"max_catch_up" json:"max_catch_up"`

	// Duration stops the run after this long, e.g. "30s". Empty runs
	// until interrupted.
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// ExecutorConfig sizes the publish worker pool.
type ExecutorConfig struct {
	Workers   int `yaml:"workers" json:"workers"`
	QueueSize int `yaml:"queue_size" json:"queue_size"`
}

// SinkConfig selects where published messages go.
type SinkConfig struct {
	// Kind is memory, frame or sqlite.
	Kind string `yaml:"kind" json:"kind"`

	// Path is the output file for frame and sqlite sinks. "-" writes
	// frames to stdout. ${VAR} and ${VAR:-default} are expanded.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Compression is none, lz4 or zstd (frame sink only).
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty"`
}

// PublisherConfig configures one joint sensor publisher.
type PublisherConfig struct {
	Topic     string  `yaml:"topic" json:"topic"`
	Frequency uint32  `yaml:"frequency" json:"frequency"`
	Joints    []Joint `yaml:"joints" json:"joints"`
}

// Joint binds a published joint name to simulator sensors.
type Joint struct {
	// Name is the display name carried in published messages.
	Name string `yaml:"name" json:"name"`

	// BindJoint names the simulator joint. Carried for reference;
	// sampling reads only the sensors.
	BindJoint string `yaml:"bind_joint" json:"bind_joint"`

	// BindJointPosSensor and BindJointVelSensor name the position and
	// velocity sensors. Empty means the signal is reported as 0.
	BindJointPosSensor string `yaml:"bind_jointpos_sensor" json:"bind_jointpos_sensor"`
	BindJointVelSensor string `yaml:"bind_jointvel_sensor" json:"bind_jointvel_sensor"`
}

// Default returns the values a config file is merged over.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:   1000,
			MaxCatchUp: 50,
		},
		Executor: ExecutorConfig{
			Workers:   2,
			QueueSize: 64,
		},
		Sink: SinkConfig{
			Kind:        SinkMemory,
			Compression: "none",
		},
	}
}

// Load reads the file named by SIMSENSOR_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; set it to the path of your config file, or use --config",
			EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile reads path over Default and expands variables in the sink
// path. The result is not validated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data over Default. extension selects the format:
// ".json" and ".jsonc" decode as JSONC, anything else as YAML.
func Parse(data []byte, extension string) (*Config, error) {
	config := Default()
	switch strings.ToLower(extension) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	}
	config.Sink.Path = expandVars(config.Sink.Path)
	return config, nil
}

// RunDuration parses Simulation.Duration. Zero means unbounded.
func (c *Config) RunDuration() (time.Duration, error) {
	if c.Simulation.Duration == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(c.Simulation.Duration)
	if err != nil {
		return 0, fmt.Errorf("simulation.duration: %w", err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("simulation.duration must not be negative, got %s", duration)
	}
	return duration, nil
}

// Validate reports every structural problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Simulation.TickRate == 0 {
		errs = append(errs, errors.New("simulation.tick_rate must be positive"))
	}
	if c.Simulation.MaxCatchUp < 0 {
		errs = append(errs, errors.New("simulation.max_catch_up must not be negative"))
	}
	if _, err := c.RunDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Executor.Workers < 0 {
		errs = append(errs, errors.New("executor.workers must not be negative"))
	}
	if c.Executor.QueueSize < 0 {
		errs = append(errs, errors.New("executor.queue_size must not be negative"))
	}

	switch c.Sink.Kind {
	case SinkMemory:
	case SinkFrame, SinkSQLite:
		if c.Sink.Path == "" {
			errs = append(errs, fmt.Errorf("sink.path is required for %s sink", c.Sink.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sink.kind %q (want memory, frame or sqlite)", c.Sink.Kind))
	}
	switch c.Sink.Compression {
	case "", "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("unknown sink.compression %q (want none, lz4 or zstd)", c.Sink.Compression))
	}

	if len(c.Publishers) == 0 {
		errs = append(errs, errors.New("at least one publisher is required"))
	}
	topics := make(map[string]bool)
	for index, publisher := range c.Publishers {
		prefix := fmt.Sprintf("publishers[%d]", index)
		if publisher.Topic == "" {
			errs = append(errs, fmt.Errorf("%s.topic is required", prefix))
		} else if topics[publisher.Topic] {
			errs = append(errs, fmt.Errorf("%s: duplicate topic %q", prefix, publisher.Topic))
		}
		topics[publisher.Topic] = true
		if publisher.Frequency == 0 {
			errs = append(errs, fmt.Errorf("%s.frequency must be positive", prefix))
		}
		for jointIndex, joint := range publisher.Joints {
			if joint.Name == "" {
				errs = append(errs, fmt.Errorf("%s.joints[%d].name is required", prefix, jointIndex))
			}
		}
	}

	return errors.Join(errs...)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
