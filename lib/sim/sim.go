// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import "fmt"

// NotFound is returned by Model.SensorID for an unknown sensor name.
const NotFound = -1

// Model resolves sensor names to offsets in the sensor data buffer.
type Model interface {
	// SensorID returns the buffer offset of the named sensor, or
	// NotFound.
	SensorID(name string) int
}

// Data is the live sensor buffer of a running simulation.
type Data interface {
	// Sensor returns the current value at offset. Offsets come from
	// the Model that describes this buffer.
	Sensor(offset int) float64
}

// StaticModel is a Model over a fixed, ordered list of sensor names.
// The offset of a sensor is its position in the list.
type StaticModel struct {
	names   []string
	offsets map[string]int
}

// NewStaticModel indexes names. Duplicate or empty names are rejected.
func NewStaticModel(names []string) (*StaticModel, error) {
	model := &StaticModel{
		names:   append([]string(nil), names...),
		offsets: make(map[string]int, len(names)),
	}
	for offset, name := range names {
		if name == "" {
			return nil, fmt.Errorf("sensor %d has an empty name", offset)
		}
		if _, exists := model.offsets[name]; exists {
			return nil, fmt.Errorf("duplicate sensor name %q", name)
		}
		model.offsets[name] = offset
	}
	return model, nil
}

// SensorID implements Model.
func (m *StaticModel) SensorID(name string) int {
	offset, ok := m.offsets[name]
	if !ok {
		return NotFound
	}
	return offset
}

// Names returns the sensor names in offset order.
func (m *StaticModel) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of sensors.
func (m *StaticModel) Len() int { return len(m.names) }

// Buffer is a Data backed by a float64 slice.
type Buffer struct {
	values []float64
}

// NewBuffer returns a zeroed buffer with size sensors.
func NewBuffer(size int) *Buffer {
	return &Buffer{values: make([]float64, size)}
}

// Sensor implements Data.
func (b *Buffer) Sensor(offset int) float64 { return b.values[offset] }

// Set stores value at offset.
func (b *Buffer) Set(offset int, value float64) { b.values[offset] = value }

// Len returns the buffer size.
func (b *Buffer) Len() int { return len(b.values) }
