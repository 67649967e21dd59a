// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"math"
	"slices"
)

// JointSensors names the position and velocity sensors attached to
// one joint of the synthetic simulator. Either name may be empty.
type JointSensors struct {
	Position string
	Velocity string
}

// Synthetic is a stand-in physics engine. Each joint oscillates as
// q(t) = A sin(2π f t + φ) with its velocity being the analytic
// derivative, so published values are deterministic functions of the
// step index. It is a Model and a Data at once.
type Synthetic struct {
	model   *StaticModel
	buffer  *Buffer
	joints  []syntheticJoint
	tickHz  float64
	stepped uint64
}

type syntheticJoint struct {
	position  int
	velocity  int
	amplitude float64
	frequency float64
	phase     float64
}

// NewSynthetic builds a simulator exposing every non-empty sensor name
// in joints. A name shared by several joints maps to one sensor.
func NewSynthetic(joints []JointSensors, tickRate uint32) (*Synthetic, error) {
	var names []string
	for _, joint := range joints {
		for _, name := range []string{joint.Position, joint.Velocity} {
			if name != "" && !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	model, err := NewStaticModel(names)
	if err != nil {
		return nil, err
	}

	synthetic := &Synthetic{
		model:  model,
		buffer: NewBuffer(model.Len()),
		tickHz: float64(tickRate),
	}
	for index, joint := range joints {
		synthetic.joints = append(synthetic.joints, syntheticJoint{
			position:  lookup(model, joint.Position),
			velocity:  lookup(model, joint.Velocity),
			amplitude: 0.5 + 0.1*float64(index),
			frequency: 0.25 * float64(index+1),
			phase:     float64(index) * math.Pi / 4,
		})
	}
	synthetic.write()
	return synthetic, nil
}

func lookup(model Model, name string) int {
	if name == "" {
		return NotFound
	}
	return model.SensorID(name)
}

// SensorID implements Model.
func (s *Synthetic) SensorID(name string) int { return s.model.SensorID(name) }

// Sensor implements Data.
func (s *Synthetic) Sensor(offset int) float64 { return s.buffer.Sensor(offset) }

// Step advances the simulation by one tick and refreshes every sensor.
func (s *Synthetic) Step() {
	s.stepped++
	s.write()
}

// Steps returns the number of completed steps.
func (s *Synthetic) Steps() uint64 { return s.stepped }

// Model returns the sensor name index.
func (s *Synthetic) Model() *StaticModel { return s.model }

func (s *Synthetic) write() {
	t := float64(s.stepped) / s.tickHz
	for _, joint := range s.joints {
		omega := 2 * math.Pi * joint.frequency
		angle := omega*t + joint.phase
		if joint.position != NotFound {
			s.buffer.Set(joint.position, joint.amplitude*math.Sin(angle))
		}
		if joint.velocity != NotFound {
			s.buffer.Set(joint.velocity, joint.amplitude*omega*math.Cos(angle))
		}
	}
}
