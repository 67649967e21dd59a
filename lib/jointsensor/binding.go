// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jointsensor

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/simsensor/lib/config"
	"github.com/bureau-foundation/simsensor/lib/sim"
)

// Offset is a position in the simulator's sensor buffer.
type Offset int

// NoSensor marks a joint signal with no bound sensor. It reads as 0.
const NoSensor Offset = -1

// Bound reports whether the offset refers to a sensor.
func (o Offset) Bound() bool { return o >= 0 }

// Binding is a joint whose sensor names have been resolved.
type Binding struct {
	// Name is the display name published in each entry.
	Name string

	// Joint is the simulator joint name from configuration. The
	// sampling path does not read it.
	Joint string

	Position Offset
	Velocity Offset
}

// ResolveBindings maps each joint's sensor names to offsets in model.
// An empty sensor name leaves the signal unbound. A non-empty name the
// model does not know is an error. Bindings keep the order of joints.
func ResolveBindings(model sim.Model, joints []config.Joint) ([]Binding, error) {
	bindings := make([]Binding, 0, len(joints))
	for _, joint := range joints {
		position, err := resolve(model, joint.BindJointPosSensor)
		if err != nil {
			return nil, fmt.Errorf("invalid position sensor name %q for joint %q: %w", joint.BindJointPosSensor, joint.Name, err)
		}
		velocity, err := resolve(model, joint.BindJointVelSensor)
		if err != nil {
			return nil, fmt.Errorf("invalid velocity sensor name %q for joint %q: %w", joint.BindJointVelSensor, joint.Name, err)
		}
		bindings = append(bindings, Binding{
			Name:     joint.Name,
			Joint:    joint.BindJoint,
			Position: position,
			Velocity: velocity,
		})
	}
	return bindings, nil
}

// ErrUnknownSensor is wrapped by ResolveBindings and Initialize when a
// configured sensor name is not in the model.
var ErrUnknownSensor = errors.New("jointsensor: unknown sensor")

func resolve(model sim.Model, name string) (Offset, error) {
	if name == "" {
		return NoSensor, nil
	}
	id := model.SensorID(name)
	if id < 0 {
		return NoSensor, ErrUnknownSensor
	}
	return Offset(id), nil
}

// read returns the sensor value at offset, or 0 for an unbound signal.
func read(data sim.Data, offset Offset) float64 {
	if !offset.Bound() {
		return 0
	}
	return data.Sensor(int(offset))
}
