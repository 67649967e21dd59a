// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sensor

import "fmt"

// JointStateType is the registered type name of JointState on the bus.
const JointStateType = "simsensor.sensor.JointState"

// JointState is one sample of every bound joint, in configuration
// order.
type JointState struct {
	Data []JointStateEntry `json:"data"`
}

// JointStateEntry is the sampled state of one joint. A joint without a
// bound sensor for a signal reports 0 for it.
type JointStateEntry struct {
	// Name is the display name from configuration.
	Name string `json:"name"`

	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
}

// Entry returns the entry named name.
func (s *JointState) Entry(name string) (JointStateEntry, error) {
	for _, entry := range s.Data {
		if entry.Name == name {
			return entry, nil
		}
	}
	return JointStateEntry{}, fmt.Errorf("joint state has no entry %q", name)
}
