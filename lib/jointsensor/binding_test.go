// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jointsensor

import (
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/simsensor/lib/config"
	"github.com/bureau-foundation/simsensor/lib/sim"
)

func newModel(t *testing.T, names ...string) *sim.StaticModel {
	t.Helper()
	model, err := sim.NewStaticModel(names)
	if err != nil {
		t.Fatalf("NewStaticModel: %v", err)
	}
	return model
}

func TestResolveBindings(t *testing.T) {
	model := newModel(t, "s1", "s2", "s3")
	joints := []config.Joint{
		{Name: "hip", BindJoint: "hip_joint", BindJointPosSensor: "s1", BindJointVelSensor: "s2"},
		{Name: "knee", BindJoint: "knee_joint", BindJointPosSensor: "s3"},
		{Name: "ankle"},
	}

	bindings, err := ResolveBindings(model, joints)
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}

	want := []Binding{
		{Name: "hip", Joint: "hip_joint", Position: 0, Velocity: 1},
		{Name: "knee", Joint: "knee_joint", Position: 2, Velocity: NoSensor},
		{Name: "ankle", Position: NoSensor, Velocity: NoSensor},
	}
	if len(bindings) != len(want) {
		t.Fatalf("got %d bindings, want %d", len(bindings), len(want))
	}
	for i := range want {
		if bindings[i] != want[i] {
			t.Errorf("binding %d = %+v, want %+v", i, bindings[i], want[i])
		}
	}
}

func TestResolveBindingsUnknownSensor(t *testing.T) {
	model := newModel(t, "s1")

	tests := []struct {
		name    string
		joint   config.Joint
		wantErr string
	}{
		{
			name:    "position",
			joint:   config.Joint{Name: "hip", BindJointPosSensor: "missing"},
			wantErr: `invalid position sensor name "missing" for joint "hip"`,
		},
		{
			name:    "velocity",
			joint:   config.Joint{Name: "knee", BindJointPosSensor: "s1", BindJointVelSensor: "gone"},
			wantErr: `invalid velocity sensor name "gone" for joint "knee"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveBindings(model, []config.Joint{tt.joint})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrUnknownSensor) {
				t.Errorf("error = %v, want it to wrap ErrUnknownSensor", err)
			}
		})
	}
}

func TestResolveBindingsEmpty(t *testing.T) {
	bindings, err := ResolveBindings(newModel(t, "s1"), nil)
	if err != nil {
		t.Fatalf("ResolveBindings: %v", err)
	}
	if len(bindings) != 0 {
		t.Errorf("got %d bindings, want 0", len(bindings))
	}
}

func TestReadUnboundIsZero(t *testing.T) {
	buffer := sim.NewBuffer(1)
	buffer.Set(0, 3.5)
	if got := read(buffer, NoSensor); got != 0 {
		t.Errorf("read(NoSensor) = %v, want 0", got)
	}
	if got := read(buffer, 0); got != 3.5 {
		t.Errorf("read(0) = %v, want 3.5", got)
	}
}
