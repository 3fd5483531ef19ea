// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package device presents a glove to the host runtime: it owns the link to
// the hardware and the pose engine, and pushes both to a PoseSink every
// frame.
package device

import (
	"github.com/relabs-tech/glove_pose/internal/encoding"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// PoseSink receives the per-frame output of a driver.
type PoseSink interface {
	PublishPose(role pose.Role, serial string, dp pose.DriverPose) error
	PublishInput(role pose.Role, serial string, in encoding.InputData) error
}

// Driver is one hand registered with the host.
type Driver interface {
	SerialNumber() string
	Role() pose.Role
	Kind() Kind

	// Activate is called once the host has assigned the device an id.
	Activate(objectID uint32) error
	Deactivate() error
	IsActive() bool
	RunFrame() error

	ForceFeedback(ff encoding.ForceFeedback) error

	StartCalibration()
	FinishCalibration() bool
	CancelCalibration()
	IsCalibrating() bool
}

// Kind is what the glove presents itself as.
type Kind int

const (
	KindLucidGloves Kind = iota
	KindEmulatedKnuckles
)

func (k Kind) String() string {
	if k == KindEmulatedKnuckles {
		return "knuckles"
	}
	return "lucidgloves"
}

// Manufacturer is reported in discovery requests so the overlay can skip
// controllers that are themselves gloves.
func (k Kind) Manufacturer() string {
	if k == KindEmulatedKnuckles {
		return "Valve"
	}
	return "LucidGloves"
}
