// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pose

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// NoControllerOverride is the override index meaning "none".
const NoControllerOverride = -1

// PoseConfiguration is the rigid offset from the shadowed controller's grip
// to the glove. It is replaced as a whole, never mutated in place.
type PoseConfiguration struct {
	// OffsetPosition is in meters, in the controller's local frame.
	OffsetPosition r3.Vec
	// OffsetRotation is applied in the controller's local frame.
	OffsetRotation quat.Number
	// PoseTimeOffset is forwarded to the host in seconds.
	PoseTimeOffset float64

	ControllerOverrideEnabled bool
	ControllerIDOverride      int
}

// NewPoseConfiguration builds a configuration from an offset given in
// Euler degrees.
func NewPoseConfiguration(offsetPosition, offsetDegrees r3.Vec, poseTimeOffset float64, overrideEnabled bool, overrideID int) PoseConfiguration {
	if !overrideEnabled {
		overrideID = NoControllerOverride
	}
	return PoseConfiguration{
		OffsetPosition:            offsetPosition,
		OffsetRotation:            EulerDegreesToQuaternion(offsetDegrees),
		PoseTimeOffset:            poseTimeOffset,
		ControllerOverrideEnabled: overrideEnabled,
		ControllerIDOverride:      overrideID,
	}
}

// OffsetDegrees returns the rotation offset as Euler degrees.
func (c PoseConfiguration) OffsetDegrees() r3.Vec {
	return QuaternionToEulerDegrees(c.OffsetRotation)
}

// overrideIndex returns the configured override as a device index, or
// InvalidDeviceIndex when the override is "none".
func (c PoseConfiguration) overrideIndex() TrackedDeviceIndex {
	if c.ControllerIDOverride < 0 || int64(c.ControllerIDOverride) >= int64(InvalidDeviceIndex) {
		return InvalidDeviceIndex
	}
	return TrackedDeviceIndex(c.ControllerIDOverride)
}
