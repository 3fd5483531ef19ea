// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pose derives a glove's pose by shadowing a tracked controller
// with a fixed offset, and calibrates that offset.
package pose

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// TrackedDeviceIndex identifies a device in the host runtime's pose table.
type TrackedDeviceIndex uint32

const (
	// InvalidDeviceIndex marks a shadow identity that has not been resolved.
	InvalidDeviceIndex TrackedDeviceIndex = math.MaxUint32

	// MaxTrackedDeviceCount is the size of the host's pose snapshot.
	MaxTrackedDeviceCount = 64
)

// Valid reports whether the index refers to a device slot.
func (i TrackedDeviceIndex) Valid() bool {
	return i != InvalidDeviceIndex
}

// Role is the hand a device is worn on.
type Role int

// Hands a device can be worn on.
const (
	RoleLeftHand Role = iota
	RoleRightHand
)

func (r Role) String() string {
	if r == RoleRightHand {
		return "right"
	}
	return "left"
}

// ParseRole accepts "left" or "right" in any case.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(s) {
	case "left":
		return RoleLeftHand, true
	case "right":
		return RoleRightHand, true
	}
	return RoleLeftHand, false
}

// TrackingResult summarises whether a pose is actively tracked.
// Values follow the host runtime's enum.
type TrackingResult int

const (
	TrackingResultUninitialized TrackingResult = 1
	TrackingResultRunningOK     TrackingResult = 200
)

func (t TrackingResult) String() string {
	switch t {
	case TrackingResultRunningOK:
		return "Running_OK"
	case TrackingResultUninitialized:
		return "Uninitialized"
	}
	return "Unknown"
}

// MarshalText encodes the result by name.
func (t TrackingResult) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (t *TrackingResult) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Running_OK":
		*t = TrackingResultRunningOK
	case "Uninitialized":
		*t = TrackingResultUninitialized
	default:
		return fmt.Errorf("pose: unknown tracking result %q", text)
	}
	return nil
}

// Matrix34 is a row-major 3x4 rigid transform: rotation in the first three
// columns, translation in the last.
type Matrix34 [3][4]float64

// IdentityMatrix34 returns a transform with no rotation located at p.
func IdentityMatrix34(p r3.Vec) Matrix34 {
	return Matrix34{
		{1, 0, 0, p.X},
		{0, 1, 0, p.Y},
		{0, 0, 1, p.Z},
	}
}

// TrackedDevicePose is the raw pose the host reports for one device.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking Matrix34 `json:"device_to_absolute_tracking"`
	Velocity                 r3.Vec   `json:"velocity"`
	AngularVelocity          r3.Vec   `json:"angular_velocity"`
	PoseIsValid              bool     `json:"pose_is_valid"`
	DeviceIsConnected        bool     `json:"device_is_connected"`
}

// DriverPose is the pose this device reports to the host each frame.
type DriverPose struct {
	WorldFromDriverRotation quat.Number    `json:"world_from_driver_rotation"`
	DriverFromHeadRotation  quat.Number    `json:"driver_from_head_rotation"`
	Position                r3.Vec         `json:"position"`
	Rotation                quat.Number    `json:"rotation"`
	Velocity                r3.Vec         `json:"velocity"`
	AngularVelocity         r3.Vec         `json:"angular_velocity"`
	Result                  TrackingResult `json:"result"`
	PoseIsValid             bool           `json:"pose_is_valid"`
	DeviceIsConnected       bool           `json:"device_is_connected"`
	PoseTimeOffset          float64        `json:"pose_time_offset"`
}

// identityQuaternion is the unit quaternion with no rotation.
var identityQuaternion = quat.Number{Real: 1}

// newDriverPose returns a zero pose with identity coordinate-space rotations.
func newDriverPose() DriverPose {
	return DriverPose{
		WorldFromDriverRotation: identityQuaternion,
		DriverFromHeadRotation:  identityQuaternion,
	}
}
