// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/glove_pose/internal/pose"
)

// Pose is an orientation in degrees: roll about X, pitch about Y, yaw
// about Z.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide orientations over time.
type Source interface {
	Next() (Pose, error)
}

// Quaternion converts the orientation to a unit quaternion.
func (p Pose) Quaternion() quat.Number {
	return pose.EulerDegreesToQuaternion(r3.Vec{X: p.Roll, Y: p.Pitch, Z: p.Yaw})
}

// FromQuaternion converts a unit quaternion back to roll, pitch and yaw.
// Yaw is returned in [-180, 180].
func FromQuaternion(q quat.Number) Pose {
	deg := pose.QuaternionToEulerDegrees(q)
	return Pose{Roll: deg.X, Pitch: deg.Y, Yaw: deg.Z}
}
