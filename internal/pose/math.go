// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationMatrix drops the translation column of m.
func RotationMatrix(m Matrix34) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// Translation returns the position stored in m.
func Translation(m Matrix34) r3.Vec {
	return r3.Vec{X: m[0][3], Y: m[1][3], Z: m[2][3]}
}

// RotateVector returns r·v.
func RotateVector(r mat.Matrix, v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(r, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// CombinePosition adds a world-space offset to the translation of m.
func CombinePosition(m Matrix34, offset r3.Vec) r3.Vec {
	return r3.Add(Translation(m), offset)
}

// MultiplyQuaternion composes base then a rotation expressed in base's
// local frame (Hamilton product base*offset).
func MultiplyQuaternion(base, offset quat.Number) quat.Number {
	return quat.Mul(base, offset)
}

// RotationQuaternion extracts the orientation of m as a unit quaternion.
// It pivots on the largest of the trace and the diagonal so half turns
// keep the relative signs of their axis.
func RotationQuaternion(m Matrix34) quat.Number {
	m00, m11, m22 := m[0][0], m[1][1], m[2][2]
	var q quat.Number
	switch {
	case m00+m11+m22 >= math.Max(m00, math.Max(m11, m22)):
		s := 2 * math.Sqrt(1+m00+m11+m22)
		q = quat.Number{
			Real: s / 4,
			Imag: (m[2][1] - m[1][2]) / s,
			Jmag: (m[0][2] - m[2][0]) / s,
			Kmag: (m[1][0] - m[0][1]) / s,
		}
	case m00 >= m11 && m00 >= m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (m[2][1] - m[1][2]) / s,
			Imag: s / 4,
			Jmag: (m[0][1] + m[1][0]) / s,
			Kmag: (m[0][2] + m[2][0]) / s,
		}
	case m11 >= m22:
		s := 2 * math.Sqrt(1-m00+m11-m22)
		q = quat.Number{
			Real: (m[0][2] - m[2][0]) / s,
			Imag: (m[0][1] + m[1][0]) / s,
			Jmag: s / 4,
			Kmag: (m[1][2] + m[2][1]) / s,
		}
	default:
		s := 2 * math.Sqrt(1-m00-m11+m22)
		q = quat.Number{
			Real: (m[1][0] - m[0][1]) / s,
			Imag: (m[0][2] + m[2][0]) / s,
			Jmag: (m[1][2] + m[2][1]) / s,
			Kmag: s / 4,
		}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// QuaternionMatrix34 builds a transform with rotation q located at p.
func QuaternionMatrix34(q quat.Number, p r3.Vec) Matrix34 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Matrix34{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y), p.X},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x), p.Y},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y), p.Z},
	}
}

// EulerToQuaternion converts rotations about X (roll), Y (pitch) and
// Z (yaw), in radians, applied in Z-Y-X order.
func EulerToQuaternion(x, y, z float64) quat.Number {
	cr, sr := math.Cos(x*0.5), math.Sin(x*0.5)
	cp, sp := math.Cos(y*0.5), math.Sin(y*0.5)
	cy, sy := math.Cos(z*0.5), math.Sin(z*0.5)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// QuaternionToEuler is the inverse of EulerToQuaternion. Pitch is clamped
// to ±90° at the gimbal singularity.
func QuaternionToEuler(q quat.Number) (x, y, z float64) {
	w, qx, qy, qz := q.Real, q.Imag, q.Jmag, q.Kmag

	x = math.Atan2(2*(w*qx+qy*qz), 1-2*(qx*qx+qy*qy))

	sinp := 2 * (w*qy - qz*qx)
	if math.Abs(sinp) >= 1 {
		y = math.Copysign(math.Pi/2, sinp)
	} else {
		y = math.Asin(sinp)
	}

	z = math.Atan2(2*(w*qz+qx*qy), 1-2*(qy*qy+qz*qz))
	return x, y, z
}

// EulerDegreesToQuaternion converts per-axis degrees as stored in
// configuration.
func EulerDegreesToQuaternion(deg r3.Vec) quat.Number {
	return EulerToQuaternion(DegToRad(deg.X), DegToRad(deg.Y), DegToRad(deg.Z))
}

// QuaternionToEulerDegrees is the inverse of EulerDegreesToQuaternion.
func QuaternionToEulerDegrees(q quat.Number) r3.Vec {
	x, y, z := QuaternionToEuler(q)
	return r3.Vec{X: RadToDeg(x), Y: RadToDeg(y), Z: RadToDeg(z)}
}

func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
