// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func assertVecInDelta(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "X")
	assert.InDelta(t, want.Y, got.Y, eps, "Y")
	assert.InDelta(t, want.Z, got.Z, eps, "Z")
}

// assertSameRotation treats q and -q as the same rotation.
// Components that should be zero can come back as sqrt of a rounding
// residue, hence the looser tolerance.
func assertSameRotation(t *testing.T, want, got quat.Number) {
	t.Helper()
	if want.Real*got.Real+want.Imag*got.Imag+want.Jmag*got.Jmag+want.Kmag*got.Kmag < 0 {
		got = quat.Scale(-1, got)
	}
	const delta = 1e-6
	assert.InDelta(t, want.Real, got.Real, delta, "w")
	assert.InDelta(t, want.Imag, got.Imag, delta, "x")
	assert.InDelta(t, want.Jmag, got.Jmag, delta, "y")
	assert.InDelta(t, want.Kmag, got.Kmag, delta, "z")
}

func TestRotationMatrix_DropsTranslation(t *testing.T) {
	m := Matrix34{
		{1, 2, 3, 10},
		{4, 5, 6, 11},
		{7, 8, 9, 12},
	}
	r := RotationMatrix(m)
	rows, cols := r.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, m[i][j], r.At(i, j))
		}
	}
	assert.Equal(t, r3.Vec{X: 10, Y: 11, Z: 12}, Translation(m))
}

func TestRotateVector(t *testing.T) {
	quarterZ := QuaternionMatrix34(EulerDegreesToQuaternion(r3.Vec{Z: 90}), r3.Vec{})

	tests := []struct {
		name string
		m    Matrix34
		in   r3.Vec
		want r3.Vec
	}{
		{"identity", IdentityMatrix34(r3.Vec{X: 5}), r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"quarter turn about Z", quarterZ, r3.Vec{X: 1}, r3.Vec{Y: 1}},
		{"quarter turn about Z keeps Z", quarterZ, r3.Vec{Z: 2}, r3.Vec{Z: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVecInDelta(t, tt.want, RotateVector(RotationMatrix(tt.m), tt.in))
		})
	}
}

func TestCombinePosition(t *testing.T) {
	m := IdentityMatrix34(r3.Vec{X: 1, Y: 2, Z: 3})
	got := CombinePosition(m, r3.Vec{X: 0.05, Y: -1, Z: 0.5})
	assertVecInDelta(t, r3.Vec{X: 1.05, Y: 1, Z: 3.5}, got)
}

func TestMultiplyQuaternion_Identity(t *testing.T) {
	q := EulerDegreesToQuaternion(r3.Vec{X: 10, Y: 20, Z: 30})
	assert.Equal(t, q, MultiplyQuaternion(q, identityQuaternion))
	assert.Equal(t, q, MultiplyQuaternion(identityQuaternion, q))
}

func TestMultiplyQuaternion_OffsetIsLocal(t *testing.T) {
	base := EulerDegreesToQuaternion(r3.Vec{Z: 90})
	offset := EulerDegreesToQuaternion(r3.Vec{X: 90})

	got := RotationMatrix(QuaternionMatrix34(MultiplyQuaternion(base, offset), r3.Vec{}))

	var want mat.Dense
	want.Mul(
		RotationMatrix(QuaternionMatrix34(base, r3.Vec{})),
		RotationMatrix(QuaternionMatrix34(offset, r3.Vec{})),
	)
	assert.True(t, mat.EqualApprox(&want, got, eps))
}

func TestRotationQuaternion_RoundTrip(t *testing.T) {
	for _, deg := range []r3.Vec{
		{},
		{X: 90},
		{Y: -45},
		{Z: 179},
		{X: 10, Y: 20, Z: 30},
		{X: -120, Y: 60, Z: 170},
	} {
		q := EulerDegreesToQuaternion(deg)
		got := RotationQuaternion(QuaternionMatrix34(q, r3.Vec{X: 1}))
		assertSameRotation(t, q, got)
	}
}

func TestRotationQuaternion_HalfTurns(t *testing.T) {
	s := math.Sqrt2 / 2
	axes := []r3.Vec{
		{X: 1}, {Y: 1}, {Z: 1},
		{X: s, Y: -s},
		{X: -s, Z: s},
		{Y: s, Z: -s},
		r3.Unit(r3.Vec{X: 1, Y: -2, Z: 3}),
	}
	for _, a := range axes {
		q := quat.Number{Imag: a.X, Jmag: a.Y, Kmag: a.Z}
		got := RotationQuaternion(QuaternionMatrix34(q, r3.Vec{}))
		assertSameRotation(t, q, got)
		assert.InDelta(t, 1.0, quat.Abs(got), eps)
	}
}

func TestDerive_HalfTurnController(t *testing.T) {
	s := math.Sqrt2 / 2
	half := quat.Number{Imag: s, Jmag: -s}
	controller := TrackedDevicePose{
		DeviceToAbsoluteTracking: QuaternionMatrix34(half, r3.Vec{X: 1}),
		PoseIsValid:              true,
	}
	maintain := DriverPose{Rotation: half, Position: r3.Vec{X: 1}, PoseIsValid: true}

	cfg, ok := Derive(maintain, controller, PoseConfiguration{})
	require.True(t, ok)
	assertSameRotation(t, quat.Number{Real: 1}, cfg.OffsetRotation)
	assert.InDelta(t, 0.0, r3.Norm(cfg.OffsetPosition), 1e-9)
}

func TestEulerToQuaternion_UnitNorm(t *testing.T) {
	q := EulerDegreesToQuaternion(r3.Vec{X: 33, Y: -71, Z: 145})
	assert.InDelta(t, 1.0, quat.Abs(q), eps)
}

func TestEulerToQuaternion_AxisAligned(t *testing.T) {
	s := math.Sqrt2 / 2
	assertSameRotation(t, quat.Number{Real: s, Imag: s}, EulerDegreesToQuaternion(r3.Vec{X: 90}))
	assertSameRotation(t, quat.Number{Real: s, Jmag: s}, EulerDegreesToQuaternion(r3.Vec{Y: 90}))
	assertSameRotation(t, quat.Number{Real: s, Kmag: s}, EulerDegreesToQuaternion(r3.Vec{Z: 90}))
}

func TestEulerRoundTrip_AxisAligned(t *testing.T) {
	normalize := func(a float64) float64 {
		a = math.Mod(a, 360)
		if a < 0 {
			a += 360
		}
		if 360-a < 1e-6 {
			a = 0
		}
		return a
	}

	for _, deg := range []r3.Vec{
		{},
		{X: 90}, {X: -90}, {X: 180}, {X: 360},
		{Y: 45}, {Y: -30},
		{Z: 90}, {Z: -135}, {Z: 270},
		{X: 15, Y: 25, Z: 35},
	} {
		got := QuaternionToEulerDegrees(EulerDegreesToQuaternion(deg))
		assert.InDelta(t, normalize(deg.X), normalize(got.X), 1e-6, "x for %v", deg)
		assert.InDelta(t, normalize(deg.Y), normalize(got.Y), 1e-6, "y for %v", deg)
		assert.InDelta(t, normalize(deg.Z), normalize(got.Z), 1e-6, "z for %v", deg)
	}
}
