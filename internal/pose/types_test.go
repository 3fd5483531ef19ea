// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pose

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingResultJSON(t *testing.T) {
	for _, r := range []TrackingResult{TrackingResultRunningOK, TrackingResultUninitialized} {
		payload, err := json.Marshal(DriverPose{Result: r})
		require.NoError(t, err)

		var got DriverPose
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, r, got.Result)
	}

	var r TrackingResult
	assert.Error(t, r.UnmarshalText([]byte("Calibrating_InProgress")))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"left", RoleLeftHand, true},
		{"right", RoleRightHand, true},
		{"RIGHT", RoleRightHand, true},
		{"both", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		}
	}
}

func mustParse(t *testing.T, s string) Role {
	t.Helper()
	r, ok := ParseRole(s)
	require.True(t, ok)
	return r
}

func TestDeviceIndexValid(t *testing.T) {
	assert.True(t, TrackedDeviceIndex(0).Valid())
	assert.True(t, TrackedDeviceIndex(MaxTrackedDeviceCount).Valid())
	assert.False(t, InvalidDeviceIndex.Valid())
}
