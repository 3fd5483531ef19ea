// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/glove_pose/internal/orientation"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// Device indices used by DefaultMockTracker.
const (
	MockLeftControllerIndex  pose.TrackedDeviceIndex = 1
	MockRightControllerIndex pose.TrackedDeviceIndex = 2
)

// MockController is a simulated tracked controller.
type MockController struct {
	Index    pose.TrackedDeviceIndex
	Position r3.Vec
	Source   orientation.Source
}

// MockTracker simulates a host runtime with a few moving controllers.
type MockTracker struct {
	controllers []MockController
	now         func() time.Time
}

// NewMockTracker simulates the given controllers.
func NewMockTracker(controllers ...MockController) *MockTracker {
	return &MockTracker{controllers: controllers, now: time.Now}
}

// DefaultMockTracker simulates one controller per hand at shoulder width.
func DefaultMockTracker() *MockTracker {
	return NewMockTracker(
		MockController{
			Index:    MockLeftControllerIndex,
			Position: r3.Vec{X: -0.2, Y: 1.0, Z: -0.3},
			Source:   orientation.NewMockSource(),
		},
		MockController{
			Index:    MockRightControllerIndex,
			Position: r3.Vec{X: 0.2, Y: 1.0, Z: -0.3},
			Source:   orientation.NewMockSourcePhase(1.5),
		},
	)
}

// Snapshot samples every controller. A controller whose source fails is
// reported connected but not tracking.
func (m *MockTracker) Snapshot() Snapshot {
	s := Snapshot{Timestamp: m.now()}
	for _, c := range m.controllers {
		entry := DevicePose{Index: c.Index}
		entry.DeviceIsConnected = true

		o, err := c.Source.Next()
		if err == nil {
			entry.DeviceToAbsoluteTracking = pose.QuaternionMatrix34(o.Quaternion(), c.Position)
			entry.PoseIsValid = true
		}
		s.Poses = append(s.Poses, entry)
	}
	return s
}

// RawTrackedDevicePoses samples the controllers directly, so the tracker
// can stand in for the host without a broker.
func (m *MockTracker) RawTrackedDevicePoses() []pose.TrackedDevicePose {
	return m.Snapshot().Table()
}
