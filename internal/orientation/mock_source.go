// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
	phase float64
}

// NewMockSource creates a mock orientation source that
// generates smooth changing values.
func NewMockSource() Source {
	return NewMockSourcePhase(0)
}

// NewMockSourcePhase is NewMockSource shifted by phase seconds, so two
// mock controllers do not move in lockstep.
func NewMockSourcePhase(phase float64) Source {
	return &mockSource{start: time.Now(), now: time.Now, phase: phase}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := m.now().Sub(m.start).Seconds() + m.phase

	return Pose{
		Roll:  20 * math.Sin(elapsed),
		Pitch: 15 * math.Cos(elapsed*0.7),
		Yaw:   math.Mod(elapsed*30, 360),
	}, nil
}
