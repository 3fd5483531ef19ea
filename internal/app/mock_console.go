// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/glove_pose/internal/host"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// RunMockConsole shadows a simulated controller without a broker or glove
// and prints the resulting pose.
func RunMockConsole() error {
	tracker := host.DefaultMockTracker()
	cfg := pose.NewPoseConfiguration(
		r3.Vec{Z: 0.1},
		r3.Vec{},
		0,
		true,
		int(host.MockLeftControllerIndex),
	)
	engine := pose.NewControllerPose(pose.RoleLeftHand, "LucidGloves", cfg, tracker, nil, nil)
	defer engine.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		m := host.PoseMessage{
			Serial: "mock-left",
			Role:   pose.RoleLeftHand.String(),
			Pose:   engine.UpdatePose(),
		}
		fmt.Println(formatPose(m))
	}
	return nil
}
