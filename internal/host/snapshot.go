// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package host bridges the glove driver to the tracking runtime over MQTT:
// raw device poses come in as snapshots, driver poses and input go out.
package host

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/relabs-tech/glove_pose/internal/pose"
)

// DevicePose is one entry of a snapshot.
type DevicePose struct {
	Index pose.TrackedDeviceIndex `json:"index"`
	pose.TrackedDevicePose
}

// Snapshot is the wire form of the host's raw tracked device poses. Devices
// not listed read as disconnected.
type Snapshot struct {
	Timestamp time.Time    `json:"timestamp"`
	Poses     []DevicePose `json:"poses"`
}

// DecodeSnapshot parses a JSON snapshot.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return Snapshot{}, fmt.Errorf("host: invalid snapshot: %w", err)
	}
	return s, nil
}

// Table expands the snapshot into a dense array indexed by device.
// Entries beyond MaxTrackedDeviceCount are dropped; on duplicate indices
// the last entry wins.
func (s Snapshot) Table() []pose.TrackedDevicePose {
	table := make([]pose.TrackedDevicePose, pose.MaxTrackedDeviceCount)
	for _, p := range s.Poses {
		if uint64(p.Index) >= uint64(len(table)) {
			continue
		}
		table[p.Index] = p.TrackedDevicePose
	}
	return table
}
