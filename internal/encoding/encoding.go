// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package encoding decodes the text lines sent by glove firmware and
// encodes force feedback commands sent back to it.
package encoding

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned for lines that cannot be decoded.
var ErrMalformedInput = errors.New("encoding: malformed input")

// Finger indices into InputData.Flexion.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	FingerCount
)

// InputData is one decoded glove sample. Analog values are normalised:
// flexion and trigger to [0,1], joystick to [-1,1].
type InputData struct {
	Flexion      [FingerCount]float64 `json:"flexion"`
	JoyX         float64              `json:"joy_x"`
	JoyY         float64              `json:"joy_y"`
	JoyButton    bool                 `json:"joy_button"`
	TrgButton    bool                 `json:"trg_button"`
	AButton      bool                 `json:"a_button"`
	BButton      bool                 `json:"b_button"`
	Grab         bool                 `json:"grab"`
	Pinch        bool                 `json:"pinch"`
	Menu         bool                 `json:"menu"`
	Calibrate    bool                 `json:"calibrate"`
	TriggerValue float64              `json:"trigger_value"`
}

// ForceFeedback holds per-finger resistance in [0,1000].
type ForceFeedback [FingerCount]int

// Manager converts between firmware lines and structured data.
type Manager interface {
	Decode(line string) (InputData, error)
	Encode(ff ForceFeedback) string
}

type analogScale struct {
	maxAnalogValue float64
}

func newAnalogScale(maxAnalogValue int) (analogScale, error) {
	if maxAnalogValue <= 0 {
		return analogScale{}, fmt.Errorf("encoding: max analog value must be positive, got %d", maxAnalogValue)
	}
	return analogScale{maxAnalogValue: float64(maxAnalogValue)}, nil
}

func (s analogScale) unit(v int) float64 {
	return clamp(float64(v)/s.maxAnalogValue, 0, 1)
}

func (s analogScale) axis(v int) float64 {
	return clamp(2*float64(v)/s.maxAnalogValue-1, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFeedback(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}
