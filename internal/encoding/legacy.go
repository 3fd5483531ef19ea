// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// legacyMinFields is five fingers plus the two joystick axes.
const legacyMinFields = FingerCount + 2

// LegacyManager handles the `&`-separated format:
//
//	thumb&index&middle&ring&pinky&joyX&joyY&joyBtn&trgBtn&aBtn&bBtn&grab&pinch
//
// Trailing button fields may be omitted and read as released.
type LegacyManager struct {
	scale analogScale
}

// NewLegacyManager returns a legacy codec for the given full-scale value.
func NewLegacyManager(maxAnalogValue int) (*LegacyManager, error) {
	scale, err := newAnalogScale(maxAnalogValue)
	if err != nil {
		return nil, err
	}
	return &LegacyManager{scale: scale}, nil
}

func (m *LegacyManager) Decode(line string) (InputData, error) {
	fields := strings.Split(strings.TrimSpace(line), "&")
	if len(fields) < legacyMinFields {
		return InputData{}, fmt.Errorf("%w: %d fields, want at least %d", ErrMalformedInput, len(fields), legacyMinFields)
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return InputData{}, fmt.Errorf("%w: field %d %q", ErrMalformedInput, i, f)
		}
		values[i] = v
	}

	var data InputData
	for i := 0; i < FingerCount; i++ {
		data.Flexion[i] = m.scale.unit(values[i])
	}
	data.JoyX = m.scale.axis(values[5])
	data.JoyY = m.scale.axis(values[6])

	buttons := []*bool{&data.JoyButton, &data.TrgButton, &data.AButton, &data.BButton, &data.Grab, &data.Pinch}
	for i, b := range buttons {
		idx := legacyMinFields + i
		if idx >= len(values) {
			break
		}
		*b = values[idx] == 1
	}
	return data, nil
}

func (m *LegacyManager) Encode(ff ForceFeedback) string {
	parts := make([]string, FingerCount)
	for i, v := range ff {
		parts[i] = strconv.Itoa(clampFeedback(v))
	}
	return strings.Join(parts, "&") + "\n"
}
