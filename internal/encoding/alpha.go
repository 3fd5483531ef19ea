// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// AlphaManager handles the letter-keyed format, e.g. "A512B0C1023F511G511H".
// A letter followed by digits carries an analog value; a bare letter is a
// pressed button.
//
//	A-E fingers, F/G joystick, H joystick button, I trigger button,
//	J A button, K B button, L grab, M pinch, N menu, O calibrate,
//	P analog trigger
type AlphaManager struct {
	scale analogScale
}

// NewAlphaManager returns an alpha codec for the given full-scale value.
func NewAlphaManager(maxAnalogValue int) (*AlphaManager, error) {
	scale, err := newAnalogScale(maxAnalogValue)
	if err != nil {
		return nil, err
	}
	return &AlphaManager{scale: scale}, nil
}

type alphaField struct {
	key      byte
	value    int
	hasValue bool
}

func parseAlpha(line string) ([]alphaField, error) {
	var fields []alphaField
	for i := 0; i < len(line); {
		c := line[i]
		if c < 'A' || c > 'Z' {
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrMalformedInput, c, i)
		}
		j := i + 1
		for j < len(line) && line[j] >= '0' && line[j] <= '9' {
			j++
		}
		f := alphaField{key: c}
		if j > i+1 {
			v, err := strconv.Atoi(line[i+1 : j])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
			}
			f.value, f.hasValue = v, true
		}
		fields = append(fields, f)
		i = j
	}
	return fields, nil
}

func (m *AlphaManager) Decode(line string) (InputData, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return InputData{}, fmt.Errorf("%w: empty line", ErrMalformedInput)
	}

	fields, err := parseAlpha(line)
	if err != nil {
		return InputData{}, err
	}

	var data InputData
	for _, f := range fields {
		switch f.key {
		case 'A', 'B', 'C', 'D', 'E':
			if f.hasValue {
				data.Flexion[f.key-'A'] = m.scale.unit(f.value)
			}
		case 'F':
			if f.hasValue {
				data.JoyX = m.scale.axis(f.value)
			}
		case 'G':
			if f.hasValue {
				data.JoyY = m.scale.axis(f.value)
			}
		case 'H':
			data.JoyButton = true
		case 'I':
			data.TrgButton = true
		case 'J':
			data.AButton = true
		case 'K':
			data.BButton = true
		case 'L':
			data.Grab = true
		case 'M':
			data.Pinch = true
		case 'N':
			data.Menu = true
		case 'O':
			data.Calibrate = true
		case 'P':
			if f.hasValue {
				data.TriggerValue = m.scale.unit(f.value)
			}
		}
	}
	return data, nil
}

func (m *AlphaManager) Encode(ff ForceFeedback) string {
	var b strings.Builder
	for i, v := range ff {
		b.WriteByte(byte('A' + i))
		b.WriteString(strconv.Itoa(clampFeedback(v)))
	}
	b.WriteByte('\n')
	return b.String()
}
