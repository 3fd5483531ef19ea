// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagers_RejectNonPositiveMax(t *testing.T) {
	_, err := NewLegacyManager(0)
	assert.Error(t, err)
	_, err = NewAlphaManager(-1)
	assert.Error(t, err)
}

func TestLegacyDecode(t *testing.T) {
	m, err := NewLegacyManager(1000)
	require.NoError(t, err)

	t.Run("full line", func(t *testing.T) {
		data, err := m.Decode("0&250&500&750&1000&1000&0&1&0&1&0&1&1\n")
		require.NoError(t, err)

		assert.Equal(t, [FingerCount]float64{0, 0.25, 0.5, 0.75, 1}, data.Flexion)
		assert.Equal(t, 1.0, data.JoyX)
		assert.Equal(t, -1.0, data.JoyY)
		assert.True(t, data.JoyButton)
		assert.False(t, data.TrgButton)
		assert.True(t, data.AButton)
		assert.False(t, data.BButton)
		assert.True(t, data.Grab)
		assert.True(t, data.Pinch)
	})

	t.Run("buttons omitted", func(t *testing.T) {
		data, err := m.Decode("100&100&100&100&100&500&500")
		require.NoError(t, err)
		assert.Equal(t, 0.0, data.JoyX)
		assert.False(t, data.JoyButton)
		assert.False(t, data.Pinch)
	})

	t.Run("out of range clamps", func(t *testing.T) {
		data, err := m.Decode("2000&-5&0&0&0&3000&-3000")
		require.NoError(t, err)
		assert.Equal(t, 1.0, data.Flexion[Thumb])
		assert.Equal(t, 0.0, data.Flexion[Index])
		assert.Equal(t, 1.0, data.JoyX)
		assert.Equal(t, -1.0, data.JoyY)
	})

	for _, line := range []string{"", "1&2&3", "1&2&3&4&5&6&x"} {
		_, err := m.Decode(line)
		assert.ErrorIs(t, err, ErrMalformedInput, "line %q", line)
	}
}

func TestLegacyEncode(t *testing.T) {
	m, err := NewLegacyManager(1023)
	require.NoError(t, err)
	assert.Equal(t, "0&250&500&1000&1000\n", m.Encode(ForceFeedback{0, 250, 500, 1000, 4000}))
}

func TestAlphaDecode(t *testing.T) {
	m, err := NewAlphaManager(1000)
	require.NoError(t, err)

	t.Run("analog and buttons", func(t *testing.T) {
		data, err := m.Decode("A0B250C500D750E1000F500G1000HIJKLMNOP500\n")
		require.NoError(t, err)

		assert.Equal(t, [FingerCount]float64{0, 0.25, 0.5, 0.75, 1}, data.Flexion)
		assert.Equal(t, 0.0, data.JoyX)
		assert.Equal(t, 1.0, data.JoyY)
		assert.True(t, data.JoyButton)
		assert.True(t, data.TrgButton)
		assert.True(t, data.AButton)
		assert.True(t, data.BButton)
		assert.True(t, data.Grab)
		assert.True(t, data.Pinch)
		assert.True(t, data.Menu)
		assert.True(t, data.Calibrate)
		assert.Equal(t, 0.5, data.TriggerValue)
	})

	t.Run("partial line", func(t *testing.T) {
		data, err := m.Decode("C1000Z42")
		require.NoError(t, err)
		assert.Equal(t, 1.0, data.Flexion[Middle])
		assert.Equal(t, 0.0, data.Flexion[Thumb])
		assert.False(t, data.JoyButton)
	})

	for _, line := range []string{"", "a100", "A1-2", "12"} {
		_, err := m.Decode(line)
		assert.ErrorIs(t, err, ErrMalformedInput, "line %q", line)
	}
}

func TestAlphaEncode(t *testing.T) {
	m, err := NewAlphaManager(4095)
	require.NoError(t, err)
	assert.Equal(t, "A0B10C20D30E0\n", m.Encode(ForceFeedback{0, 10, 20, 30, -5}))
}
