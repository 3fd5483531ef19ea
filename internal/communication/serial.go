// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package communication

import (
	"io"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/glove_pose/internal/encoding"
)

// NewSerialManager returns a manager for a wired USB serial glove.
func NewSerialManager(portName string, baudRate int, enc encoding.Manager) *StreamManager {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	return NewStreamManager("serial "+portName, enc, func() (io.ReadWriteCloser, error) {
		return serial.Open(opts)
	})
}
