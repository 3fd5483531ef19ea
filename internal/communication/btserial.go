// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package communication

import (
	"fmt"
	"io"
	"strings"

	"go.bug.st/serial"

	"github.com/relabs-tech/glove_pose/internal/encoding"
)

// NewBTSerialManager returns a manager for a glove paired over Bluetooth
// serial. name is matched against the system's serial ports on Connect.
func NewBTSerialManager(name string, baudRate int, enc encoding.Manager) *StreamManager {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return NewStreamManager("btserial "+name, enc, func() (io.ReadWriteCloser, error) {
		ports, err := serial.GetPortsList()
		if err != nil {
			return nil, fmt.Errorf("list ports: %w", err)
		}
		portName, err := resolvePort(name, ports)
		if err != nil {
			return nil, err
		}
		return serial.Open(portName, mode)
	})
}

// resolvePort returns the exact port called name, otherwise the first
// port whose path contains name, ignoring case.
func resolvePort(name string, ports []string) (string, error) {
	for _, p := range ports {
		if p == name {
			return p, nil
		}
	}
	lower := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p), lower) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrPortNotFound, name)
}
