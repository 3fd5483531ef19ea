// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package communication carries glove lines over serial links.
package communication

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/relabs-tech/glove_pose/internal/encoding"
)

var (
	// ErrNotConnected is returned when writing to a closed link.
	ErrNotConnected = errors.New("communication: not connected")

	// ErrPortNotFound is returned when no system port matches a device name.
	ErrPortNotFound = errors.New("communication: port not found")
)

// Manager is a link to one glove.
type Manager interface {
	Connect() error
	// BeginListener decodes every incoming line and passes it to fn on the
	// listener goroutine. Lines that fail to decode are dropped.
	BeginListener(fn func(encoding.InputData))
	Write(ff encoding.ForceFeedback) error
	IsConnected() bool
	Disconnect() error
}

// StreamManager implements Manager over any line-oriented byte stream.
type StreamManager struct {
	name string
	open func() (io.ReadWriteCloser, error)
	enc  encoding.Manager

	mu        sync.Mutex
	port      io.ReadWriteCloser
	connected atomic.Bool
	wg        sync.WaitGroup
}

// NewStreamManager returns a manager that opens its stream with open.
func NewStreamManager(name string, enc encoding.Manager, open func() (io.ReadWriteCloser, error)) *StreamManager {
	return &StreamManager{name: name, open: open, enc: enc}
}

func (m *StreamManager) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port != nil {
		if m.connected.Load() {
			return nil
		}
		// the remote end dropped; release the dead stream before reopening
		m.port.Close()
		m.wg.Wait()
		m.port = nil
	}
	port, err := m.open()
	if err != nil {
		return fmt.Errorf("%s: open: %w", m.name, err)
	}
	m.port = port
	m.connected.Store(true)
	log.Printf("communication: %s connected", m.name)
	return nil
}

func (m *StreamManager) BeginListener(fn func(encoding.InputData)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port == nil {
		log.Printf("communication: %s listener not started, not connected", m.name)
		return
	}
	m.wg.Add(1)
	go m.listen(m.port, fn)
}

func (m *StreamManager) listen(port io.Reader, fn func(encoding.InputData)) {
	defer m.wg.Done()

	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if m.connected.Swap(false) {
				log.Printf("communication: %s read error: %v", m.name, err)
			}
			return
		}

		data, err := m.enc.Decode(line)
		if err != nil {
			// partial lines are common right after connecting
			continue
		}
		fn(data)
	}
}

func (m *StreamManager) Write(ff encoding.ForceFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port == nil || !m.connected.Load() {
		return ErrNotConnected
	}
	if _, err := io.WriteString(m.port, m.enc.Encode(ff)); err != nil {
		return fmt.Errorf("%s: write: %w", m.name, err)
	}
	return nil
}

func (m *StreamManager) IsConnected() bool {
	return m.connected.Load()
}

// Disconnect closes the stream and waits for the listener to exit.
func (m *StreamManager) Disconnect() error {
	m.mu.Lock()
	port := m.port
	m.port = nil
	m.connected.Store(false)
	m.mu.Unlock()

	if port == nil {
		return nil
	}
	err := port.Close()
	m.wg.Wait()
	log.Printf("communication: %s disconnected", m.name)
	return err
}
