// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_pose/internal/pose"
)

const defaultTimeout = 5 * time.Second

var (
	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("host: topic cannot be empty")

	// ErrTimeout is returned when the broker does not acknowledge in time.
	ErrTimeout = errors.New("host: operation timed out")
)

var (
	_ pose.Host = (*Bridge)(nil)
	_ pose.Host = (*MockTracker)(nil)
)

// Bridge keeps the latest raw pose snapshot received on an MQTT topic and
// serves it as a pose.Host.
type Bridge struct {
	client mqtt.Client
	topic  string

	poses atomic.Pointer[[]pose.TrackedDevicePose]

	mu         sync.Mutex
	subscribed bool
}

// NewBridge creates a bridge reading snapshots from topic. Until the first
// snapshot arrives every device reads as disconnected.
func NewBridge(client mqtt.Client, topic string) *Bridge {
	b := &Bridge{client: client, topic: topic}
	empty := make([]pose.TrackedDevicePose, pose.MaxTrackedDeviceCount)
	b.poses.Store(&empty)
	return b
}

// Start subscribes to the snapshot topic.
func (b *Bridge) Start() error {
	if b.topic == "" {
		return ErrInvalidTopic
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribed {
		return nil
	}

	token := b.client.Subscribe(b.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := b.Apply(msg.Payload()); err != nil {
			log.Printf("host: %v", err)
		}
	})
	if err := wait(token); err != nil {
		return fmt.Errorf("host: subscribe %s: %w", b.topic, err)
	}
	b.subscribed = true
	log.Printf("host: subscribed to %s", b.topic)
	return nil
}

// Stop unsubscribes. The last snapshot stays readable.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.subscribed {
		return nil
	}
	b.subscribed = false
	if err := wait(b.client.Unsubscribe(b.topic)); err != nil {
		return fmt.Errorf("host: unsubscribe %s: %w", b.topic, err)
	}
	return nil
}

// Apply replaces the current snapshot with payload.
func (b *Bridge) Apply(payload []byte) error {
	s, err := DecodeSnapshot(payload)
	if err != nil {
		return err
	}
	table := s.Table()
	b.poses.Store(&table)
	return nil
}

// RawTrackedDevicePoses returns the latest snapshot. The slice is shared
// and must not be modified.
func (b *Bridge) RawTrackedDevicePoses() []pose.TrackedDevicePose {
	return *b.poses.Load()
}

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(defaultTimeout) {
		return fmt.Errorf("%w after %v", ErrTimeout, defaultTimeout)
	}
	return token.Error()
}
