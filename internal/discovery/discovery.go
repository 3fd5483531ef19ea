// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package discovery resolves which tracked controller a glove shadows by
// listening for reports on an MQTT topic.
//
// The driver publishes a retained request on <topic>/request describing the
// hand it needs. Whoever can see the host's device list (the overlay, or the
// discover command) answers on <topic> with {"controllerId": N}. Reports may
// repeat; the newest one wins.
package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_pose/internal/pose"
)

const defaultTimeout = 5 * time.Second

var (
	// ErrInvalidTopic is returned for an empty discovery topic.
	ErrInvalidTopic = errors.New("discovery: topic cannot be empty")

	// ErrTimeout is returned when the broker does not acknowledge in time.
	ErrTimeout = errors.New("discovery: operation timed out")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("discovery: already started")
)

var _ pose.Discoverer = (*MQTTDiscoverer)(nil)

// RequestTopic is where the driver announces what it is looking for.
func RequestTopic(topic string) string {
	return topic + "/request"
}

// MQTTDiscoverer implements pose.Discoverer over MQTT.
type MQTTDiscoverer struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration

	mu      sync.Mutex
	started bool
}

// NewMQTTDiscoverer listens for reports on topic using a connected client.
func NewMQTTDiscoverer(client mqtt.Client, topic string) *MQTTDiscoverer {
	return &MQTTDiscoverer{
		client:  client,
		topic:   topic,
		qos:     1,
		timeout: defaultTimeout,
	}
}

// Start publishes the request and subscribes to reports. fn runs on the
// MQTT client's goroutine.
func (d *MQTTDiscoverer) Start(req pose.DiscoveryRequest, fn func(pose.ControllerDiscovery)) error {
	if d.topic == "" {
		return ErrInvalidTopic
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return ErrAlreadyStarted
	}

	payload, err := json.Marshal(requestPayload{Role: req.Role.String(), Manufacturer: req.Manufacturer})
	if err != nil {
		return fmt.Errorf("discovery: marshal request: %w", err)
	}
	if err := d.wait(d.client.Publish(RequestTopic(d.topic), d.qos, true, payload)); err != nil {
		return fmt.Errorf("discovery: publish request: %w", err)
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		report, err := ParseReport(msg.Payload())
		if err != nil {
			log.Printf("discovery: %s: %v", msg.Topic(), err)
			return
		}
		fn(report)
	}
	if err := d.wait(d.client.Subscribe(d.topic, d.qos, handler)); err != nil {
		return fmt.Errorf("discovery: subscribe %s: %w", d.topic, err)
	}

	d.started = true
	log.Printf("discovery: waiting for %s hand controller on %s", req.Role, d.topic)
	return nil
}

// Stop unsubscribes. Calling Stop before Start is a no-op.
func (d *MQTTDiscoverer) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return nil
	}
	d.started = false
	if err := d.wait(d.client.Unsubscribe(d.topic)); err != nil {
		return fmt.Errorf("discovery: unsubscribe %s: %w", d.topic, err)
	}
	return nil
}

func (d *MQTTDiscoverer) wait(token mqtt.Token) error {
	if !token.WaitTimeout(d.timeout) {
		return fmt.Errorf("%w after %v", ErrTimeout, d.timeout)
	}
	return token.Error()
}

type requestPayload struct {
	Role         string `json:"role"`
	Manufacturer string `json:"manufacturer"`
}

type reportPayload struct {
	ControllerID *int64 `json:"controllerId"`
}

// ParseReport decodes {"controllerId": N}.
func ParseReport(payload []byte) (pose.ControllerDiscovery, error) {
	var p reportPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return pose.ControllerDiscovery{}, fmt.Errorf("invalid report: %w", err)
	}
	if p.ControllerID == nil {
		return pose.ControllerDiscovery{}, fmt.Errorf("invalid report: missing controllerId")
	}
	id := *p.ControllerID
	if id < 0 || id >= int64(pose.InvalidDeviceIndex) {
		return pose.ControllerDiscovery{}, fmt.Errorf("invalid report: controllerId %d out of range", id)
	}
	return pose.ControllerDiscovery{ControllerID: pose.TrackedDeviceIndex(id)}, nil
}

// PublishReport announces the controller for a hand. The report is retained
// so drivers started later still receive it.
func PublishReport(client mqtt.Client, topic string, id pose.TrackedDeviceIndex) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	payload, err := json.Marshal(pose.ControllerDiscovery{ControllerID: id})
	if err != nil {
		return fmt.Errorf("discovery: marshal report: %w", err)
	}
	token := client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(defaultTimeout) {
		return fmt.Errorf("%w after %v", ErrTimeout, defaultTimeout)
	}
	return token.Error()
}
