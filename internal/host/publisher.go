// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_pose/internal/encoding"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// Topics are the output topics of one hand.
type Topics struct {
	Pose  string
	Input string
}

// PoseMessage is published on the hand's pose topic every frame.
type PoseMessage struct {
	Serial string          `json:"serial"`
	Role   string          `json:"role"`
	Pose   pose.DriverPose `json:"pose"`
}

// InputMessage is published on the hand's input topic every frame.
type InputMessage struct {
	Serial string             `json:"serial"`
	Role   string             `json:"role"`
	Input  encoding.InputData `json:"input"`
}

// Publisher sends driver poses and input to the host runtime. Publishes
// are fire-and-forget so a slow broker never stalls a frame.
type Publisher struct {
	client mqtt.Client
	topics map[pose.Role]Topics
}

// NewPublisher creates a publisher with per-hand topics.
func NewPublisher(client mqtt.Client, topics map[pose.Role]Topics) *Publisher {
	return &Publisher{client: client, topics: topics}
}

// PublishPose sends one frame's driver pose.
func (p *Publisher) PublishPose(role pose.Role, serial string, dp pose.DriverPose) error {
	t, ok := p.topics[role]
	if !ok || t.Pose == "" {
		return fmt.Errorf("%w: pose topic for %s hand", ErrInvalidTopic, role)
	}
	payload, err := json.Marshal(PoseMessage{Serial: serial, Role: role.String(), Pose: dp})
	if err != nil {
		return fmt.Errorf("host: marshal pose: %w", err)
	}
	p.client.Publish(t.Pose, 0, false, payload)
	return nil
}

// PublishInput sends one frame's decoded glove input.
func (p *Publisher) PublishInput(role pose.Role, serial string, in encoding.InputData) error {
	t, ok := p.topics[role]
	if !ok || t.Input == "" {
		return fmt.Errorf("%w: input topic for %s hand", ErrInvalidTopic, role)
	}
	payload, err := json.Marshal(InputMessage{Serial: serial, Role: role.String(), Input: in})
	if err != nil {
		return fmt.Errorf("host: marshal input: %w", err)
	}
	p.client.Publish(t.Input, 0, false, payload)
	return nil
}
