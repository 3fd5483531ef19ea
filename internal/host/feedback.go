// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_pose/internal/encoding"
)

// ParseFeedback decodes a force feedback command: a JSON array of five
// per-finger values, thumb first.
func ParseFeedback(payload []byte) (encoding.ForceFeedback, error) {
	var values []int
	if err := json.Unmarshal(payload, &values); err != nil {
		return encoding.ForceFeedback{}, fmt.Errorf("host: invalid feedback: %w", err)
	}
	if len(values) != encoding.FingerCount {
		return encoding.ForceFeedback{}, fmt.Errorf("host: invalid feedback: want %d values, got %d", encoding.FingerCount, len(values))
	}
	var ff encoding.ForceFeedback
	copy(ff[:], values)
	return ff, nil
}

// SubscribeFeedback delivers force feedback commands from topic to fn.
// Malformed commands are logged and dropped.
func SubscribeFeedback(client mqtt.Client, topic string, fn func(encoding.ForceFeedback)) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		ff, err := ParseFeedback(msg.Payload())
		if err != nil {
			log.Printf("%v (topic %s)", err, msg.Topic())
			return
		}
		fn(ff)
	})
	if err := wait(token); err != nil {
		return fmt.Errorf("host: subscribe %s: %w", topic, err)
	}
	return nil
}
