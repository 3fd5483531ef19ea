// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_pose/internal/config"
	"github.com/relabs-tech/glove_pose/internal/host"
	"github.com/relabs-tech/glove_pose/internal/orientation"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	for _, role := range []pose.Role{pose.RoleLeftHand, pose.RoleRightHand} {
		if err := subscribeConsole(client, cfg.TopicPose(role), func(payload []byte) {
			var m host.PoseMessage
			if err := json.Unmarshal(payload, &m); err != nil {
				log.Printf("console: pose unmarshal error: %v", err)
				return
			}
			fmt.Println(formatPose(m))
		}); err != nil {
			return err
		}

		if err := subscribeConsole(client, cfg.TopicInput(role), func(payload []byte) {
			var m host.InputMessage
			if err := json.Unmarshal(payload, &m); err != nil {
				log.Printf("console: input unmarshal error: %v", err)
				return
			}
			fmt.Println(formatInput(m))
		}); err != nil {
			return err
		}
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	return nil
}

func subscribeConsole(client mqtt.Client, topic string, fn func([]byte)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		fn(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", topic)
	return nil
}

func handTag(role string) string {
	if role == pose.RoleRightHand.String() {
		return "R"
	}
	return "L"
}

func formatPose(m host.PoseMessage) string {
	p := m.Pose
	if !p.DeviceIsConnected {
		return fmt.Sprintf("[POSE-%s] %s disconnected", handTag(m.Role), m.Serial)
	}
	if !p.PoseIsValid {
		return fmt.Sprintf("[POSE-%s] %s not tracking (%s)", handTag(m.Role), m.Serial, p.Result)
	}
	o := orientation.FromQuaternion(p.Rotation)
	return fmt.Sprintf(
		"[POSE-%s] x=%7.3f y=%7.3f z=%7.3f  ROLL=%7.2f PITCH=%7.2f YAW=%7.2f",
		handTag(m.Role), p.Position.X, p.Position.Y, p.Position.Z, o.Roll, o.Pitch, o.Yaw,
	)
}

func formatInput(m host.InputMessage) string {
	in := m.Input
	return fmt.Sprintf(
		"[IN-%s]   flex=%.2f/%.2f/%.2f/%.2f/%.2f joy=(%5.2f,%5.2f) trg=%.2f grab=%t pinch=%t a=%t b=%t",
		handTag(m.Role),
		in.Flexion[0], in.Flexion[1], in.Flexion[2], in.Flexion[3], in.Flexion[4],
		in.JoyX, in.JoyY, in.TriggerValue, in.Grab, in.Pinch, in.AButton, in.BButton,
	)
}
