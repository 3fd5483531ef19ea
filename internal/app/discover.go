// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"

	"github.com/relabs-tech/glove_pose/internal/config"
	"github.com/relabs-tech/glove_pose/internal/discovery"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// RunDiscover tells the driver which controller a hand should shadow.
func RunDiscover(hand string, controllerID int) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	role, ok := pose.ParseRole(hand)
	if !ok {
		return fmt.Errorf("unknown hand %q (want left or right)", hand)
	}
	if controllerID < 0 || controllerID >= pose.MaxTrackedDeviceCount {
		return fmt.Errorf("controller id %d out of range [0, %d)", controllerID, pose.MaxTrackedDeviceCount)
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDiscovery)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	topic := cfg.TopicDiscovery(role)
	if err := discovery.PublishReport(client, topic, pose.TrackedDeviceIndex(controllerID)); err != nil {
		return err
	}
	log.Printf("discover: %s hand -> controller %d on %s", role, controllerID, topic)
	return nil
}
