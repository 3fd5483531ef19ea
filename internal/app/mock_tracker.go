// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/glove_pose/internal/config"
	"github.com/relabs-tech/glove_pose/internal/host"
)

// RunMockTracker publishes simulated raw pose snapshots so the driver can
// run without a tracking runtime.
func RunMockTracker(interval time.Duration) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDTracker)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := host.DefaultMockTracker()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("tracker: publishing to %s every %v", cfg.TopicRawPoses, interval)
	published := 0
	for {
		select {
		case <-ctx.Done():
			log.Printf("tracker: shutting down after %d snapshots", published)
			return nil
		case <-ticker.C:
		}

		payload, err := json.Marshal(tracker.Snapshot())
		if err != nil {
			log.Printf("tracker: json marshal error: %v", err)
			continue
		}

		token := client.Publish(cfg.TopicRawPoses, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("tracker: MQTT publish error: %v", token.Error())
			continue
		}
		published++
	}
}
