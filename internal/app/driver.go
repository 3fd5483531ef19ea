// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_pose/internal/config"
	"github.com/relabs-tech/glove_pose/internal/device"
	"github.com/relabs-tech/glove_pose/internal/discovery"
	"github.com/relabs-tech/glove_pose/internal/encoding"
	"github.com/relabs-tech/glove_pose/internal/host"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// RunDriver runs the glove driver until SIGINT or SIGTERM.
func RunDriver() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	var store pose.Store
	if cfg.CalibrationFile != "" {
		s := config.NewCalibrationStore(cfg.CalibrationFile)
		if err := s.Apply(cfg); err != nil {
			return err
		}
		log.Printf("driver: calibration file %s", s.Path())
		store = s
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDriver)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	bridge := host.NewBridge(client, cfg.TopicRawPoses)
	if err := bridge.Start(); err != nil {
		return err
	}
	defer bridge.Stop()

	provider, err := newProvider(cfg, client, bridge, store)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Cleanup(); err != nil {
			log.Printf("driver: cleanup: %v", err)
		}
	}()

	if err := provider.Activate(); err != nil {
		// the pose keeps flowing without the glove link
		log.Printf("driver: %v", err)
	}

	hands := make(map[pose.Role]Calibrator)
	for _, d := range provider.Drivers() {
		hands[d.Role()] = d
		if err := subscribeFeedback(client, cfg.TopicFeedback(d.Role()), d); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := RunCalibrationServer(ctx, cfg.CalibrationServerPort, NewCalibrationHandler(hands)); err != nil {
			log.Printf("driver: %v", err)
		}
	}()

	interval := time.Duration(cfg.FrameInterval) * time.Millisecond
	log.Printf("driver: running %d hand(s), frame every %v", len(provider.Drivers()), interval)
	runFrames(ctx, interval, provider)

	log.Println("driver: shutting down")
	return nil
}

func newProvider(cfg *config.Config, client mqtt.Client, h pose.Host, store pose.Store) (*device.Provider, error) {
	topics := map[pose.Role]host.Topics{
		pose.RoleLeftHand:  {Pose: cfg.TopicPose(pose.RoleLeftHand), Input: cfg.TopicInput(pose.RoleLeftHand)},
		pose.RoleRightHand: {Pose: cfg.TopicPose(pose.RoleRightHand), Input: cfg.TopicInput(pose.RoleRightHand)},
	}
	return device.NewProvider(cfg, device.Dependencies{
		Host:  h,
		Sink:  host.NewPublisher(client, topics),
		Store: store,
		Discoverer: func(role pose.Role) pose.Discoverer {
			return discovery.NewMQTTDiscoverer(client, cfg.TopicDiscovery(role))
		},
	})
}

func subscribeFeedback(client mqtt.Client, topic string, d device.Driver) error {
	return host.SubscribeFeedback(client, topic, func(ff encoding.ForceFeedback) {
		if err := d.ForceFeedback(ff); err != nil {
			log.Printf("driver: %s force feedback: %v", d.SerialNumber(), err)
		}
	})
}

// FrameRunner runs one frame for every device.
type FrameRunner interface {
	RunFrame() error
}

// runFrames ticks r until ctx is done. A failing frame is logged when its
// error differs from the previous frame's, so a persistent fault logs once.
func runFrames(ctx context.Context, interval time.Duration, r FrameRunner) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := r.RunFrame()
			msg := ""
			if err != nil {
				msg = err.Error()
			}
			if msg != lastErr && msg != "" {
				log.Printf("driver: frame: %v", err)
			}
			lastErr = msg
		}
	}
}
