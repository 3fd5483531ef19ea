// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"time"

	"github.com/relabs-tech/glove_pose/internal/app"
	"github.com/relabs-tech/glove_pose/internal/config"
)

func main() {
	configPath := flag.String("config", "./glove_pose_config.txt", "path to configuration file")
	interval := flag.Duration("interval", 11*time.Millisecond, "snapshot interval")
	flag.Parse()

	log.Println("starting glove-pose MQTT tracker (mock)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMockTracker(*interval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
