// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/glove_pose/internal/app"
	"github.com/relabs-tech/glove_pose/internal/config"
)

func main() {
	configPath := flag.String("config", "./glove_pose_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting glove-pose console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
