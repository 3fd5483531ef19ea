// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string `validate:"required"`
	MQTTClientIDDriver    string `validate:"required"`
	MQTTClientIDConsole   string
	MQTTClientIDDiscovery string
	MQTTClientIDTracker   string

	// Topics
	TopicRawPoses       string `validate:"required"`
	TopicPoseLeft       string `validate:"required"`
	TopicPoseRight      string `validate:"required"`
	TopicInputLeft      string `validate:"required"`
	TopicInputRight     string `validate:"required"`
	TopicDiscoveryLeft  string `validate:"required"`
	TopicDiscoveryRight string `validate:"required"`
	TopicFeedbackLeft   string `validate:"required"`
	TopicFeedbackRight  string `validate:"required"`

	// Hands
	LeftEnabled  bool
	RightEnabled bool

	// Protocol selection. Unknown values fall back to the defaults
	// (serial, legacy, lucidgloves) when the device is built.
	CommunicationProtocol int `validate:"gte=0"`
	EncodingProtocol      int `validate:"gte=0"`
	DeviceDriver          int `validate:"gte=0"`

	// Serial
	SerialLeftPort  string
	SerialRightPort string
	SerialBaudRate  int `validate:"gt=0"`

	// Bluetooth serial
	BTSerialLeftName  string
	BTSerialRightName string

	// Encoding
	EncodingLegacyMaxAnalog int `validate:"gt=0"`
	EncodingAlphaMaxAnalog  int `validate:"gt=0"`

	// Device serial numbers
	LucidGlovesLeftSerialNumber  string `validate:"required"`
	LucidGlovesRightSerialNumber string `validate:"required"`
	KnucklesLeftSerialNumber     string `validate:"required"`
	KnucklesRightSerialNumber    string `validate:"required"`

	// Pose
	PoseTimeOffset      float64
	LeftOffsetPosition  r3.Vec // meters
	RightOffsetPosition r3.Vec // meters
	LeftOffsetDegrees   r3.Vec
	RightOffsetDegrees  r3.Vec

	// Controller override. Override indices are -1 ("none") unless
	// ControllerOverride is set.
	ControllerOverride      bool
	ControllerOverrideLeft  int `validate:"gte=-1"`
	ControllerOverrideRight int `validate:"gte=-1"`

	// Timing
	FrameInterval int `validate:"gt=0"` // milliseconds

	// Calibration
	CalibrationServerPort int `validate:"gt=0,lte=65535"`
	CalibrationFile       string
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex

	validate = validator.New()
)

// Default returns a configuration with every optional value set.
func Default() *Config {
	return &Config{
		MQTTClientIDDriver:    "glove-pose-driver",
		MQTTClientIDConsole:   "glove-pose-console",
		MQTTClientIDDiscovery: "glove-pose-discovery",
		MQTTClientIDTracker:   "glove-pose-tracker",

		TopicRawPoses:       "tracking/poses",
		TopicPoseLeft:       "glove/pose/left",
		TopicPoseRight:      "glove/pose/right",
		TopicInputLeft:      "glove/input/left",
		TopicInputRight:     "glove/input/right",
		TopicDiscoveryLeft:  "glove/discovery/left",
		TopicDiscoveryRight: "glove/discovery/right",
		TopicFeedbackLeft:   "glove/feedback/left",
		TopicFeedbackRight:  "glove/feedback/right",

		SerialBaudRate: 115200,

		EncodingLegacyMaxAnalog: 1023,
		EncodingAlphaMaxAnalog:  4095,

		LucidGlovesLeftSerialNumber:  "lucidgloves-left",
		LucidGlovesRightSerialNumber: "lucidgloves-right",
		KnucklesLeftSerialNumber:     "LHR-E217CD00",
		KnucklesRightSerialNumber:    "LHR-E217CD01",

		ControllerOverrideLeft:  -1,
		ControllerOverrideRight: -1,

		FrameInterval:         11,
		CalibrationServerPort: 8090,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if !cfg.ControllerOverride {
		cfg.ControllerOverrideLeft = -1
		cfg.ControllerOverrideRight = -1
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// vecAxis returns the component of v selected by the X/Y/Z in key.
func vecAxis(v *r3.Vec, key string) *float64 {
	switch {
	case strings.Contains(key, "_X_"):
		return &v.X
	case strings.Contains(key, "_Y_"):
		return &v.Y
	default:
		return &v.Z
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_DRIVER":
		c.MQTTClientIDDriver = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISCOVERY":
		c.MQTTClientIDDiscovery = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value

	// Topics
	case "TOPIC_RAW_POSES":
		c.TopicRawPoses = value
	case "TOPIC_POSE_LEFT":
		c.TopicPoseLeft = value
	case "TOPIC_POSE_RIGHT":
		c.TopicPoseRight = value
	case "TOPIC_INPUT_LEFT":
		c.TopicInputLeft = value
	case "TOPIC_INPUT_RIGHT":
		c.TopicInputRight = value
	case "TOPIC_DISCOVERY_LEFT":
		c.TopicDiscoveryLeft = value
	case "TOPIC_DISCOVERY_RIGHT":
		c.TopicDiscoveryRight = value
	case "TOPIC_FEEDBACK_LEFT":
		c.TopicFeedbackLeft = value
	case "TOPIC_FEEDBACK_RIGHT":
		c.TopicFeedbackRight = value

	// Hands
	case "LEFT_ENABLED":
		c.LeftEnabled, err = parseBool(key, value)
	case "RIGHT_ENABLED":
		c.RightEnabled, err = parseBool(key, value)

	// Protocols
	case "COMMUNICATION_PROTOCOL":
		c.CommunicationProtocol, err = parseInt(key, value)
	case "ENCODING_PROTOCOL":
		c.EncodingProtocol, err = parseInt(key, value)
	case "DEVICE_DRIVER":
		c.DeviceDriver, err = parseInt(key, value)

	// Serial
	case "SERIAL_LEFT_PORT":
		c.SerialLeftPort = value
	case "SERIAL_RIGHT_PORT":
		c.SerialRightPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value)
	case "BTSERIAL_LEFT_NAME":
		c.BTSerialLeftName = value
	case "BTSERIAL_RIGHT_NAME":
		c.BTSerialRightName = value

	// Encoding
	case "ENCODING_LEGACY_MAX_ANALOG":
		c.EncodingLegacyMaxAnalog, err = parseInt(key, value)
	case "ENCODING_ALPHA_MAX_ANALOG":
		c.EncodingAlphaMaxAnalog, err = parseInt(key, value)

	// Serial numbers
	case "LUCIDGLOVES_LEFT_SERIAL_NUMBER":
		c.LucidGlovesLeftSerialNumber = value
	case "LUCIDGLOVES_RIGHT_SERIAL_NUMBER":
		c.LucidGlovesRightSerialNumber = value
	case "KNUCKLES_LEFT_SERIAL_NUMBER":
		c.KnucklesLeftSerialNumber = value
	case "KNUCKLES_RIGHT_SERIAL_NUMBER":
		c.KnucklesRightSerialNumber = value

	// Pose
	case "POSE_TIME_OFFSET":
		c.PoseTimeOffset, err = parseFloat(key, value)
	case "LEFT_X_OFFSET_POSITION", "LEFT_Y_OFFSET_POSITION", "LEFT_Z_OFFSET_POSITION":
		*vecAxis(&c.LeftOffsetPosition, key), err = parseFloat(key, value)
	case "RIGHT_X_OFFSET_POSITION", "RIGHT_Y_OFFSET_POSITION", "RIGHT_Z_OFFSET_POSITION":
		*vecAxis(&c.RightOffsetPosition, key), err = parseFloat(key, value)
	case "LEFT_X_OFFSET_DEGREES", "LEFT_Y_OFFSET_DEGREES", "LEFT_Z_OFFSET_DEGREES":
		*vecAxis(&c.LeftOffsetDegrees, key), err = parseFloat(key, value)
	case "RIGHT_X_OFFSET_DEGREES", "RIGHT_Y_OFFSET_DEGREES", "RIGHT_Z_OFFSET_DEGREES":
		*vecAxis(&c.RightOffsetDegrees, key), err = parseFloat(key, value)

	// Controller override
	case "CONTROLLER_OVERRIDE":
		c.ControllerOverride, err = parseBool(key, value)
	case "CONTROLLER_OVERRIDE_LEFT":
		c.ControllerOverrideLeft, err = parseInt(key, value)
	case "CONTROLLER_OVERRIDE_RIGHT":
		c.ControllerOverrideRight, err = parseInt(key, value)

	// Timing
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value)

	// Calibration
	case "CALIBRATION_SERVER_PORT":
		c.CalibrationServerPort, err = parseInt(key, value)
	case "CALIBRATION_FILE":
		c.CalibrationFile = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks struct constraints and the per-hand requirements that
// depend on which hands are enabled.
func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.LeftEnabled && !c.RightEnabled {
		return fmt.Errorf("at least one of LEFT_ENABLED or RIGHT_ENABLED is required")
	}
	if c.CommunicationProtocol == int(CommunicationBTSerial) {
		if c.LeftEnabled && c.BTSerialLeftName == "" {
			return fmt.Errorf("BTSERIAL_LEFT_NAME is required")
		}
		if c.RightEnabled && c.BTSerialRightName == "" {
			return fmt.Errorf("BTSERIAL_RIGHT_NAME is required")
		}
		return nil
	}
	if c.LeftEnabled && c.SerialLeftPort == "" {
		return fmt.Errorf("SERIAL_LEFT_PORT is required")
	}
	if c.RightEnabled && c.SerialRightPort == "" {
		return fmt.Errorf("SERIAL_RIGHT_PORT is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
