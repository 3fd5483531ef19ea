// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// CommunicationProtocol selects how the glove hardware is reached.
type CommunicationProtocol int

const (
	CommunicationSerial CommunicationProtocol = iota
	CommunicationBTSerial
)

// EncodingProtocol selects the wire format of glove input lines.
type EncodingProtocol int

const (
	EncodingLegacy EncodingProtocol = iota
	EncodingAlpha
)

// DeviceDriverKind selects what the glove presents itself as to the host.
type DeviceDriverKind int

const (
	DriverLucidGloves DeviceDriverKind = iota
	DriverEmulatedKnuckles
)

// DeviceConfiguration is everything needed to assemble one hand.
type DeviceConfiguration struct {
	Role                  pose.Role
	Enabled               bool
	Pose                  pose.PoseConfiguration
	EncodingProtocol      EncodingProtocol
	CommunicationProtocol CommunicationProtocol
	DeviceDriver          DeviceDriverKind
}

// DeviceConfiguration assembles the configuration of one hand, converting
// the offset rotation from Euler degrees.
func (c *Config) DeviceConfiguration(role pose.Role) DeviceConfiguration {
	isRightHand := role == pose.RoleRightHand

	enabled := c.LeftEnabled
	offsetPosition := c.LeftOffsetPosition
	offsetDegrees := c.LeftOffsetDegrees
	overrideID := c.ControllerOverrideLeft
	if isRightHand {
		enabled = c.RightEnabled
		offsetPosition = c.RightOffsetPosition
		offsetDegrees = c.RightOffsetDegrees
		overrideID = c.ControllerOverrideRight
	}

	return DeviceConfiguration{
		Role:    role,
		Enabled: enabled,
		Pose: pose.NewPoseConfiguration(offsetPosition, offsetDegrees,
			c.PoseTimeOffset, c.ControllerOverride, overrideID),
		EncodingProtocol:      EncodingProtocol(c.EncodingProtocol),
		CommunicationProtocol: CommunicationProtocol(c.CommunicationProtocol),
		DeviceDriver:          DeviceDriverKind(c.DeviceDriver),
	}
}

// SerialPort is the wired serial port of a hand.
func (c *Config) SerialPort(role pose.Role) string {
	if role == pose.RoleRightHand {
		return c.SerialRightPort
	}
	return c.SerialLeftPort
}

// BTSerialName is the Bluetooth device name of a hand.
func (c *Config) BTSerialName(role pose.Role) string {
	if role == pose.RoleRightHand {
		return c.BTSerialRightName
	}
	return c.BTSerialLeftName
}

// SerialNumber is the serial number a hand registers with for the driver
// kind.
func (c *Config) SerialNumber(role pose.Role, kind DeviceDriverKind) string {
	right := role == pose.RoleRightHand
	switch {
	case kind == DriverEmulatedKnuckles && right:
		return c.KnucklesRightSerialNumber
	case kind == DriverEmulatedKnuckles:
		return c.KnucklesLeftSerialNumber
	case right:
		return c.LucidGlovesRightSerialNumber
	default:
		return c.LucidGlovesLeftSerialNumber
	}
}

// MaxAnalogValue is the full-scale reading of the selected encoding.
func (c *Config) MaxAnalogValue(p EncodingProtocol) int {
	if p == EncodingAlpha {
		return c.EncodingAlphaMaxAnalog
	}
	return c.EncodingLegacyMaxAnalog
}

// TopicPose is the topic the hand's driver pose is published on.
func (c *Config) TopicPose(role pose.Role) string {
	if role == pose.RoleRightHand {
		return c.TopicPoseRight
	}
	return c.TopicPoseLeft
}

// TopicInput is the topic the hand's decoded input is published on.
func (c *Config) TopicInput(role pose.Role) string {
	if role == pose.RoleRightHand {
		return c.TopicInputRight
	}
	return c.TopicInputLeft
}

// TopicDiscovery is the topic controller discovery reports arrive on.
func (c *Config) TopicDiscovery(role pose.Role) string {
	if role == pose.RoleRightHand {
		return c.TopicDiscoveryRight
	}
	return c.TopicDiscoveryLeft
}

// TopicFeedback is the topic force feedback commands for the hand arrive on.
func (c *Config) TopicFeedback(role pose.Role) string {
	if role == pose.RoleRightHand {
		return c.TopicFeedbackRight
	}
	return c.TopicFeedbackLeft
}
