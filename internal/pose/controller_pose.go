// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pose

import (
	"log"
	"sync"
	"sync/atomic"
)

// Host is the part of the tracking runtime the engine reads from.
type Host interface {
	// RawTrackedDevicePoses returns the current pose of every tracked
	// device, indexed by TrackedDeviceIndex.
	RawTrackedDevicePoses() []TrackedDevicePose
}

// DiscoveryRequest describes the controller a glove wants to shadow.
type DiscoveryRequest struct {
	Role Role `json:"role"`
	// Manufacturer of the glove itself, so discovery can skip it.
	Manufacturer string `json:"manufacturer"`
}

// ControllerDiscovery is one report from the discovery channel.
type ControllerDiscovery struct {
	ControllerID TrackedDeviceIndex `json:"controllerId"`
}

// Discoverer resolves the controller to shadow asynchronously. The callback
// may fire any number of times, from any goroutine; the last report wins.
type Discoverer interface {
	Start(req DiscoveryRequest, fn func(ControllerDiscovery)) error
	Stop() error
}

// ControllerPose shadows a tracked controller and reports its pose moved
// by the configured offset.
//
// UpdatePose is called on the host's frame thread and never blocks. The
// discovery callback and the calibration entry points may run on other
// goroutines.
type ControllerPose struct {
	role         Role
	manufacturer string
	host         Host
	discoverer   Discoverer

	shadowControllerID atomic.Uint32
	configuration      atomic.Pointer[PoseConfiguration]
	calibration        *Calibration

	// control serialises calibration transitions.
	control sync.Mutex
}

// NewControllerPose resolves the shadow identity from the override, or
// starts discovery when no override is configured. discoverer and store may
// be nil; without a discoverer and an override the device stays
// disconnected.
func NewControllerPose(role Role, manufacturer string, cfg PoseConfiguration, host Host, discoverer Discoverer, store Store) *ControllerPose {
	c := &ControllerPose{
		role:         role,
		manufacturer: manufacturer,
		host:         host,
		calibration:  NewCalibration(store),
	}
	c.shadowControllerID.Store(uint32(InvalidDeviceIndex))
	c.configuration.Store(&cfg)

	if cfg.ControllerOverrideEnabled {
		c.shadowControllerID.Store(uint32(cfg.overrideIndex()))
		log.Printf("pose: %s hand shadowing controller override %d", role, cfg.ControllerIDOverride)
		return c
	}

	if discoverer == nil {
		log.Printf("pose: %s hand has no controller override and no discovery channel", role)
		return c
	}

	c.discoverer = discoverer
	req := DiscoveryRequest{Role: role, Manufacturer: manufacturer}
	if err := discoverer.Start(req, c.onDiscovery); err != nil {
		log.Printf("pose: %s hand discovery failed to start: %v", role, err)
	}
	return c
}

func (c *ControllerPose) onDiscovery(d ControllerDiscovery) {
	c.shadowControllerID.Store(uint32(d.ControllerID))
	log.Printf("pose: %s hand received controller %d", c.role, d.ControllerID)
}

// Close stops discovery.
func (c *ControllerPose) Close() error {
	if c.discoverer == nil {
		return nil
	}
	return c.discoverer.Stop()
}

// ShadowControllerID is the currently resolved controller.
func (c *ControllerPose) ShadowControllerID() TrackedDeviceIndex {
	return TrackedDeviceIndex(c.shadowControllerID.Load())
}

// PoseConfiguration returns the configuration in use.
func (c *ControllerPose) PoseConfiguration() PoseConfiguration {
	return *c.configuration.Load()
}

// Role is the hand this device is worn on.
func (c *ControllerPose) Role() Role {
	return c.role
}

// ControllerRawPose reads the shadowed controller from the host snapshot.
// Indices outside the snapshot read as a pose that is not valid.
func (c *ControllerPose) ControllerRawPose() (TrackedDevicePose, bool) {
	id := c.ShadowControllerID()
	if !id.Valid() {
		return TrackedDevicePose{}, false
	}
	return c.rawPose(id), true
}

func (c *ControllerPose) rawPose(id TrackedDeviceIndex) TrackedDevicePose {
	poses := c.host.RawTrackedDevicePoses()
	if uint64(id) >= uint64(len(poses)) {
		return TrackedDevicePose{}
	}
	return poses[id]
}

// UpdatePose computes this frame's pose.
func (c *ControllerPose) UpdatePose() DriverPose {
	if maintain, ok := c.calibration.MaintainPose(); ok {
		return maintain
	}
	return c.livePose()
}

func (c *ControllerPose) livePose() DriverPose {
	newPose := newDriverPose()

	id := c.ShadowControllerID()
	if !id.Valid() {
		newPose.Result = TrackingResultUninitialized
		newPose.DeviceIsConnected = false
		return newPose
	}

	controllerPose := c.rawPose(id)
	if !controllerPose.PoseIsValid {
		newPose.PoseIsValid = false
		newPose.DeviceIsConnected = true
		newPose.Result = TrackingResultUninitialized
		return newPose
	}

	cfg := c.configuration.Load()
	controllerMatrix := controllerPose.DeviceToAbsoluteTracking

	// offset is defined in the controller's frame, move it into world space
	vectorOffset := RotateVector(RotationMatrix(controllerMatrix), cfg.OffsetPosition)
	newPose.Position = CombinePosition(controllerMatrix, vectorOffset)
	newPose.Rotation = MultiplyQuaternion(RotationQuaternion(controllerMatrix), cfg.OffsetRotation)

	// velocities are not corrected for the offset lever arm
	newPose.AngularVelocity = controllerPose.AngularVelocity
	newPose.Velocity = controllerPose.Velocity

	newPose.PoseIsValid = true
	newPose.DeviceIsConnected = true
	newPose.Result = TrackingResultRunningOK
	newPose.PoseTimeOffset = cfg.PoseTimeOffset
	return newPose
}

// StartCalibration freezes the current pose until the session ends.
func (c *ControllerPose) StartCalibration() {
	c.control.Lock()
	defer c.control.Unlock()

	c.calibration.Start(c.livePose())
}

// FinishCalibration replaces the configuration with the offset implied by
// the controller's current pose and reports whether it did. Without a
// resolved controller it behaves like CancelCalibration.
func (c *ControllerPose) FinishCalibration() bool {
	c.control.Lock()
	defer c.control.Unlock()

	if !c.calibration.IsCalibrating() {
		return false
	}

	controllerPose, ok := c.ControllerRawPose()
	if !ok {
		log.Printf("pose: %s hand finish calibration with invalid controller index, cancelling", c.role)
		c.calibration.End()
		return false
	}

	next, applied := c.calibration.Complete(controllerPose, c.PoseConfiguration(), c.isRightHand())
	if applied {
		c.configuration.Store(&next)
	}
	c.calibration.End()
	return applied
}

// CancelCalibration ends the session and keeps the configuration.
func (c *ControllerPose) CancelCalibration() {
	c.control.Lock()
	defer c.control.Unlock()

	c.calibration.End()
}

// IsCalibrating reports whether a calibration session is open.
func (c *ControllerPose) IsCalibrating() bool {
	return c.calibration.IsCalibrating()
}

func (c *ControllerPose) isRightHand() bool {
	return c.role == RoleRightHand
}
