// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pose

import (
	"log"
	"sync/atomic"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Store persists configurations produced by a finished calibration.
type Store interface {
	SavePoseConfiguration(role Role, cfg PoseConfiguration) error
}

// Calibration holds the maintain pose of an open calibration session.
// A nil maintain pose means Idle.
//
// The frame thread only loads the maintain pointer. Transitions are
// serialised by the owning ControllerPose.
type Calibration struct {
	maintain atomic.Pointer[DriverPose]
	store    Store
}

// NewCalibration returns an idle calibration. store may be nil.
func NewCalibration(store Store) *Calibration {
	return &Calibration{store: store}
}

// Start opens a session showing maintain until it is finished or cancelled.
// Starting while already calibrating replaces the maintain pose.
func (c *Calibration) Start(maintain DriverPose) {
	c.maintain.Store(&maintain)
}

// IsCalibrating reports whether a session is open.
func (c *Calibration) IsCalibrating() bool {
	return c.maintain.Load() != nil
}

// MaintainPose returns the frozen pose of the open session.
func (c *Calibration) MaintainPose() (DriverPose, bool) {
	p := c.maintain.Load()
	if p == nil {
		return DriverPose{}, false
	}
	return *p, true
}

// Complete derives the configuration implied by the controller's pose at
// this moment and persists it for the given hand. The session stays open
// until End so the caller can publish the new configuration first.
func (c *Calibration) Complete(controller TrackedDevicePose, prior PoseConfiguration, isRightHand bool) (PoseConfiguration, bool) {
	maintain, ok := c.MaintainPose()
	if !ok {
		return prior, false
	}

	next, ok := Derive(maintain, controller, prior)
	if !ok {
		log.Printf("pose: calibration discarded, maintain valid=%t controller valid=%t",
			maintain.PoseIsValid, controller.PoseIsValid)
		return prior, false
	}

	if c.store != nil {
		role := RoleLeftHand
		if isRightHand {
			role = RoleRightHand
		}
		if err := c.store.SavePoseConfiguration(role, next); err != nil {
			log.Printf("pose: failed to persist %s calibration: %v", role, err)
		}
	}
	return next, true
}

// End closes the session without touching any configuration.
func (c *Calibration) End() {
	c.maintain.Store(nil)
}

// Derive computes the offset that places the device at maintain given the
// controller's current pose, expressed in the controller's local frame:
//
//	rotation = conj(q_controller) * q_maintain
//	position = R_controllerᵀ · (p_maintain - p_controller)
//
// Time offset and override settings carry over from prior. Both poses must
// be valid.
func Derive(maintain DriverPose, controller TrackedDevicePose, prior PoseConfiguration) (PoseConfiguration, bool) {
	if !maintain.PoseIsValid || !controller.PoseIsValid {
		return prior, false
	}

	m := controller.DeviceToAbsoluteTracking
	next := prior
	next.OffsetRotation = quat.Mul(quat.Conj(RotationQuaternion(m)), maintain.Rotation)

	worldDelta := r3.Sub(maintain.Position, Translation(m))
	next.OffsetPosition = RotateVector(RotationMatrix(m).T(), worldDelta)
	return next, true
}
