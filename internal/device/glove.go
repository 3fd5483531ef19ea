// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/glove_pose/internal/communication"
	"github.com/relabs-tech/glove_pose/internal/encoding"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// ErrInactive is returned for operations on a device that is not active.
var ErrInactive = errors.New("device: not active")

// ReconnectInterval is the minimum time between attempts to reopen a
// dropped link.
const ReconnectInterval = time.Second

var _ Driver = (*Glove)(nil)

// Glove drives one glove.
type Glove struct {
	kind   Kind
	serial string
	comm   communication.Manager
	engine *pose.ControllerPose
	sink   PoseSink

	objectID atomic.Uint32
	active   atomic.Bool
	input    atomic.Pointer[encoding.InputData]

	now      func() time.Time
	linkMu   sync.Mutex
	retryAt  time.Time
	linkDown bool
}

// NewGlove wires a link and a pose engine into a driver.
func NewGlove(kind Kind, serial string, comm communication.Manager, engine *pose.ControllerPose, sink PoseSink) *Glove {
	return &Glove{
		kind:   kind,
		serial: serial,
		comm:   comm,
		engine: engine,
		sink:   sink,
		now:    time.Now,
	}
}

func (g *Glove) SerialNumber() string { return g.serial }
func (g *Glove) Role() pose.Role      { return g.engine.Role() }
func (g *Glove) Kind() Kind           { return g.kind }
func (g *Glove) IsActive() bool       { return g.active.Load() }

// ObjectID is the id assigned at activation.
func (g *Glove) ObjectID() uint32 { return g.objectID.Load() }

// Activate marks the device active and opens the hardware link. A link
// that fails to open is reported, but the device stays active so its pose
// keeps flowing.
func (g *Glove) Activate(objectID uint32) error {
	if g.active.Swap(true) {
		return nil
	}
	g.objectID.Store(objectID)
	log.Printf("device: activating %s %s (%s hand) as object %d", g.kind, g.serial, g.Role(), objectID)

	g.linkMu.Lock()
	defer g.linkMu.Unlock()
	g.retryAt = g.now().Add(ReconnectInterval)
	if err := g.comm.Connect(); err != nil {
		g.linkDown = true
		return fmt.Errorf("device: %s: %w", g.serial, err)
	}
	g.linkDown = false
	g.comm.BeginListener(g.onInput)
	return nil
}

// maintainLink reopens a link that failed or dropped, at most once per
// ReconnectInterval.
func (g *Glove) maintainLink() {
	if g.comm.IsConnected() {
		return
	}
	g.linkMu.Lock()
	defer g.linkMu.Unlock()

	now := g.now()
	if now.Before(g.retryAt) {
		return
	}
	g.retryAt = now.Add(ReconnectInterval)
	if err := g.comm.Connect(); err != nil {
		if !g.linkDown {
			log.Printf("device: %s link lost, retrying: %v", g.serial, err)
		}
		g.linkDown = true
		return
	}
	log.Printf("device: %s link restored", g.serial)
	g.linkDown = false
	g.comm.BeginListener(g.onInput)
}

func (g *Glove) onInput(in encoding.InputData) {
	if g.kind == KindEmulatedKnuckles {
		in = emulateKnucklesInput(in)
	}
	g.input.Store(&in)
}

// emulateKnucklesInput fills the analog trigger from the index finger when
// the firmware does not report one.
func emulateKnucklesInput(in encoding.InputData) encoding.InputData {
	if in.TriggerValue == 0 {
		in.TriggerValue = in.Flexion[encoding.Index]
	}
	return in
}

// Deactivate closes the link. The pose engine keeps its state.
func (g *Glove) Deactivate() error {
	if !g.active.Swap(false) {
		return nil
	}
	log.Printf("device: deactivating %s", g.serial)
	return g.comm.Disconnect()
}

// Close deactivates the device and stops controller discovery.
func (g *Glove) Close() error {
	return errors.Join(g.Deactivate(), g.engine.Close())
}

// RunFrame publishes this frame's pose, and the latest input once any has
// arrived. A link that is down is retried first.
func (g *Glove) RunFrame() error {
	if !g.active.Load() {
		return ErrInactive
	}
	g.maintainLink()

	role := g.Role()
	if err := g.sink.PublishPose(role, g.serial, g.engine.UpdatePose()); err != nil {
		return err
	}
	if in := g.input.Load(); in != nil {
		return g.sink.PublishInput(role, g.serial, *in)
	}
	return nil
}

// ForceFeedback forwards per-finger resistance to the glove.
func (g *Glove) ForceFeedback(ff encoding.ForceFeedback) error {
	if !g.active.Load() {
		return ErrInactive
	}
	return g.comm.Write(ff)
}

func (g *Glove) StartCalibration()       { g.engine.StartCalibration() }
func (g *Glove) FinishCalibration() bool { return g.engine.FinishCalibration() }
func (g *Glove) CancelCalibration()      { g.engine.CancelCalibration() }
func (g *Glove) IsCalibrating() bool     { return g.engine.IsCalibrating() }
