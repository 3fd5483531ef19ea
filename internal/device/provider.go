// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"errors"
	"fmt"
	"log"

	"github.com/relabs-tech/glove_pose/internal/communication"
	"github.com/relabs-tech/glove_pose/internal/config"
	"github.com/relabs-tech/glove_pose/internal/encoding"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

// Dependencies are the collaborators shared by every hand.
type Dependencies struct {
	Host  pose.Host
	Sink  PoseSink
	Store pose.Store
	// Discoverer returns the discovery channel for a hand, or nil when the
	// hand should rely on the controller override alone.
	Discoverer func(role pose.Role) pose.Discoverer
	// Link overrides the hardware link; nil selects it from the config.
	Link func(cfg *config.Config, dc config.DeviceConfiguration, enc encoding.Manager) communication.Manager
}

// Provider owns the drivers of both hands.
type Provider struct {
	drivers map[pose.Role]*Glove
	order   []pose.Role
}

// NewProvider builds a driver for every enabled hand.
func NewProvider(cfg *config.Config, deps Dependencies) (*Provider, error) {
	p := &Provider{drivers: make(map[pose.Role]*Glove)}
	for _, role := range []pose.Role{pose.RoleLeftHand, pose.RoleRightHand} {
		dc := cfg.DeviceConfiguration(role)
		if !dc.Enabled {
			continue
		}
		g, err := Instantiate(cfg, dc, deps)
		if err != nil {
			return nil, fmt.Errorf("device: %s hand: %w", role, err)
		}
		p.drivers[role] = g
		p.order = append(p.order, role)
	}
	return p, nil
}

// Driver returns the driver of a hand.
func (p *Provider) Driver(role pose.Role) (Driver, bool) {
	g, ok := p.drivers[role]
	if !ok {
		return nil, false
	}
	return g, true
}

// Drivers returns every driver, left hand first.
func (p *Provider) Drivers() []Driver {
	out := make([]Driver, 0, len(p.order))
	for _, role := range p.order {
		out = append(out, p.drivers[role])
	}
	return out
}

// Activate activates every driver with sequential object ids.
func (p *Provider) Activate() error {
	var errs []error
	for i, role := range p.order {
		if err := p.drivers[role].Activate(uint32(i)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunFrame runs a frame on every active driver.
func (p *Provider) RunFrame() error {
	var errs []error
	for _, role := range p.order {
		g := p.drivers[role]
		if !g.IsActive() {
			continue
		}
		if err := g.RunFrame(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cleanup deactivates every driver and stops discovery.
func (p *Provider) Cleanup() error {
	var errs []error
	for _, role := range p.order {
		if err := p.drivers[role].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Instantiate assembles one hand. Unknown protocol or driver selections fall
// back to serial, legacy and lucidgloves.
func Instantiate(cfg *config.Config, dc config.DeviceConfiguration, deps Dependencies) (*Glove, error) {
	enc, err := NewEncodingManager(cfg, dc.EncodingProtocol)
	if err != nil {
		return nil, err
	}

	link := deps.Link
	if link == nil {
		link = NewCommunicationManager
	}
	comm := link(cfg, dc, enc)

	kind := KindLucidGloves
	switch dc.DeviceDriver {
	case config.DriverEmulatedKnuckles:
		kind = KindEmulatedKnuckles
	case config.DriverLucidGloves:
	default:
		log.Printf("device: no device driver selected, using lucidgloves")
	}

	var discoverer pose.Discoverer
	if deps.Discoverer != nil {
		discoverer = deps.Discoverer(dc.Role)
	}
	engine := pose.NewControllerPose(dc.Role, kind.Manufacturer(), dc.Pose, deps.Host, discoverer, deps.Store)

	serialKind := config.DriverLucidGloves
	if kind == KindEmulatedKnuckles {
		serialKind = config.DriverEmulatedKnuckles
	}
	serial := cfg.SerialNumber(dc.Role, serialKind)
	return NewGlove(kind, serial, comm, engine, deps.Sink), nil
}

// NewEncodingManager selects the input encoding.
func NewEncodingManager(cfg *config.Config, p config.EncodingProtocol) (encoding.Manager, error) {
	switch p {
	case config.EncodingAlpha:
		m, err := encoding.NewAlphaManager(cfg.MaxAnalogValue(config.EncodingAlpha))
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.EncodingLegacy:
	default:
		log.Printf("device: no encoding protocol set, using legacy")
	}
	m, err := encoding.NewLegacyManager(cfg.MaxAnalogValue(config.EncodingLegacy))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewCommunicationManager selects the hardware link.
func NewCommunicationManager(cfg *config.Config, dc config.DeviceConfiguration, enc encoding.Manager) communication.Manager {
	switch dc.CommunicationProtocol {
	case config.CommunicationBTSerial:
		log.Printf("device: communication set to btserial")
		return communication.NewBTSerialManager(cfg.BTSerialName(dc.Role), cfg.SerialBaudRate, enc)
	case config.CommunicationSerial:
	default:
		log.Printf("device: no communication protocol set, using serial")
	}
	return communication.NewSerialManager(cfg.SerialPort(dc.Role), cfg.SerialBaudRate, enc)
}
