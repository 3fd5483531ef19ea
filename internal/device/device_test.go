// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/glove_pose/internal/communication"
	"github.com/relabs-tech/glove_pose/internal/config"
	"github.com/relabs-tech/glove_pose/internal/encoding"
	"github.com/relabs-tech/glove_pose/internal/pose"
)

type fakeLink struct {
	mu          sync.Mutex
	connectErr  error
	connected   bool
	listener    func(encoding.InputData)
	written     []encoding.ForceFeedback
	disconnects int
	connects    int
}

func (l *fakeLink) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connects++
	if l.connectErr != nil {
		return l.connectErr
	}
	l.connected = true
	return nil
}

func (l *fakeLink) BeginListener(fn func(encoding.InputData)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listener = fn
}

func (l *fakeLink) Write(ff encoding.ForceFeedback) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return communication.ErrNotConnected
	}
	l.written = append(l.written, ff)
	return nil
}

func (l *fakeLink) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *fakeLink) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = false
	l.disconnects++
	return nil
}

func (l *fakeLink) setConnectErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connectErr = err
}

// drop simulates the remote end going away.
func (l *fakeLink) drop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = false
	l.listener = nil
}

func (l *fakeLink) attempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connects
}

func (l *fakeLink) send(in encoding.InputData) {
	l.mu.Lock()
	fn := l.listener
	l.mu.Unlock()
	fn(in)
}

type poseRecord struct {
	role   pose.Role
	serial string
	pose   pose.DriverPose
}

type inputRecord struct {
	role   pose.Role
	serial string
	input  encoding.InputData
}

type fakeSink struct {
	mu     sync.Mutex
	poses  []poseRecord
	inputs []inputRecord
	err    error
}

func (s *fakeSink) PublishPose(role pose.Role, serial string, dp pose.DriverPose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.poses = append(s.poses, poseRecord{role, serial, dp})
	return nil
}

func (s *fakeSink) PublishInput(role pose.Role, serial string, in encoding.InputData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, inputRecord{role, serial, in})
	return nil
}

type fakeHost struct {
	poses []pose.TrackedDevicePose
}

func (h *fakeHost) RawTrackedDevicePoses() []pose.TrackedDevicePose { return h.poses }

func newFakeHost() *fakeHost {
	h := &fakeHost{poses: make([]pose.TrackedDevicePose, pose.MaxTrackedDeviceCount)}
	h.poses[2] = pose.TrackedDevicePose{
		DeviceToAbsoluteTracking: pose.IdentityMatrix34(r3.Vec{X: 1, Y: 2, Z: 3}),
		PoseIsValid:              true,
		DeviceIsConnected:        true,
	}
	return h
}

type fakeDiscoverer struct {
	req     pose.DiscoveryRequest
	fn      func(pose.ControllerDiscovery)
	stopped bool
}

func (d *fakeDiscoverer) Start(req pose.DiscoveryRequest, fn func(pose.ControllerDiscovery)) error {
	d.req = req
	d.fn = fn
	return nil
}

func (d *fakeDiscoverer) Stop() error {
	d.stopped = true
	return nil
}

type fixture struct {
	cfg         *config.Config
	sink        *fakeSink
	host        *fakeHost
	links       map[pose.Role]*fakeLink
	discoverers map[pose.Role]*fakeDiscoverer
}

func newFixture() *fixture {
	cfg := config.Default()
	cfg.LeftEnabled = true
	cfg.RightEnabled = true
	return &fixture{
		cfg:         cfg,
		sink:        &fakeSink{},
		host:        newFakeHost(),
		links:       make(map[pose.Role]*fakeLink),
		discoverers: make(map[pose.Role]*fakeDiscoverer),
	}
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Host: f.host,
		Sink: f.sink,
		Discoverer: func(role pose.Role) pose.Discoverer {
			d := &fakeDiscoverer{}
			f.discoverers[role] = d
			return d
		},
		Link: func(_ *config.Config, dc config.DeviceConfiguration, _ encoding.Manager) communication.Manager {
			l := &fakeLink{}
			f.links[dc.Role] = l
			return l
		},
	}
}

func TestInstantiateSelectsKind(t *testing.T) {
	tests := []struct {
		name       string
		driver     int
		wantKind   Kind
		wantSerial string
		wantMaker  string
	}{
		{"lucidgloves", 0, KindLucidGloves, "lucidgloves-left", "LucidGloves"},
		{"knuckles", 1, KindEmulatedKnuckles, "LHR-E217CD00", "Valve"},
		{"unknown falls back", 9, KindLucidGloves, "lucidgloves-left", "LucidGloves"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.cfg.DeviceDriver = tt.driver

			g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), f.deps())
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, g.Kind())
			assert.Equal(t, tt.wantSerial, g.SerialNumber())
			assert.Equal(t, pose.RoleLeftHand, g.Role())
			assert.Equal(t, tt.wantMaker, f.discoverers[pose.RoleLeftHand].req.Manufacturer)
		})
	}
}

func TestNewEncodingManager(t *testing.T) {
	cfg := config.Default()

	m, err := NewEncodingManager(cfg, config.EncodingAlpha)
	require.NoError(t, err)
	assert.IsType(t, &encoding.AlphaManager{}, m)

	m, err = NewEncodingManager(cfg, config.EncodingLegacy)
	require.NoError(t, err)
	assert.IsType(t, &encoding.LegacyManager{}, m)

	m, err = NewEncodingManager(cfg, config.EncodingProtocol(42))
	require.NoError(t, err)
	assert.IsType(t, &encoding.LegacyManager{}, m)

	cfg.EncodingAlphaMaxAnalog = 0
	_, err = NewEncodingManager(cfg, config.EncodingAlpha)
	assert.Error(t, err)
}

func TestNewCommunicationManager(t *testing.T) {
	cfg := config.Default()
	enc, err := NewEncodingManager(cfg, config.EncodingLegacy)
	require.NoError(t, err)

	for _, p := range []config.CommunicationProtocol{config.CommunicationSerial, config.CommunicationBTSerial, 7} {
		dc := config.DeviceConfiguration{Role: pose.RoleRightHand, CommunicationProtocol: p}
		m := NewCommunicationManager(cfg, dc, enc)
		require.NotNil(t, m)
		assert.False(t, m.IsConnected())
	}
}

func TestGloveFrame(t *testing.T) {
	f := newFixture()
	f.cfg.ControllerOverride = true
	f.cfg.ControllerOverrideLeft = 2

	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), f.deps())
	require.NoError(t, err)

	assert.ErrorIs(t, g.RunFrame(), ErrInactive)
	require.NoError(t, g.Activate(7))
	assert.True(t, g.IsActive())
	assert.Equal(t, uint32(7), g.ObjectID())

	require.NoError(t, g.RunFrame())
	require.Len(t, f.sink.poses, 1)
	assert.Empty(t, f.sink.inputs)

	got := f.sink.poses[0]
	assert.Equal(t, pose.RoleLeftHand, got.role)
	assert.Equal(t, "lucidgloves-left", got.serial)
	assert.True(t, got.pose.PoseIsValid)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, got.pose.Position)

	in := encoding.InputData{JoyX: 0.25, Grab: true}
	f.links[pose.RoleLeftHand].send(in)
	require.NoError(t, g.RunFrame())
	require.Len(t, f.sink.inputs, 1)
	assert.Equal(t, in, f.sink.inputs[0].input)
}

func TestGloveSinkError(t *testing.T) {
	f := newFixture()
	f.sink.err = errors.New("broker gone")

	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), f.deps())
	require.NoError(t, err)
	require.NoError(t, g.Activate(0))
	assert.EqualError(t, g.RunFrame(), "broker gone")
}

func TestKnucklesInput(t *testing.T) {
	f := newFixture()
	f.cfg.DeviceDriver = int(config.DriverEmulatedKnuckles)

	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleRightHand), f.deps())
	require.NoError(t, err)
	require.NoError(t, g.Activate(0))

	var in encoding.InputData
	in.Flexion[encoding.Index] = 0.6
	f.links[pose.RoleRightHand].send(in)

	in.TriggerValue = 0.2
	require.NoError(t, g.RunFrame())
	require.Len(t, f.sink.inputs, 1)
	assert.InDelta(t, 0.6, f.sink.inputs[0].input.TriggerValue, 1e-12)

	f.links[pose.RoleRightHand].send(in)
	require.NoError(t, g.RunFrame())
	assert.InDelta(t, 0.2, f.sink.inputs[1].input.TriggerValue, 1e-12)
}

func TestActivateLinkFailure(t *testing.T) {
	f := newFixture()
	deps := f.deps()
	deps.Link = func(*config.Config, config.DeviceConfiguration, encoding.Manager) communication.Manager {
		return &fakeLink{connectErr: communication.ErrPortNotFound}
	}

	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), deps)
	require.NoError(t, err)

	err = g.Activate(0)
	assert.ErrorIs(t, err, communication.ErrPortNotFound)
	assert.True(t, g.IsActive())
	assert.NoError(t, g.RunFrame())
	assert.ErrorIs(t, g.ForceFeedback(encoding.ForceFeedback{}), communication.ErrNotConnected)
}

func TestGloveReconnects(t *testing.T) {
	f := newFixture()
	link := &fakeLink{connectErr: communication.ErrPortNotFound}
	deps := f.deps()
	deps.Link = func(*config.Config, config.DeviceConfiguration, encoding.Manager) communication.Manager {
		return link
	}

	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), deps)
	require.NoError(t, err)
	clock := time.Unix(1000, 0)
	g.now = func() time.Time { return clock }

	assert.ErrorIs(t, g.Activate(0), communication.ErrPortNotFound)
	assert.Equal(t, 1, link.attempts())

	// inside the retry interval nothing is reopened
	require.NoError(t, g.RunFrame())
	assert.Equal(t, 1, link.attempts())

	clock = clock.Add(ReconnectInterval)
	require.NoError(t, g.RunFrame())
	assert.Equal(t, 2, link.attempts())
	assert.False(t, link.IsConnected())

	link.setConnectErr(nil)
	clock = clock.Add(ReconnectInterval)
	require.NoError(t, g.RunFrame())
	assert.Equal(t, 3, link.attempts())
	assert.True(t, link.IsConnected())

	in := encoding.InputData{JoyY: 0.5}
	link.send(in)
	require.NoError(t, g.RunFrame())
	require.NotEmpty(t, f.sink.inputs)
	assert.Equal(t, in, f.sink.inputs[len(f.sink.inputs)-1].input)

	// a dropped link is reopened on a later frame
	link.drop()
	clock = clock.Add(ReconnectInterval)
	require.NoError(t, g.RunFrame())
	assert.Equal(t, 4, link.attempts())
	assert.True(t, link.IsConnected())
	require.NoError(t, g.ForceFeedback(encoding.ForceFeedback{1, 2, 3, 4, 5}))
}

func TestForceFeedback(t *testing.T) {
	f := newFixture()
	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), f.deps())
	require.NoError(t, err)

	ff := encoding.ForceFeedback{100, 200, 300, 400, 500}
	assert.ErrorIs(t, g.ForceFeedback(ff), ErrInactive)

	require.NoError(t, g.Activate(0))
	require.NoError(t, g.ForceFeedback(ff))
	assert.Equal(t, []encoding.ForceFeedback{ff}, f.links[pose.RoleLeftHand].written)
}

func TestCalibrationForwarding(t *testing.T) {
	f := newFixture()
	f.cfg.ControllerOverride = true
	f.cfg.ControllerOverrideLeft = 2

	g, err := Instantiate(f.cfg, f.cfg.DeviceConfiguration(pose.RoleLeftHand), f.deps())
	require.NoError(t, err)

	g.StartCalibration()
	assert.True(t, g.IsCalibrating())
	g.CancelCalibration()
	assert.False(t, g.IsCalibrating())

	g.StartCalibration()
	assert.True(t, g.FinishCalibration())
	assert.False(t, g.IsCalibrating())
}

func TestProvider(t *testing.T) {
	f := newFixture()
	p, err := NewProvider(f.cfg, f.deps())
	require.NoError(t, err)

	drivers := p.Drivers()
	require.Len(t, drivers, 2)
	assert.Equal(t, pose.RoleLeftHand, drivers[0].Role())
	assert.Equal(t, pose.RoleRightHand, drivers[1].Role())

	right, ok := p.Driver(pose.RoleRightHand)
	require.True(t, ok)
	assert.Equal(t, "lucidgloves-right", right.SerialNumber())

	// discovery delivers the right controller; the left one stays unresolved
	f.discoverers[pose.RoleRightHand].fn(pose.ControllerDiscovery{ControllerID: 2})

	require.NoError(t, p.RunFrame())
	assert.Empty(t, f.sink.poses)

	require.NoError(t, p.Activate())
	require.NoError(t, p.RunFrame())
	require.Len(t, f.sink.poses, 2)
	assert.False(t, f.sink.poses[0].pose.DeviceIsConnected)
	assert.True(t, f.sink.poses[1].pose.PoseIsValid)

	require.NoError(t, p.Cleanup())
	assert.False(t, right.IsActive())
	assert.Equal(t, 1, f.links[pose.RoleLeftHand].disconnects)
	assert.True(t, f.discoverers[pose.RoleLeftHand].stopped)
	assert.True(t, f.discoverers[pose.RoleRightHand].stopped)
}

func TestProviderSkipsDisabledHands(t *testing.T) {
	f := newFixture()
	f.cfg.LeftEnabled = false

	p, err := NewProvider(f.cfg, f.deps())
	require.NoError(t, err)
	_, ok := p.Driver(pose.RoleLeftHand)
	assert.False(t, ok)
	assert.Len(t, p.Drivers(), 1)
}

func TestProviderInstantiateError(t *testing.T) {
	f := newFixture()
	f.cfg.EncodingLegacyMaxAnalog = -1

	_, err := NewProvider(f.cfg, f.deps())
	assert.Error(t, err)
}
