// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/glove_pose/internal/pose"
)

// Vec3 is a YAML-friendly vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func vec3(v r3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vec3) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// HandCalibration is the persisted offset of one hand.
type HandCalibration struct {
	OffsetPosition Vec3   `yaml:"offset_position"` // meters
	OffsetDegrees  Vec3   `yaml:"offset_degrees"`
	CalibratedAt   string `yaml:"calibrated_at"` // RFC3339
}

// CalibrationFile is the YAML document written after each calibration.
type CalibrationFile struct {
	Left  *HandCalibration `yaml:"left,omitempty"`
	Right *HandCalibration `yaml:"right,omitempty"`
}

// CalibrationStore reads and rewrites the calibration file. It satisfies
// pose.Store.
type CalibrationStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ pose.Store = (*CalibrationStore)(nil)

// NewCalibrationStore returns a store for path.
func NewCalibrationStore(path string) *CalibrationStore {
	return &CalibrationStore{path: path, now: time.Now}
}

// Path is the file backing the store.
func (s *CalibrationStore) Path() string {
	return s.path
}

// Load reads the file. A missing file is an empty calibration.
func (s *CalibrationStore) Load() (CalibrationFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *CalibrationStore) load() (CalibrationFile, error) {
	var f CalibrationFile

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("failed to read calibration file: %w", err)
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse calibration file %s: %w", s.path, err)
	}
	return f, nil
}

// Apply overrides the offsets in cfg with any persisted calibration.
func (s *CalibrationStore) Apply(cfg *Config) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	if f.Left != nil {
		cfg.LeftOffsetPosition = f.Left.OffsetPosition.vec()
		cfg.LeftOffsetDegrees = f.Left.OffsetDegrees.vec()
	}
	if f.Right != nil {
		cfg.RightOffsetPosition = f.Right.OffsetPosition.vec()
		cfg.RightOffsetDegrees = f.Right.OffsetDegrees.vec()
	}
	return nil
}

// SavePoseConfiguration rewrites the entry of one hand, keeping the other.
func (s *CalibrationStore) SavePoseConfiguration(role pose.Role, cfg pose.PoseConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	hand := &HandCalibration{
		OffsetPosition: vec3(cfg.OffsetPosition),
		OffsetDegrees:  vec3(cfg.OffsetDegrees()),
		CalibratedAt:   s.now().Format(time.RFC3339),
	}
	if role == pose.RoleRightHand {
		f.Right = hand
	} else {
		f.Left = hand
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to marshal calibration: %w", err)
	}

	// write then rename so a crash never leaves a truncated file
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".calibration-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create calibration file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write calibration file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace calibration file: %w", err)
	}
	return nil
}
