// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tuning holds the engine's tunable constants (meters-kilograms-seconds).
// Field defaults match the reference constants used by every physics
// core in this family; a host application can override them via
// LoadTuning without recompiling.
type Tuning struct {
	LinearSlop           float32 `yaml:"linearSlop"`
	AngularSlop          float32 `yaml:"angularSlop"`
	AABBExtension        float32 `yaml:"aabbExtension"`
	AABBMultiplier       float32 `yaml:"aabbMultiplier"`
	MaxLinearCorrection  float32 `yaml:"maxLinearCorrection"`
	MaxAngularCorrection float32 `yaml:"maxAngularCorrection"`
	MaxTranslation       float32 `yaml:"maxTranslation"`
	MaxRotation          float32 `yaml:"maxRotation"`
	Baumgarte            float32 `yaml:"baumgarte"`
	ToiBaumgarte         float32 `yaml:"toiBaumgarte"`
	TimeToSleep          float32 `yaml:"timeToSleep"`
	LinearSleepTolerance float32 `yaml:"linearSleepTolerance"`
	AngularSleepTolerance float32 `yaml:"angularSleepTolerance"`
	VelocityThreshold    float32 `yaml:"velocityThreshold"`
	MaxSubSteps          int     `yaml:"maxSubSteps"`
	MaxTOIContacts       int     `yaml:"maxTOIContacts"`
}

// DefaultTuning returns the engine's built-in constants.
func DefaultTuning() Tuning {
	return Tuning{
		LinearSlop:            0.005,
		AngularSlop:           2 * deg,
		AABBExtension:         0.1,
		AABBMultiplier:        4,
		MaxLinearCorrection:   0.2,
		MaxAngularCorrection:  8 * deg,
		MaxTranslation:        2,
		MaxRotation:           0.5 * pi,
		Baumgarte:             0.2,
		ToiBaumgarte:          toiBaumgarte,
		TimeToSleep:           0.5,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2 * deg,
		VelocityThreshold:     1.0,
		MaxSubSteps:           8,
		MaxTOIContacts:        32,
	}
}

const (
	pi  = 3.14159265358979323846
	deg = pi / 180
)

// LoadTuning decodes a Tuning from YAML, starting from DefaultTuning so
// that a partial document only overrides the fields it sets.
func LoadTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("physics: load tuning: %w", err)
	}
	return t, nil
}
