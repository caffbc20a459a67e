// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// Package-level defaults mirroring DefaultTuning. The DynamicTree,
// BroadPhase, contact solver, joints and World.solveTOI read these
// directly; only the Island reads its clamps, sleep thresholds and
// ToiBaumgarte from a per-world Tuning — see tuning.go.
const (
	linearSlop            = 0.005
	angularSlop           = 2 * deg
	aabbExtension         = 0.1
	aabbMultiplier        = 4
	maxManifoldPoints     = 2
	maxPolygonVertices    = 8
	maxSubSteps           = 8
	maxTOIContacts        = 32
	maxLinearCorrection   = 0.2
	maxAngularCorrection  = 8 * deg
	maxTranslation        = 2
	maxRotation           = 0.5 * pi
	baumgarte             = 0.2
	toiBaumgarte          = 0.75
	timeToSleep           = 0.5
	linearSleepTolerance  = 0.01
	angularSleepTolerance = 2 * deg
	velocityThreshold     = 1.0
)
