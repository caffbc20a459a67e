// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
)

func TestIslandSolveIntegratesFreeBody(t *testing.T) {
	w := NewWorld(nil)
	b := newDynamicCircle(w, 0, 10, 0.5)

	is := NewIsland(DefaultTuning(), true, nil)
	is.Add(b)
	is.Solve(testDt, lin.V2{X: 0, Y: -10}, true, 8, 3)

	wantV := float32(-10 * testDt)
	if got := b.LinearVelocity().Y; lin.Abs(got-wantV) > 1e-5 {
		t.Errorf("velocity after one island solve = %v, want %v", got, wantV)
	}
	if got := b.WorldCenter().Y; got >= 10 {
		t.Errorf("position after one island solve = %v, want < 10", got)
	}
}

func TestIslandSleepPassRequiresEveryBodyQuiet(t *testing.T) {
	w := NewWorld(nil)
	slow := newDynamicCircle(w, 0, 0, 0.5)
	fast := newDynamicCircle(w, 5, 0, 0.5)
	fast.SetLinearVelocity(lin.V2{X: 10, Y: 0})

	is := NewIsland(DefaultTuning(), true, nil)
	is.Add(slow)
	is.Add(fast)

	steps := int(DefaultTuning().TimeToSleep/testDt) + 5
	for i := 0; i < steps; i++ {
		is.Solve(testDt, lin.V2Zero, true, 4, 2)
	}

	if !slow.IsAwake() {
		t.Error("quiet body fell asleep even though its island-mate never settles below the sleep tolerance")
	}
	if !fast.IsAwake() {
		t.Error("fast body fell asleep despite moving well above the sleep tolerance")
	}
}

func TestIslandSolveLetsQuietIslandSleep(t *testing.T) {
	w := NewWorld(nil)
	b := newDynamicCircle(w, 0, 0, 0.5)

	is := NewIsland(DefaultTuning(), true, nil)
	is.Add(b)

	steps := int(DefaultTuning().TimeToSleep/testDt) + 5
	for i := 0; i < steps; i++ {
		is.Solve(testDt, lin.V2Zero, true, 4, 2)
	}

	if b.IsAwake() {
		t.Error("a body at rest with gravity 0 never fell asleep")
	}
}
