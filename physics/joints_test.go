// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
)

func TestDistanceJointHoldsLength(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	anchor := newStaticBox(w, 0, 5, 0, 0.1, 0.1)
	bob := newDynamicBox(w, 0, 3, 0.3, 0.3, 0)

	joint := NewDistanceJoint(DistanceJointDef{
		JointDef: JointDef{BodyA: anchor, BodyB: bob},
		Length:   2,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 180; i++ {
		w.Step(testDt, 8, 3)
	}

	got := anchor.Position().Sub(bob.WorldCenter()).Len()
	if lin.Abs(got-2) > 0.05 {
		t.Errorf("distance between anchors = %v, want ~2", got)
	}
}

func TestPrismaticJointConstrainsToAxis(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	rail := newStaticBox(w, 0, 0, 0, 5, 0.1)
	slider := newDynamicBox(w, 1, 0, 0.2, 0.2, 0)

	joint := NewPrismaticJoint(PrismaticJointDef{
		JointDef:    JointDef{BodyA: rail, BodyB: slider},
		LocalAxisA:  lin.V2{X: 1, Y: 0},
		EnableLimit: true,
		LowerTranslation: -3, UpperTranslation: 3,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := slider.WorldCenter().Y; lin.Abs(got) > 0.05 {
		t.Errorf("slider drifted off its axis: y = %v, want ~0", got)
	}
}

func TestWeldJointLocksRelativePose(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	anchor := newStaticBox(w, 0, 5, 0, 0.5, 0.1)
	plank := newDynamicBox(w, 1, 5, 0.5, 0.1, 0)

	joint := NewWeldJoint(WeldJointDef{
		JointDef:     JointDef{BodyA: anchor, BodyB: plank},
		LocalAnchorA: lin.V2{X: 0.5, Y: 0},
		LocalAnchorB: lin.V2{X: -0.5, Y: 0},
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := plank.Angle(); lin.Abs(got) > 0.05 {
		t.Errorf("welded plank rotated: angle = %v, want ~0", got)
	}
}

func TestMouseJointPullsTowardTarget(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	ground := newStaticBox(w, 0, -10, 0, 50, 0.1)
	ball := newDynamicBox(w, 0, 0, 0.3, 0.3, 0)
	_ = ground

	joint := NewMouseJoint(MouseJointDef{
		JointDef:     JointDef{BodyA: ground, BodyB: ball},
		Target:       lin.V2{X: 3, Y: 0},
		MaxForce:     1000 * ball.Mass(),
		Hertz:        5,
		DampingRatio: 0.7,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 120; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := ball.WorldCenter().X; lin.Abs(got-3) > 0.5 {
		t.Errorf("ball did not track the mouse target: x = %v, want ~3", got)
	}
}

func TestFrictionJointDampensRelativeMotion(t *testing.T) {
	w := NewWorld(nil, Gravity(0, 0))
	anchor := newStaticBox(w, 0, 0, 0, 0.1, 0.1)
	slider := newDynamicBox(w, 0, 0, 0.3, 0.3, 0)
	slider.SetLinearVelocity(lin.V2{X: 5, Y: 0})

	joint := NewFrictionJoint(FrictionJointDef{
		JointDef:  JointDef{BodyA: anchor, BodyB: slider},
		MaxForce:  2,
		MaxTorque: 2,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 120; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := slider.LinearVelocity().Len(); got >= 5 {
		t.Errorf("friction joint did not slow the body: speed = %v, want < 5", got)
	}
}

func TestMotorJointDrivesTowardOffset(t *testing.T) {
	w := NewWorld(nil, Gravity(0, 0))
	anchor := newStaticBox(w, 0, 0, 0, 0.1, 0.1)
	follower := newDynamicBox(w, 0, 0, 0.3, 0.3, 0)

	joint := NewMotorJoint(MotorJointDef{
		JointDef:     JointDef{BodyA: anchor, BodyB: follower},
		LinearOffset: lin.V2{X: 4, Y: 0},
		MaxForce:     100,
		MaxTorque:    10,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 180; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := follower.WorldCenter().X; lin.Abs(got-4) > 0.5 {
		t.Errorf("motor joint did not drive the body to its offset: x = %v, want ~4", got)
	}
}

func TestWheelJointKeepsBodyOnAxis(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	chassis := newStaticBox(w, 0, 1, 0, 2, 0.2)
	wheel := newDynamicBox(w, 0, 0, 0.3, 0.3, 0)

	joint := NewWheelJoint(WheelJointDef{
		JointDef:   JointDef{BodyA: chassis, BodyB: wheel},
		LocalAxisA: lin.V2{X: 0, Y: 1},
		Stiffness:  20,
		Damping:    1,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 120; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := wheel.WorldCenter().X; lin.Abs(got) > 0.05 {
		t.Errorf("wheel drifted off its suspension axis: x = %v, want ~0", got)
	}
}

func TestRopeJointLimitsMaxLength(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	anchor := newStaticBox(w, 0, 5, 0, 0.1, 0.1)
	bob := newDynamicBox(w, 0, 4.9, 0.3, 0.3, 0)

	joint := NewRopeJoint(RopeJointDef{
		JointDef:  JointDef{BodyA: anchor, BodyB: bob},
		MaxLength: 2,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 180; i++ {
		w.Step(testDt, 8, 3)
	}

	got := anchor.Position().Sub(bob.WorldCenter()).Len()
	if got > 2+0.05 {
		t.Errorf("rope stretched beyond its max length: %v, want <= ~2", got)
	}
}

func TestGearJointCouplesTwoRevoluteJoints(t *testing.T) {
	w := NewWorld(nil, Gravity(0, 0))
	ground := newStaticBox(w, 0, 0, 0, 0.1, 0.1)
	armA := newDynamicBox(w, 1, 0, 0.5, 0.1, 0)
	armB := newDynamicBox(w, -1, 0, 0.5, 0.1, 0)

	revA := NewRevoluteJoint(RevoluteJointDef{
		JointDef:     JointDef{BodyA: ground, BodyB: armA},
		LocalAnchorB: lin.V2{X: -1, Y: 0},
	})
	if err := w.CreateJoint(revA); err != nil {
		t.Fatal(err)
	}
	revB := NewRevoluteJoint(RevoluteJointDef{
		JointDef:     JointDef{BodyA: ground, BodyB: armB},
		LocalAnchorB: lin.V2{X: 1, Y: 0},
	})
	if err := w.CreateJoint(revB); err != nil {
		t.Fatal(err)
	}

	gear := NewGearJoint(GearJointDef{
		JointDef: JointDef{BodyA: armA, BodyB: armB},
		Joint1:   revA,
		Joint2:   revB,
		Ratio:    1,
	})
	if err := w.CreateJoint(gear); err != nil {
		t.Fatal(err)
	}

	armA.SetAngularVelocity(1)
	for i := 0; i < 30; i++ {
		w.Step(testDt, 8, 3)
	}

	if lin.Abs(armA.Angle()+armB.Angle()) > 0.2 {
		t.Errorf("geared arms did not move oppositely: angleA=%v angleB=%v", armA.Angle(), armB.Angle())
	}
}
