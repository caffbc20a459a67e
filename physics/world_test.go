// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

const testDt = 1.0 / 60.0

// recordingListener counts lifecycle callbacks without needing a mock
// framework, matching the teacher's preference for hand-rolled fakes
// over an interface-mocking library.
type recordingListener struct {
	begins int
}

func (l *recordingListener) BeginContact(c *Contact)                  { l.begins++ }
func (l *recordingListener) EndContact(c *Contact)                    {}
func (l *recordingListener) PreSolve(c *Contact, old *shape.Manifold) {}
func (l *recordingListener) PostSolve(c *Contact, imp *ContactImpulse) {}

func newDynamicCircle(w *World, x, y, radius float32) *Body {
	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = lin.V2{X: x, Y: y}
	b, err := w.CreateBody(def)
	if err != nil {
		panic(err)
	}
	fd := DefaultFixtureDef(shape.NewCircleShape(radius))
	fd.Density = 1
	fd.Friction = 0.3
	if _, err := w.CreateFixture(b, fd); err != nil {
		panic(err)
	}
	return b
}

func newStaticBox(w *World, x, y, angle, hx, hy float32) *Body {
	def := DefaultBodyDef()
	def.Type = StaticBody
	def.Position = lin.V2{X: x, Y: y}
	def.Angle = angle
	b, err := w.CreateBody(def)
	if err != nil {
		panic(err)
	}
	fd := DefaultFixtureDef(shape.NewBoxPolygon(hx, hy))
	fd.Friction = 0.5
	if _, err := w.CreateFixture(b, fd); err != nil {
		panic(err)
	}
	return b
}

func newDynamicBox(w *World, x, y, hx, hy, friction float32) *Body {
	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = lin.V2{X: x, Y: y}
	b, err := w.CreateBody(def)
	if err != nil {
		panic(err)
	}
	fd := DefaultFixtureDef(shape.NewBoxPolygon(hx, hy))
	fd.Density = 1
	fd.Friction = friction
	if _, err := w.CreateFixture(b, fd); err != nil {
		panic(err)
	}
	return b
}

// TestFreeFall: one dynamic unit disk at (0, 10), gravity (0, -10),
// dt=1/60, 60 steps. Expected final height ~5.
func TestFreeFall(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	b := newDynamicCircle(w, 0, 10, 0.5)

	steps := 60
	for i := 0; i < steps; i++ {
		w.Step(testDt, 8, 3)
	}

	wantV := -10 * testDt * float32(steps)
	if gotV := b.LinearVelocity().Y; lin.Abs(gotV-wantV) > 1e-3 {
		t.Errorf("velocity after %d steps = %v, want %v", steps, gotV, wantV)
	}
	if got := b.WorldCenter().Y; lin.Abs(got-5) > 0.5 {
		t.Errorf("final height = %v, want ~5", got)
	}
}

// TestRestingStack: a static ground box and three stacked unit boxes,
// 120 steps at 1/60 s. Expected: topmost center-y - ground center-y
// equals 3 within a small tolerance (each unit box is 1 unit tall,
// ground center is half a unit below its own top surface).
func TestRestingStack(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	newStaticBox(w, 0, 0, 0, 5, 0.5)
	b1 := newDynamicBox(w, 0, 1.05, 0.5, 0.5, 0.3)
	b2 := newDynamicBox(w, 0, 2.1, 0.5, 0.5, 0.3)
	top := newDynamicBox(w, 0, 3.2, 0.5, 0.5, 0.3)
	_ = b1
	_ = b2

	for i := 0; i < 120; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := top.WorldCenter().Y; lin.Abs(got-3) > 0.15 {
		t.Errorf("topmost box center-y = %v, want ~3", got)
	}
	if top.IsAwake() && lin.Abs(top.LinearVelocity().Y) > 0.1 {
		t.Errorf("stack has not settled: top.vy = %v", top.LinearVelocity().Y)
	}
}

// TestBulletThroughThinWall: a thin static wall at x=0 spanning
// y in [-0.5, 0.5]; a bullet body at (-1, 0) and a plain dynamic body at
// (-1, 2) both move at vx=200, gravity 0. After one step the bullet must
// not have crossed the wall (continuous collision catches it), while the
// plain body, whose path passes above the wall, ends past x=0.
func TestBulletThroughThinWall(t *testing.T) {
	listener := &recordingListener{}
	w := NewWorld(listener, Gravity(0, 0), ContinuousPhysics(true))
	newStaticBox(w, 0, 0, 0, 0.005, 0.5)

	bulletDef := DefaultBodyDef()
	bulletDef.Type = DynamicBody
	bulletDef.Position = lin.V2{X: -1, Y: 0}
	bulletDef.Bullet = true
	bullet, err := w.CreateBody(bulletDef)
	if err != nil {
		t.Fatal(err)
	}
	bfd := DefaultFixtureDef(shape.NewCircleShape(0.1))
	bfd.Density = 1
	if _, err := w.CreateFixture(bullet, bfd); err != nil {
		t.Fatal(err)
	}
	bullet.SetLinearVelocity(lin.V2{X: 200, Y: 0})

	plainDef := DefaultBodyDef()
	plainDef.Type = DynamicBody
	plainDef.Position = lin.V2{X: -1, Y: 2}
	plain, err := w.CreateBody(plainDef)
	if err != nil {
		t.Fatal(err)
	}
	pfd := DefaultFixtureDef(shape.NewCircleShape(0.1))
	pfd.Density = 1
	if _, err := w.CreateFixture(plain, pfd); err != nil {
		t.Fatal(err)
	}
	plain.SetLinearVelocity(lin.V2{X: 200, Y: 0})

	w.Step(testDt, 8, 3)

	if bullet.WorldCenter().X >= 0 {
		t.Errorf("bullet tunnelled through the wall: x = %v", bullet.WorldCenter().X)
	}
	if listener.begins == 0 {
		t.Error("no contact was detected between the bullet and the wall")
	}
	if plain.WorldCenter().X <= 0 {
		t.Errorf("non-bullet body unexpectedly stopped at the wall: x = %v", plain.WorldCenter().X)
	}
}

// TestRevoluteMotor: a pendulum rod of length 1 driven by a motor with
// maxTorque=10, motorSpeed=pi. After 2s, angular displacement should be
// approximately 2*pi.
func TestRevoluteMotor(t *testing.T) {
	w := NewWorld(nil, Gravity(0, 0))
	anchor := newStaticBox(w, 0, 0, 0, 0.1, 0.1)
	arm := newDynamicBox(w, 0.5, 0, 0.5, 0.05, 0.3)

	joint := NewRevoluteJoint(RevoluteJointDef{
		JointDef:       JointDef{BodyA: anchor, BodyB: arm},
		LocalAnchorA:   lin.V2{X: 0, Y: 0},
		LocalAnchorB:   lin.V2{X: -0.5, Y: 0},
		EnableMotor:    true,
		MotorSpeed:     lin.PI,
		MaxMotorTorque: 10,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	startAngle := arm.Angle()
	steps := 120 // 2 seconds at 1/60s
	for i := 0; i < steps; i++ {
		w.Step(testDt, 8, 3)
	}

	displacement := arm.Angle() - startAngle
	want := float32(2 * lin.PI)
	if lin.Abs(displacement-want) > 0.3*want {
		t.Errorf("angular displacement after 2s = %v, want ~%v", displacement, want)
	}
}

// TestPulleyMeetsInMiddle: two 1-kg bodies connected by a ratio-1
// pulley, released from rest one at y=0 and the other at y=10 (hung
// symmetrically from ground anchors at y=10). Both should converge
// toward y=5, the only configuration consistent with the rope-length
// constraint and the bodies' equal masses.
func TestPulleyMeetsInMiddle(t *testing.T) {
	w := NewWorld(nil, Gravity(0, -10))
	left := newDynamicBox(w, -1, 0, 0.5, 0.5, 0.3)
	right := newDynamicBox(w, 1, 10, 0.5, 0.5, 0.3)

	joint := NewPulleyJoint(PulleyJointDef{
		JointDef:      JointDef{BodyA: left, BodyB: right},
		GroundAnchorA: lin.V2{X: -1, Y: 10},
		GroundAnchorB: lin.V2{X: 1, Y: 10},
		LocalAnchorA:  lin.V2Zero,
		LocalAnchorB:  lin.V2Zero,
		LengthA:       10,
		LengthB:       0,
		Ratio:         1,
	})
	if err := w.CreateJoint(joint); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 300; i++ {
		w.Step(testDt, 8, 3)
	}

	if got := left.WorldCenter().Y; lin.Abs(got-5) > 0.6 {
		t.Errorf("left body did not reach the meeting point: y = %v, want ~5", got)
	}
	if got := right.WorldCenter().Y; lin.Abs(got-5) > 0.6 {
		t.Errorf("right body did not reach the meeting point: y = %v, want ~5", got)
	}
}

// TestFrictionSlide: a 1-kg box on a 30-degree incline with friction
// 0.5. Expected sliding acceleration along the slope is approximately
// g*(sin30 - cos30*0.5) ~= 0.67 m/s^2.
func TestFrictionSlide(t *testing.T) {
	const angle = -30 * lin.PI / 180
	slopeDir := lin.V2{X: lin.Cos(angle), Y: lin.Sin(angle)}

	w := NewWorld(nil, Gravity(0, -10))
	newStaticBox(w, 0, 0, angle, 10, 0.5)

	box := newDynamicBox(w, 0, 1.2, 0.5, 0.5, 0.5)
	box.SetTransform(box.Position(), angle)

	// let the box settle onto the incline before measuring.
	for i := 0; i < 30; i++ {
		w.Step(testDt, 8, 3)
	}
	v0 := box.LinearVelocity().Dot(slopeDir)

	measureSteps := 60
	for i := 0; i < measureSteps; i++ {
		w.Step(testDt, 8, 3)
	}
	v1 := box.LinearVelocity().Dot(slopeDir)

	accel := (v1 - v0) / (float32(measureSteps) * testDt)
	want := float32(10 * (0.5 - 0.8660254*0.5)) // g*(sin30 - cos30*mu)
	if lin.Abs(accel-want) > 0.3 {
		t.Errorf("sliding acceleration = %v, want ~%v", accel, want)
	}
}
