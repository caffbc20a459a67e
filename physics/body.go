// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"

	"github.com/kinetix2d/kinetix/math/lin"
)

// BodyType classifies how a body participates in the simulation.
type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// bodyFlags are the body flag bits from the data model: Island, Awake,
// AutoSleep, Bullet, FixedRotation, Enabled, TOI.
type bodyFlags uint32

const (
	bodyIsland bodyFlags = 1 << iota
	bodyAwake
	bodyAutoSleep
	bodyBullet
	bodyFixedRotation
	bodyEnabled
	bodyTOI
)

// BodyDef describes the initial state of a body to be created via
// World.CreateBody.
type BodyDef struct {
	Type           BodyType
	Position       lin.V2
	Angle          float32
	LinearVelocity lin.V2
	AngularVelocity float32
	LinearDamping  float32
	AngularDamping float32
	GravityScale   float32
	AllowSleep     bool
	Awake          bool
	FixedRotation  bool
	Bullet         bool
	Enabled        bool
}

// DefaultBodyDef returns a BodyDef with the engine's conventional
// defaults (gravity scale 1, awake, sleep allowed, enabled).
func DefaultBodyDef() BodyDef {
	return BodyDef{
		GravityScale: 1,
		AllowSleep:   true,
		Awake:        true,
		Enabled:      true,
	}
}

// BodyHandle identifies a body created by World.CreateBody. The zero
// value never refers to a live body.
type BodyHandle struct{ id uint32 }

// Body is a rigid body: pose, velocity, mass properties and the
// fixtures, contacts and joints attached to it. Bodies are only
// created and destroyed through their owning World.
type Body struct {
	handle BodyHandle
	typ    BodyType
	flags  bodyFlags
	world  *World

	sweep lin.Sweep // interpolated motion over the current step
	xf    lin.Transform

	linearVelocity  lin.V2
	angularVelocity float32
	force           lin.V2
	torque          float32

	linearDamping  float32
	angularDamping float32
	gravityScale   float32

	mass, invMass float32
	i, invI       float32 // rotational inertia about the center of mass

	sleepTime float32
	islandIndex int

	fixtures []*Fixture
	contactEdges []*ContactEdge
	jointEdges   []*JointEdge

	userData interface{}
}

// Handle returns the stable handle identifying this body.
func (b *Body) Handle() BodyHandle { return b.handle }

// Type returns the body's type.
func (b *Body) Type() BodyType { return b.typ }

// Transform returns the body's current world transform.
func (b *Body) Transform() lin.Transform { return b.xf }

// Position returns the body's current world position (origin, not
// center of mass).
func (b *Body) Position() lin.V2 { return b.xf.P }

// Angle returns the body's current world angle in radians.
func (b *Body) Angle() float32 { return b.sweep.A }

// WorldCenter returns the body's center of mass in world space.
func (b *Body) WorldCenter() lin.V2 { return b.sweep.C }

// LinearVelocity returns the velocity of the body's center of mass.
func (b *Body) LinearVelocity() lin.V2 { return b.linearVelocity }

// AngularVelocity returns the body's angular velocity in radians/second.
func (b *Body) AngularVelocity() float32 { return b.angularVelocity }

// SetLinearVelocity sets the velocity of the body's center of mass.
// No-op on static bodies.
func (b *Body) SetLinearVelocity(v lin.V2) {
	if b.typ == StaticBody {
		return
	}
	if v.Dot(v) > 0 {
		b.SetAwake(true)
	}
	b.linearVelocity = v
}

// SetAngularVelocity sets the body's angular velocity. No-op on static
// bodies.
func (b *Body) SetAngularVelocity(w float32) {
	if b.typ == StaticBody {
		return
	}
	if w*w > 0 {
		b.SetAwake(true)
	}
	b.angularVelocity = w
}

// ApplyForce applies a force at a world point, also generating torque.
func (b *Body) ApplyForce(force lin.V2, point lin.V2, wake bool) {
	if b.typ != DynamicBody {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.force = b.force.Add(force)
	b.torque += point.Sub(b.sweep.C).Cross(force)
}

// ApplyForceToCenter applies a force to the body's center of mass,
// generating no torque.
func (b *Body) ApplyForceToCenter(force lin.V2, wake bool) {
	if b.typ != DynamicBody {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.force = b.force.Add(force)
}

// ApplyTorque applies a torque, independent of any force.
func (b *Body) ApplyTorque(torque float32, wake bool) {
	if b.typ != DynamicBody {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.torque += torque
}

// ApplyLinearImpulse applies an instantaneous impulse at a world point.
func (b *Body) ApplyLinearImpulse(impulse lin.V2, point lin.V2, wake bool) {
	if b.typ != DynamicBody {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
	b.angularVelocity += b.invI * point.Sub(b.sweep.C).Cross(impulse)
}

// Mass returns the body's mass. Zero for static and kinematic bodies.
func (b *Body) Mass() float32 { return b.mass }

// InvMass returns the inverse of the body's mass (zero iff the body
// does not move under forces).
func (b *Body) InvMass() float32 { return b.invMass }

// Inertia returns the body's rotational inertia about its center of mass.
func (b *Body) Inertia() float32 { return b.i }

// InvInertia returns the inverse rotational inertia about the center of
// mass.
func (b *Body) InvInertia() float32 { return b.invI }

// IsAwake reports whether the body is currently simulated.
func (b *Body) IsAwake() bool { return b.flags&bodyAwake != 0 }

// IsEnabled reports whether the body participates in the simulation at all.
func (b *Body) IsEnabled() bool { return b.flags&bodyEnabled != 0 }

// IsBullet reports whether the body is opted into continuous collision.
func (b *Body) IsBullet() bool { return b.flags&bodyBullet != 0 }

// SetBullet toggles continuous collision detection for this dynamic body.
func (b *Body) SetBullet(flag bool) {
	if flag {
		b.flags |= bodyBullet
	} else {
		b.flags &^= bodyBullet
	}
}

// SetAwake toggles whether the body is actively simulated. Waking a
// sleeping body preserves its velocities (it was at rest); putting a
// body to sleep zeroes them and resets the sleep timer.
func (b *Body) SetAwake(flag bool) {
	if flag {
		if b.flags&bodyAwake == 0 {
			b.sleepTime = 0
		}
		b.flags |= bodyAwake
	} else {
		b.flags &^= bodyAwake
		b.sleepTime = 0
		b.linearVelocity = lin.V2Zero
		b.angularVelocity = 0
		b.force = lin.V2Zero
		b.torque = 0
	}
}

// AllowsSleep reports whether the body may be put to sleep by the
// sleep-management pass.
func (b *Body) AllowsSleep() bool { return b.flags&bodyAutoSleep != 0 }

// SetAllowsSleep toggles whether the body may ever be put to sleep.
func (b *Body) SetAllowsSleep(flag bool) {
	if flag {
		b.flags |= bodyAutoSleep
	} else {
		b.flags &^= bodyAutoSleep
		b.SetAwake(true)
	}
}

// SetType changes the body's classification (static/kinematic/dynamic),
// destroying every contact it participates in (they are rebuilt on the
// next Step against the new type's collision rules) and recomputing mass
// data. Returns ErrWorldLocked if called during Step.
func (b *Body) SetType(t BodyType) error {
	if b.world.isLocked() {
		slog.Warn("physics: SetType called while world locked")
		return ErrWorldLocked
	}
	if b.typ == t {
		return nil
	}
	b.typ = t
	b.linearVelocity = lin.V2Zero
	b.angularVelocity = 0
	b.force = lin.V2Zero
	b.torque = 0
	b.resetMassData()
	b.SetAwake(true)
	for len(b.contactEdges) > 0 {
		b.world.contactManager.destroy(b.contactEdges[0].Contact)
	}
	if b.IsEnabled() {
		bp := b.world.contactManager.BroadPhase()
		for _, f := range b.fixtures {
			for _, p := range f.Proxies {
				bp.TouchProxy(p.treeID)
			}
		}
	}
	return nil
}

// SetEnabled toggles whether the body participates in the simulation at
// all: disabling removes its fixtures' broad-phase proxies and destroys
// its contacts; enabling recreates them. Returns ErrWorldLocked if called
// during Step.
func (b *Body) SetEnabled(flag bool) error {
	if b.world.isLocked() {
		slog.Warn("physics: SetEnabled called while world locked")
		return ErrWorldLocked
	}
	if flag == b.IsEnabled() {
		return nil
	}
	if flag {
		b.flags |= bodyEnabled
		bp := b.world.contactManager.BroadPhase()
		for _, f := range b.fixtures {
			for _, p := range f.Proxies {
				p.AABB = f.Shape.ComputeAABB(b.xf, p.ChildIndex).Extend(aabbExtension)
				p.treeID = bp.CreateProxy(p.AABB, p)
			}
		}
		return nil
	}
	b.flags &^= bodyEnabled
	bp := b.world.contactManager.BroadPhase()
	for _, f := range b.fixtures {
		for _, p := range f.Proxies {
			bp.DestroyProxy(p.treeID)
		}
	}
	for len(b.contactEdges) > 0 {
		b.world.contactManager.destroy(b.contactEdges[0].Contact)
	}
	return nil
}

// SetTransform teleports the body to position/angle immediately,
// bypassing the velocity solver, and resynchronizes every fixture's
// broad-phase proxy. Returns ErrWorldLocked if called during Step.
func (b *Body) SetTransform(position lin.V2, angle float32) error {
	if b.world.isLocked() {
		slog.Warn("physics: SetTransform called while world locked")
		return ErrWorldLocked
	}
	b.xf = lin.NewTransform(position, angle)
	b.sweep.C0 = b.xf.World(b.sweep.LocalCenter)
	b.sweep.C = b.sweep.C0
	b.sweep.A0 = angle
	b.sweep.A = angle
	bp := b.world.contactManager.BroadPhase()
	for _, f := range b.fixtures {
		for _, p := range f.Proxies {
			p.AABB = f.Shape.ComputeAABB(b.xf, p.ChildIndex).Extend(aabbExtension)
			bp.MoveProxy(p.treeID, p.AABB, lin.V2Zero)
		}
	}
	return nil
}

// ShouldCollide reports whether this body should be tested for
// collision against other, honoring joints with collideConnected=false.
func (b *Body) ShouldCollide(other *Body) bool {
	if b.typ != DynamicBody && other.typ != DynamicBody {
		return false
	}
	for _, je := range b.jointEdges {
		if je.Other == other && !je.Joint.base().collideConnected {
			return false
		}
	}
	return true
}

// SynchronizeTransform recomputes xf from the current sweep pose
// (sweep.C, sweep.A) and local center of mass.
func (b *Body) synchronizeTransform() {
	b.xf = b.sweep.GetTransform()
}

// resetMassData recomputes mass, center of mass and rotational inertia
// from the body's fixtures, applying the invariants in the data model:
// static/kinematic bodies carry zero/infinite mass; a dynamic body
// whose fixtures contribute zero mass is coerced to mass=1.
func (b *Body) resetMassData() {
	b.mass = 0
	b.invMass = 0
	b.i = 0
	b.invI = 0
	localCenter := lin.V2Zero

	if b.typ != DynamicBody {
		b.sweep.C0 = b.xf.World(b.sweep.LocalCenter)
		b.sweep.C = b.sweep.C0
		b.sweep.A0 = b.sweep.A
		return
	}

	for _, f := range b.fixtures {
		if f.Density == 0 {
			continue
		}
		md := f.Shape.ComputeMass(f.Density)
		b.mass += md.Mass
		localCenter = localCenter.Add(md.Center.Scale(md.Mass))
		b.i += md.I
	}

	if b.mass > 0 {
		b.invMass = 1 / b.mass
		localCenter = localCenter.Scale(b.invMass)
	} else {
		b.mass = 1
		b.invMass = 1
	}

	if b.i > 0 && b.flags&bodyFixedRotation == 0 {
		b.i -= b.mass * localCenter.Dot(localCenter)
		b.invI = 1 / b.i
	} else {
		b.i = 0
		b.invI = 0
	}

	oldCenter := b.sweep.C
	b.sweep.LocalCenter = localCenter
	b.sweep.C0 = b.xf.World(localCenter)
	b.sweep.C = b.sweep.C0
	b.sweep.A0 = b.sweep.A
	b.linearVelocity = b.linearVelocity.Add(lin.CrossSV(b.angularVelocity, b.sweep.C.Sub(oldCenter)))
}

// Fixtures returns the fixtures attached to this body. The returned
// slice is owned by the body; callers must not retain or mutate it.
func (b *Body) Fixtures() []*Fixture { return b.fixtures }

// UserData returns the value last stored via SetUserData.
func (b *Body) UserData() interface{} { return b.userData }

// SetUserData attaches an arbitrary value to the body.
func (b *Body) SetUserData(v interface{}) { b.userData = v }
