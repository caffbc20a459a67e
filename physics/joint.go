// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// JointType identifies the concrete joint behind a Joint, needed since
// joints are solved through a common interface (preferred here over a
// single tagged-union struct: each joint type already varies enough in
// its per-type solver state that a Go interface reads cleaner than a
// struct with a dozen mostly-unused fields).
type JointType int

const (
	DistanceJoint JointType = iota
	RevoluteJoint
	PrismaticJoint
	WeldJoint
	PulleyJoint
	GearJoint
	MouseJoint
	FrictionJoint
	MotorJoint
	WheelJoint
	RopeJoint
)

// JointEdge is one endpoint of a joint on a body's joint list.
type JointEdge struct {
	Other *Body
	Joint Joint
}

// JointDef carries the construction parameters shared by every joint
// type: the two connected bodies and whether they still collide with
// each other.
type JointDef struct {
	BodyA, BodyB     *Body
	CollideConnected bool
	UserData         interface{}
}

// jointBase is embedded by every concrete joint and implements the
// bookkeeping portion of the Joint interface.
type jointBase struct {
	typ              JointType
	bodyA, bodyB     *Body
	collideConnected bool
	islandFlag       bool
	userData         interface{}
	edgeA, edgeB     *JointEdge
}

func (j *jointBase) base() *jointBase { return j }

// Joint is the common interface every joint type implements so the
// solver can iterate a heterogeneous list without a type switch per
// joint kind. initVelocityConstraints runs once per island solve,
// solveVelocityConstraints runs every velocity iteration, and
// solvePositionConstraints runs every position iteration and reports
// whether the constraint is satisfied to within the position tolerance.
type Joint interface {
	GetType() JointType
	GetBodyA() *Body
	GetBodyB() *Body
	GetAnchorA() lin.V2
	GetAnchorB() lin.V2
	GetReactionForce(invDt float32) lin.V2
	GetReactionTorque(invDt float32) float32
	IsActive() bool
	UserData() interface{}

	initVelocityConstraints(data *solverData)
	solveVelocityConstraints(data *solverData)
	solvePositionConstraints(data *solverData) bool

	base() *jointBase
}

func (j *jointBase) GetType() JointType { return j.typ }
func (j *jointBase) GetBodyA() *Body    { return j.bodyA }
func (j *jointBase) GetBodyB() *Body    { return j.bodyB }
func (j *jointBase) UserData() interface{} { return j.userData }

// IsActive reports whether both connected bodies are enabled, so the
// joint may pull a sleeping neighbor into an island the way a touching
// contact does; a disabled body drops the joint from participation
// entirely rather than letting it bridge into a body that cannot move.
func (j *jointBase) IsActive() bool { return j.bodyA.IsEnabled() && j.bodyB.IsEnabled() }

// solverData is the per-body velocity/position scratch the Island
// solver hands to each joint and contact constraint for the duration
// of one Solve call; indices match the island's local body ordering.
type solverData struct {
	dt       float32
	invDt    float32
	dtRatio  float32
	positions  []solverPosition
	velocities []solverVelocity
	index      map[*Body]int
}

type solverPosition struct {
	c lin.V2
	a float32
}

type solverVelocity struct {
	v lin.V2
	w float32
}

// indexOf returns b's slot in this island's position/velocity arrays.
func (d *solverData) indexOf(b *Body) int { return d.index[b] }

func newJointBase(typ JointType, def JointDef) jointBase {
	return jointBase{
		typ:              typ,
		bodyA:            def.BodyA,
		bodyB:            def.BodyB,
		collideConnected: def.CollideConnected,
		userData:         def.UserData,
	}
}
