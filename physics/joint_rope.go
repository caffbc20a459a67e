// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// RopeJointDef describes an inequality constraint: the distance between
// the two anchors may shrink freely but never exceed MaxLength, like a
// taut rope going slack.
type RopeJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	MaxLength                  float32
}

// ropeJoint is a one-sided distance constraint: it only ever pulls the
// anchors together, never pushes them apart, so it has no motor or
// limit beyond MaxLength itself.
type ropeJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	maxLength                  float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	rA, rB                     lin.V2
	u                          lin.V2
	mass                       float32
	impulse                    float32
	length                     float32
	state                      ropeState
}

type ropeState int

const (
	ropeInactive ropeState = iota
	ropeAtUpper
)

// NewRopeJoint builds a rope joint from def.
func NewRopeJoint(def RopeJointDef) Joint {
	return &ropeJoint{
		jointBase:    newJointBase(RopeJoint, def.JointDef),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxLength:    def.MaxLength,
	}
}

func (j *ropeJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *ropeJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *ropeJoint) GetReactionForce(invDt float32) lin.V2 { return j.u.Scale(j.impulse * invDt) }
func (j *ropeJoint) GetReactionTorque(invDt float32) float32 { return 0 }

func (j *ropeJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	j.u = posB.c.Add(j.rB).Sub(posA.c).Sub(j.rA)
	j.length = j.u.Len()

	c := j.length - j.maxLength
	if c > 0 {
		j.state = ropeAtUpper
	} else {
		j.state = ropeInactive
	}

	if j.length > linearSlop {
		j.u = j.u.Scale(1 / j.length)
	} else {
		j.u = lin.V2{}
		j.mass = 0
		j.impulse = 0
		return
	}

	ruA := j.rA.Cross(j.u)
	ruB := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*ruA*ruA + j.invMassB + j.invIB*ruB*ruB
	j.mass = 0
	if invMass > 0 {
		j.mass = 1 / invMass
	}

	if j.state != ropeAtUpper {
		j.impulse = 0
	}

	p := j.u.Scale(j.impulse)
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * j.rA.Cross(p)
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(p)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *ropeJoint) solveVelocityConstraints(data *solverData) {
	if j.state != ropeAtUpper {
		return
	}
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
	vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	c := j.length - j.maxLength
	bias := lin.Min(c, 0) * data.invDt

	impulse := -j.mass * (cdot + bias)
	oldImpulse := j.impulse
	j.impulse = lin.Min(0, j.impulse+impulse)
	impulse = j.impulse - oldImpulse

	p := j.u.Scale(impulse)
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * j.rA.Cross(p)
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(p)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *ropeJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	u := posB.c.Add(rB).Sub(posA.c).Sub(rA)

	length := u.Len()
	u = u.Scale(1 / lin.Max(length, linearSlop))
	c := lin.Clamp(length-j.maxLength, 0, maxLinearCorrection)

	ruA := rA.Cross(u)
	ruB := rB.Cross(u)
	invMass := j.invMassA + j.invIA*ruA*ruA + j.invMassB + j.invIB*ruB*ruB
	mass := float32(0)
	if invMass > 0 {
		mass = 1 / invMass
	}
	impulse := -mass * c

	p := u.Scale(impulse)
	posA.c = posA.c.Sub(p.Scale(j.invMassA))
	posA.a -= j.invIA * rA.Cross(p)
	posB.c = posB.c.Add(p.Scale(j.invMassB))
	posB.a += j.invIB * rB.Cross(p)
	data.positions[j.indexA], data.positions[j.indexB] = posA, posB

	return length-j.maxLength < linearSlop
}
