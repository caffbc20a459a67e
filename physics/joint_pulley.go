// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// PulleyJointDef describes two bodies connected over fixed ground
// pulley points by a rope of total length LengthA + Ratio*LengthB.
type PulleyJointDef struct {
	JointDef
	GroundAnchorA, GroundAnchorB lin.V2
	LocalAnchorA, LocalAnchorB   lin.V2
	LengthA, LengthB             float32
	Ratio                        float32
}

// pulleyJoint constrains lengthA + ratio*lengthB to a constant
// (constant ≈ LengthA + Ratio*LengthB at construction), the classic
// single rope-over-two-pulleys rig.
type pulleyJoint struct {
	jointBase
	groundAnchorA, groundAnchorB lin.V2
	localAnchorA, localAnchorB   lin.V2
	lengthA, lengthB             float32
	ratio                        float32
	constant                     float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	rA, rB                     lin.V2
	uA, uB                     lin.V2
	mass                       float32
	impulse                    float32
}

// NewPulleyJoint builds a pulley joint from def, fixing the rope
// length from LengthA/LengthB/Ratio at construction time.
func NewPulleyJoint(def PulleyJointDef) Joint {
	return &pulleyJoint{
		jointBase:     newJointBase(PulleyJoint, def.JointDef),
		groundAnchorA: def.GroundAnchorA, groundAnchorB: def.GroundAnchorB,
		localAnchorA: def.LocalAnchorA, localAnchorB: def.LocalAnchorB,
		lengthA: def.LengthA, lengthB: def.LengthB,
		ratio:    def.Ratio,
		constant: def.LengthA + def.Ratio*def.LengthB,
	}
}

func (j *pulleyJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *pulleyJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *pulleyJoint) GetReactionForce(invDt float32) lin.V2 { return j.uB.Scale(j.impulse * invDt) }
func (j *pulleyJoint) GetReactionTorque(invDt float32) float32 { return 0 }

// CurrentLengthA returns the current length of the rope segment from
// the ground anchor to body A's anchor.
func (j *pulleyJoint) CurrentLengthA() float32 {
	return j.bodyA.xf.World(j.localAnchorA).Sub(j.groundAnchorA).Len()
}

// CurrentLengthB returns the current length of the rope segment from
// the ground anchor to body B's anchor.
func (j *pulleyJoint) CurrentLengthB() float32 {
	return j.bodyB.xf.World(j.localAnchorB).Sub(j.groundAnchorB).Len()
}

func (j *pulleyJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	pA := posA.c.Add(j.rA)
	pB := posB.c.Add(j.rB)

	j.uA = pA.Sub(j.groundAnchorA)
	j.uB = pB.Sub(j.groundAnchorB)
	lengthA := j.uA.Len()
	lengthB := j.uB.Len()
	if lengthA > 10*linearSlop {
		j.uA = j.uA.Scale(1 / lengthA)
	} else {
		j.uA = lin.V2{}
	}
	if lengthB > 10*linearSlop {
		j.uB = j.uB.Scale(1 / lengthB)
	} else {
		j.uB = lin.V2{}
	}

	ruA := j.rA.Cross(j.uA)
	ruB := j.rB.Cross(j.uB)
	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB
	invMass := mA + j.ratio*j.ratio*mB
	j.mass = 0
	if invMass > 0 {
		j.mass = 1 / invMass
	}

	pImpulse := j.uA.Scale(-j.impulse)
	pImpulseB := j.uB.Scale(-j.ratio * j.impulse)
	velA.v = velA.v.Add(pImpulse.Scale(j.invMassA))
	velA.w += j.invIA * j.rA.Cross(pImpulse)
	velB.v = velB.v.Add(pImpulseB.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(pImpulseB)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *pulleyJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
	vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))

	cdot := -j.uA.Dot(vpA) - j.ratio*j.uB.Dot(vpB)
	impulse := -j.mass * cdot
	j.impulse += impulse

	pA := j.uA.Scale(-impulse)
	pB := j.uB.Scale(-j.ratio * impulse)
	velA.v = velA.v.Add(pA.Scale(j.invMassA))
	velA.w += j.invIA * j.rA.Cross(pA)
	velB.v = velB.v.Add(pB.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(pB)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *pulleyJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	pA := posA.c.Add(rA)
	pB := posB.c.Add(rB)

	uA := pA.Sub(j.groundAnchorA)
	uB := pB.Sub(j.groundAnchorB)
	lengthA := uA.Len()
	lengthB := uB.Len()
	if lengthA > 10*linearSlop {
		uA = uA.Scale(1 / lengthA)
	} else {
		uA = lin.V2{}
	}
	if lengthB > 10*linearSlop {
		uB = uB.Scale(1 / lengthB)
	} else {
		uB = lin.V2{}
	}

	c := j.constant - lengthA - j.ratio*lengthB
	linearError := lin.Abs(c)

	ruA := rA.Cross(uA)
	ruB := rB.Cross(uB)
	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB
	invMass := mA + j.ratio*j.ratio*mB
	mass := float32(0)
	if invMass > 0 {
		mass = 1 / invMass
	}
	impulse := -mass * c

	pAi := uA.Scale(-impulse)
	pBi := uB.Scale(-j.ratio * impulse)
	posA.c = posA.c.Add(pAi.Scale(j.invMassA))
	posA.a += j.invIA * rA.Cross(pAi)
	posB.c = posB.c.Add(pBi.Scale(j.invMassB))
	posB.a += j.invIB * rB.Cross(pBi)
	data.positions[j.indexA], data.positions[j.indexB] = posA, posB

	return linearError < linearSlop
}
