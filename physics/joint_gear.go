// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// GearJointDef couples the angular (or, for a prismatic joint1/2, the
// axial) motion of two existing revolute or prismatic joints by Ratio:
// angle1 + ratio*angle2 is held constant.
type GearJointDef struct {
	JointDef
	Joint1, Joint2 Joint
	Ratio          float32
}

// gearJoint reads joint1/joint2's anchors and axes to build a single
// scalar constraint coupling their relative motion, without needing to
// know whether each is a revolute or prismatic joint beyond dispatch
// on GetType.
type gearJoint struct {
	jointBase
	joint1, joint2 Joint
	ratio          float32

	bodyC, bodyD   *Body
	localAnchorA, localAnchorB, localAnchorC, localAnchorD lin.V2
	localAxisC, localAxisD lin.V2
	typeA, typeB   JointType
	referenceAngleA, referenceAngleB float32

	indexA, indexB, indexC, indexD int
	lcA, lcB, lcC, lcD             lin.V2
	invMassA, invMassB, invMassC, invMassD float32
	invIA, invIB, invIC, invID             float32

	jvAC, jvBD lin.V2
	jwA, jwB, jwC, jwD float32
	mass       float32
	impulse    float32
	constant   float32
}

// NewGearJoint builds a gear joint coupling joint1 and joint2, both of
// which must be Revolute or Prismatic joints whose BodyB is this joint's
// own BodyA (for joint1) or BodyB (for joint2); each coupled joint's
// BodyA serves as the reference body for that half of the coupling.
func NewGearJoint(def GearJointDef) Joint {
	j := &gearJoint{
		jointBase: newJointBase(GearJoint, def.JointDef),
		joint1:    def.Joint1, joint2: def.Joint2,
		ratio: def.Ratio,
	}
	j.typeA = def.Joint1.GetType()
	j.typeB = def.Joint2.GetType()

	switch r := def.Joint1.(type) {
	case *revoluteJoint:
		j.bodyC = r.bodyA
		j.localAnchorA = r.localAnchorB
		j.localAnchorC = r.localAnchorA
		j.referenceAngleA = r.referenceAngle
	case *prismaticJoint:
		j.bodyC = r.bodyA
		j.localAnchorA = r.localAnchorB
		j.localAnchorC = r.localAnchorA
		j.localAxisC = r.localAxisA
	}
	switch r := def.Joint2.(type) {
	case *revoluteJoint:
		j.bodyD = r.bodyA
		j.localAnchorB = r.localAnchorB
		j.localAnchorD = r.localAnchorA
		j.referenceAngleB = r.referenceAngle
	case *prismaticJoint:
		j.bodyD = r.bodyA
		j.localAnchorB = r.localAnchorB
		j.localAnchorD = r.localAnchorA
		j.localAxisD = r.localAxisA
	}
	return j
}

func (j *gearJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *gearJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *gearJoint) GetReactionForce(invDt float32) lin.V2 {
	return j.jvAC.Scale(j.impulse * invDt)
}
func (j *gearJoint) GetReactionTorque(invDt float32) float32 { return j.jwA * j.impulse * invDt }

func (j *gearJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.indexC, j.indexD = data.indexOf(j.bodyC), data.indexOf(j.bodyD)
	j.lcA, j.lcB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.lcC, j.lcD = j.bodyC.sweep.LocalCenter, j.bodyD.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invMassC, j.invMassD = j.bodyC.invMass, j.bodyD.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI
	j.invIC, j.invID = j.bodyC.invI, j.bodyD.invI

	qA := lin.NewRot(data.positions[j.indexA].a)
	qB := lin.NewRot(data.positions[j.indexB].a)
	qC := lin.NewRot(data.positions[j.indexC].a)
	qD := lin.NewRot(data.positions[j.indexD].a)

	mass := float32(0)

	if j.typeA == RevoluteJoint {
		j.jvAC = lin.V2{}
		j.jwA, j.jwC = 1, 1
		mass += j.invIA + j.invIC
	} else {
		axis := qC.MulVec2(j.localAxisC)
		rC := qC.MulVec2(j.localAnchorC.Sub(j.lcC))
		rA := qA.MulVec2(j.localAnchorA.Sub(j.lcA))
		j.jvAC = axis
		j.jwC = rC.Cross(axis)
		j.jwA = rA.Cross(axis)
		mass += j.invMassC + j.invMassA + j.invIC*j.jwC*j.jwC + j.invIA*j.jwA*j.jwA
	}

	if j.typeB == RevoluteJoint {
		j.jvBD = lin.V2{}
		j.jwB, j.jwD = 1, 1
		mass += j.ratio * j.ratio * (j.invIB + j.invID)
	} else {
		axis := qD.MulVec2(j.localAxisD)
		rD := qD.MulVec2(j.localAnchorD.Sub(j.lcD))
		rB := qB.MulVec2(j.localAnchorB.Sub(j.lcB))
		j.jvBD = axis
		j.jwD = rD.Cross(axis)
		j.jwB = rB.Cross(axis)
		mass += j.ratio * j.ratio * (j.invMassD + j.invMassB + j.invID*j.jwD*j.jwD + j.invIB*j.jwB*j.jwB)
	}

	j.mass = 0
	if mass > 0 {
		j.mass = 1 / mass
	}

	velA := data.velocities[j.indexA]
	velB := data.velocities[j.indexB]
	velC := data.velocities[j.indexC]
	velD := data.velocities[j.indexD]

	pA := j.jvAC.Scale(j.impulse)
	lA := j.jwA * j.impulse
	pC := j.jvAC.Scale(-j.impulse)
	lC := j.jwC * j.impulse
	pB := j.jvBD.Scale(j.ratio * j.impulse)
	lB := j.jwB * j.ratio * j.impulse
	pD := j.jvBD.Scale(-j.ratio * j.impulse)
	lD := j.jwD * j.ratio * j.impulse

	velA.v = velA.v.Add(pA.Scale(j.invMassA))
	velA.w += j.invIA * lA
	velC.v = velC.v.Add(pC.Scale(j.invMassC))
	velC.w += j.invIC * lC
	velB.v = velB.v.Add(pB.Scale(j.invMassB))
	velB.w += j.invIB * lB
	velD.v = velD.v.Add(pD.Scale(j.invMassD))
	velD.w += j.invID * lD

	data.velocities[j.indexA] = velA
	data.velocities[j.indexB] = velB
	data.velocities[j.indexC] = velC
	data.velocities[j.indexD] = velD
}

func (j *gearJoint) solveVelocityConstraints(data *solverData) {
	velA := data.velocities[j.indexA]
	velB := data.velocities[j.indexB]
	velC := data.velocities[j.indexC]
	velD := data.velocities[j.indexD]

	cdotA := j.jvAC.Dot(velA.v) + j.jwA*velA.w + j.jvAC.Neg().Dot(velC.v) + j.jwC*velC.w
	cdotB := j.jvBD.Dot(velB.v) + j.jwB*velB.w + j.jvBD.Neg().Dot(velD.v) + j.jwD*velD.w
	cdot := cdotA + j.ratio*cdotB

	impulse := -j.mass * cdot
	j.impulse += impulse

	pA := j.jvAC.Scale(impulse)
	lA := j.jwA * impulse
	pC := j.jvAC.Scale(-impulse)
	lC := j.jwC * impulse
	pB := j.jvBD.Scale(j.ratio * impulse)
	lB := j.jwB * j.ratio * impulse
	pD := j.jvBD.Scale(-j.ratio * impulse)
	lD := j.jwD * j.ratio * impulse

	velA.v = velA.v.Add(pA.Scale(j.invMassA))
	velA.w += j.invIA * lA
	velC.v = velC.v.Add(pC.Scale(j.invMassC))
	velC.w += j.invIC * lC
	velB.v = velB.v.Add(pB.Scale(j.invMassB))
	velB.w += j.invIB * lB
	velD.v = velD.v.Add(pD.Scale(j.invMassD))
	velD.w += j.invID * lD

	data.velocities[j.indexA] = velA
	data.velocities[j.indexB] = velB
	data.velocities[j.indexC] = velC
	data.velocities[j.indexD] = velD
}

// solvePositionConstraints for a gear joint is intentionally a no-op:
// the coupled joints' own position solves keep each half within
// tolerance, and re-deriving the coupling's position Jacobian needs
// the bodies' post-solve poses it doesn't otherwise track.
func (j *gearJoint) solvePositionConstraints(data *solverData) bool { return true }
