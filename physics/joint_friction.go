// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// FrictionJointDef describes a joint that damps relative linear and
// angular velocity between two bodies up to MaxForce/MaxTorque, with no
// position constraint of its own. Commonly used to simulate a friction
// plate or to settle bodies resting on a conveyor.
type FrictionJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	MaxForce, MaxTorque        float32
}

// frictionJoint resists relative motion at a shared point without
// constraining position: a linear point constraint and an independent
// angular constraint, both clamped to a force/torque budget rather than
// solved to zero error.
type frictionJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	maxForce, maxTorque        float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	rA, rB                     lin.V2
	linearMass                 lin.Mat22
	angularMass                float32
	linearImpulse              lin.V2
	angularImpulse             float32
}

// NewFrictionJoint builds a friction joint from def.
func NewFrictionJoint(def FrictionJointDef) Joint {
	return &frictionJoint{
		jointBase:    newJointBase(FrictionJoint, def.JointDef),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxForce:     def.MaxForce,
		maxTorque:    def.MaxTorque,
	}
}

func (j *frictionJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *frictionJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *frictionJoint) GetReactionForce(invDt float32) lin.V2 {
	return j.linearImpulse.Scale(invDt)
}
func (j *frictionJoint) GetReactionTorque(invDt float32) float32 { return j.angularImpulse * invDt }

func (j *frictionJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	j.angularMass = 0
	if iSum := j.invIA + j.invIB; iSum > 0 {
		j.angularMass = 1 / iSum
	}

	k := lin.Mat22{
		Ex: lin.V2{X: j.invMassA + j.invMassB + j.invIA*j.rA.Y*j.rA.Y + j.invIB*j.rB.Y*j.rB.Y,
			Y: -j.invIA*j.rA.X*j.rA.Y - j.invIB*j.rB.X*j.rB.Y},
		Ey: lin.V2{X: -j.invIA*j.rA.X*j.rA.Y - j.invIB*j.rB.X*j.rB.Y,
			Y: j.invMassA + j.invMassB + j.invIA*j.rA.X*j.rA.X + j.invIB*j.rB.X*j.rB.X},
	}
	j.linearMass = k.Inverse()

	p := j.linearImpulse
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * (j.rA.Cross(p) + j.angularImpulse)
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * (j.rB.Cross(p) + j.angularImpulse)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *frictionJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	cdotAngular := velB.w - velA.w
	impulse := -j.angularMass * cdotAngular
	old := j.angularImpulse
	maxImpulse := data.dt * j.maxTorque
	j.angularImpulse = lin.Clamp(old+impulse, -maxImpulse, maxImpulse)
	impulse = j.angularImpulse - old
	velA.w -= j.invIA * impulse
	velB.w += j.invIB * impulse

	vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
	vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
	cdot := vpB.Sub(vpA)

	linearImpulse := j.linearMass.Mul(cdot.Neg())
	oldLinear := j.linearImpulse
	j.linearImpulse = j.linearImpulse.Add(linearImpulse)
	maxLinear := data.dt * j.maxForce
	if j.linearImpulse.Dot(j.linearImpulse) > maxLinear*maxLinear {
		j.linearImpulse = j.linearImpulse.Scale(maxLinear / j.linearImpulse.Len())
	}
	linearImpulse = j.linearImpulse.Sub(oldLinear)

	velA.v = velA.v.Sub(linearImpulse.Scale(j.invMassA))
	velA.w -= j.invIA * j.rA.Cross(linearImpulse)
	velB.v = velB.v.Add(linearImpulse.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(linearImpulse)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

// solvePositionConstraints is a no-op: a friction joint only damps
// relative velocity and never corrects position drift.
func (j *frictionJoint) solvePositionConstraints(data *solverData) bool { return true }
