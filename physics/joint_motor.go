// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// MotorJointDef describes a joint that drives bodyB's center toward a
// target offset (LinearOffset, rotated by bodyA's frame) and relative
// angle (AngularOffset) from bodyA, bounded by MaxForce/MaxTorque.
// Unlike the other point joints it has no anchor points: it operates
// directly between the two bodies' centers of mass.
type MotorJointDef struct {
	JointDef
	LinearOffset      lin.V2
	AngularOffset     float32
	MaxForce          float32
	MaxTorque         float32
	CorrectionFactor  float32
}

// motorJoint drives the relative pose of two bodies toward a target
// offset using a velocity-level bias term (CorrectionFactor) rather
// than a separate position-solver pass, so it has no position
// constraint.
type motorJoint struct {
	jointBase
	linearOffset     lin.V2
	angularOffset    float32
	maxForce         float32
	maxTorque        float32
	correctionFactor float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	linearError                lin.V2
	angularError                float32
	axialMass                   float32
	linearMass                  lin.Mat22
	linearImpulse                lin.V2
	angularImpulse               float32
}

// NewMotorJoint builds a motor joint from def.
func NewMotorJoint(def MotorJointDef) Joint {
	cf := def.CorrectionFactor
	if cf == 0 {
		cf = 0.3
	}
	return &motorJoint{
		jointBase:        newJointBase(MotorJoint, def.JointDef),
		linearOffset:     def.LinearOffset,
		angularOffset:    def.AngularOffset,
		maxForce:         def.MaxForce,
		maxTorque:        def.MaxTorque,
		correctionFactor: cf,
	}
}

func (j *motorJoint) GetAnchorA() lin.V2 { return j.bodyA.WorldCenter() }
func (j *motorJoint) GetAnchorB() lin.V2 { return j.bodyB.WorldCenter() }
func (j *motorJoint) GetReactionForce(invDt float32) lin.V2 {
	return j.linearImpulse.Scale(invDt)
}
func (j *motorJoint) GetReactionTorque(invDt float32) float32 { return j.angularImpulse * invDt }

func (j *motorJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA := lin.NewRot(posA.a)

	j.angularError = posB.a - posA.a - j.angularOffset
	j.linearError = posB.c.Sub(posA.c).Sub(qA.MulVec2(j.linearOffset))

	iSum := j.invIA + j.invIB
	j.axialMass = 0
	if iSum > 0 {
		j.axialMass = 1 / iSum
	}

	k := lin.Mat22{
		Ex: lin.V2{X: j.invMassA + j.invMassB, Y: 0},
		Ey: lin.V2{X: 0, Y: j.invMassA + j.invMassB},
	}
	j.linearMass = k.Inverse()

	p := j.linearImpulse
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * j.angularImpulse
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * j.angularImpulse
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *motorJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	cdotAngular := velB.w - velA.w + j.correctionFactor*data.invDt*j.angularError
	impulse := -j.axialMass * cdotAngular
	old := j.angularImpulse
	maxImpulse := data.dt * j.maxTorque
	j.angularImpulse = lin.Clamp(old+impulse, -maxImpulse, maxImpulse)
	impulse = j.angularImpulse - old
	velA.w -= j.invIA * impulse
	velB.w += j.invIB * impulse

	cdot := velB.v.Sub(velA.v).Add(j.linearError.Scale(j.correctionFactor * data.invDt))
	linearImpulse := j.linearMass.Mul(cdot.Neg())
	oldLinear := j.linearImpulse
	j.linearImpulse = j.linearImpulse.Add(linearImpulse)
	maxLinear := data.dt * j.maxForce
	if j.linearImpulse.Dot(j.linearImpulse) > maxLinear*maxLinear {
		j.linearImpulse = j.linearImpulse.Scale(maxLinear / j.linearImpulse.Len())
	}
	linearImpulse = j.linearImpulse.Sub(oldLinear)

	velA.v = velA.v.Sub(linearImpulse.Scale(j.invMassA))
	velB.v = velB.v.Add(linearImpulse.Scale(j.invMassB))
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

// solvePositionConstraints is a no-op: drift correction is folded into
// the velocity-level bias term via CorrectionFactor.
func (j *motorJoint) solvePositionConstraints(data *solverData) bool { return true }
