// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// RevoluteJointDef describes a pin joint: the two bodies share a point
// and may rotate freely about it, optionally driven by a motor and/or
// clamped between angle limits.
type RevoluteJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	ReferenceAngle             float32
	EnableLimit                bool
	LowerAngle, UpperAngle     float32
	EnableMotor                bool
	MotorSpeed, MaxMotorTorque float32
}

// revoluteJoint pins bodyA and bodyB together at a shared point,
// constraining their relative linear motion to zero and optionally
// their relative angle (limit) or driving it (motor). The point
// constraint is solved as a 2x2 block (matching the distance joint's
// scalar constraint generalized to two degrees of freedom), the motor
// and limit as independent scalar constraints on angular velocity.
type revoluteJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	referenceAngle             float32
	enableLimit                bool
	lowerAngle, upperAngle     float32
	enableMotor                bool
	motorSpeed, maxMotorTorque float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	rA, rB                     lin.V2
	k                          lin.Mat22
	impulse                    lin.V2
	motorImpulse               float32
	lowerImpulse               float32
	upperImpulse               float32
	axialMass                  float32
}

// NewRevoluteJoint builds a revolute joint from def.
func NewRevoluteJoint(def RevoluteJointDef) Joint {
	return &revoluteJoint{
		jointBase:      newJointBase(RevoluteJoint, def.JointDef),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		enableLimit:    def.EnableLimit,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		enableMotor:    def.EnableMotor,
		motorSpeed:     def.MotorSpeed,
		maxMotorTorque: def.MaxMotorTorque,
	}
}

func (j *revoluteJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *revoluteJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }

func (j *revoluteJoint) GetReactionForce(invDt float32) lin.V2 { return j.impulse.Scale(invDt) }
func (j *revoluteJoint) GetReactionTorque(invDt float32) float32 {
	return (j.motorImpulse + j.lowerImpulse - j.upperImpulse) * invDt
}

// JointAngle returns the current relative angle between the two
// bodies, accounting for ReferenceAngle.
func (j *revoluteJoint) JointAngle() float32 {
	return j.bodyB.sweep.A - j.bodyA.sweep.A - j.referenceAngle
}

func (j *revoluteJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	j.axialMass = 0
	if iSum := j.invIA + j.invIB; iSum > 0 {
		j.axialMass = 1 / iSum
	}
	if !j.enableMotor {
		j.motorImpulse = 0
	}
	if !j.enableLimit {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	p := lin.V2{X: j.impulse.X, Y: j.impulse.Y}
	axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * (j.rA.Cross(p) + axialImpulse)
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * (j.rB.Cross(p) + axialImpulse)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *revoluteJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	if j.enableMotor {
		cdot := velB.w - velA.w - j.motorSpeed
		impulse := -j.axialMass * cdot
		old := j.motorImpulse
		maxImpulse := maxMotorImpulse(data.dt, j.maxMotorTorque)
		j.motorImpulse = lin.Clamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		velA.w -= j.invIA * impulse
		velB.w += j.invIB * impulse
	}

	if j.enableLimit {
		angle := j.JointAngle()

		cdot := velB.w - velA.w
		c := angle - j.lowerAngle
		bias := lin.Max(c, 0) * data.invDt
		impulse := -j.axialMass * (cdot + bias)
		old := j.lowerImpulse
		j.lowerImpulse = lin.Max(old+impulse, 0)
		impulse = j.lowerImpulse - old
		velA.w -= j.invIA * impulse
		velB.w += j.invIB * impulse

		cdot = velA.w - velB.w
		c = j.upperAngle - angle
		bias = lin.Max(c, 0) * data.invDt
		impulse = -j.axialMass * (cdot + bias)
		old = j.upperImpulse
		j.upperImpulse = lin.Max(old+impulse, 0)
		impulse = j.upperImpulse - old
		velA.w += j.invIA * impulse
		velB.w -= j.invIB * impulse
	}

	vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
	vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
	cdot := vpB.Sub(vpA)

	k := lin.Mat22{
		Ex: lin.V2{X: j.invMassA + j.invMassB + j.invIA*j.rA.Y*j.rA.Y + j.invIB*j.rB.Y*j.rB.Y,
			Y: -j.invIA*j.rA.X*j.rA.Y - j.invIB*j.rB.X*j.rB.Y},
		Ey: lin.V2{X: -j.invIA*j.rA.X*j.rA.Y - j.invIB*j.rB.X*j.rB.Y,
			Y: j.invMassA + j.invMassB + j.invIA*j.rA.X*j.rA.X + j.invIB*j.rB.X*j.rB.X},
	}
	impulse := k.Solve(cdot.Neg())
	j.impulse.X += impulse.X
	j.impulse.Y += impulse.Y

	velA.v = velA.v.Sub(impulse.Scale(j.invMassA))
	velA.w -= j.invIA * j.rA.Cross(impulse)
	velB.v = velB.v.Add(impulse.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(impulse)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *revoluteJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	angularError := float32(0)
	if j.enableLimit {
		angle := posB.a - posA.a - j.referenceAngle
		c := float32(0)
		if lin.Abs(j.upperAngle-j.lowerAngle) < 2*angularSlop {
			c = lin.Clamp(angle-j.lowerAngle, -maxAngularCorrection, maxAngularCorrection)
		} else if angle <= j.lowerAngle {
			c = lin.Clamp(angle-j.lowerAngle+angularSlop, -maxAngularCorrection, 0)
		} else if angle >= j.upperAngle {
			c = lin.Clamp(angle-j.upperAngle-angularSlop, 0, maxAngularCorrection)
		}
		if c != 0 {
			impulse := -j.axialMass * c
			posA.a -= j.invIA * impulse
			posB.a += j.invIB * impulse
			angularError = lin.Abs(c)
		}
	}

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	c := posB.c.Add(rB).Sub(posA.c).Sub(rA)
	positionError := c.Len()

	k := lin.Mat22{
		Ex: lin.V2{X: j.invMassA + j.invMassB + j.invIA*rA.Y*rA.Y + j.invIB*rB.Y*rB.Y,
			Y: -j.invIA*rA.X*rA.Y - j.invIB*rB.X*rB.Y},
		Ey: lin.V2{X: -j.invIA*rA.X*rA.Y - j.invIB*rB.X*rB.Y,
			Y: j.invMassA + j.invMassB + j.invIA*rA.X*rA.X + j.invIB*rB.X*rB.X},
	}
	impulse := k.Solve(c.Neg())

	posA.c = posA.c.Sub(impulse.Scale(j.invMassA))
	posA.a -= j.invIA * rA.Cross(impulse)
	posB.c = posB.c.Add(impulse.Scale(j.invMassB))
	posB.a += j.invIB * rB.Cross(impulse)
	data.positions[j.indexA], data.positions[j.indexB] = posA, posB

	return positionError <= linearSlop && angularError <= angularSlop
}

func maxMotorImpulse(dt, maxTorque float32) float32 { return dt * maxTorque }
