// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// PrismaticJointDef describes a sliding joint: the two bodies move
// along a shared axis and cannot rotate relative to each other,
// optionally driven by a motor and/or clamped between translation
// limits.
type PrismaticJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	LocalAxisA                 lin.V2
	ReferenceAngle             float32
	EnableLimit                bool
	LowerTranslation, UpperTranslation float32
	EnableMotor                bool
	MotorSpeed, MaxMotorForce  float32
}

// prismaticJoint constrains bodyA and bodyB to slide along a shared
// axis with no relative rotation. The perpendicular-to-axis and
// angular degrees of freedom are solved as a 2x2 block (matching
// Box2D's combined perp+angular Jacobian row), the axial motion as an
// independent scalar (motor/limit) constraint.
type prismaticJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	localAxisA                 lin.V2
	localYAxisA                lin.V2
	referenceAngle             float32
	enableLimit                bool
	lower, upper               float32
	enableMotor                bool
	motorSpeed, maxMotorForce  float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32

	axis, perp lin.V2
	s1, s2     float32
	a1, a2     float32
	k          lin.Mat22
	axialMass  float32
	impulse    lin.V2
	motorImpulse float32
	lowerImpulse float32
	upperImpulse float32
}

// NewPrismaticJoint builds a prismatic joint from def.
func NewPrismaticJoint(def PrismaticJointDef) Joint {
	axis := def.LocalAxisA.Unit()
	return &prismaticJoint{
		jointBase:    newJointBase(PrismaticJoint, def.JointDef),
		localAnchorA: def.LocalAnchorA, localAnchorB: def.LocalAnchorB,
		localAxisA: axis, localYAxisA: axis.Perp(),
		referenceAngle: def.ReferenceAngle,
		enableLimit:    def.EnableLimit,
		lower:          def.LowerTranslation, upper: def.UpperTranslation,
		enableMotor: def.EnableMotor, motorSpeed: def.MotorSpeed, maxMotorForce: def.MaxMotorForce,
	}
}

func (j *prismaticJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *prismaticJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *prismaticJoint) GetReactionForce(invDt float32) lin.V2 {
	return j.perp.Scale(j.impulse.X).Add(j.axis.Scale(j.motorImpulse + j.lowerImpulse - j.upperImpulse)).Scale(invDt)
}
func (j *prismaticJoint) GetReactionTorque(invDt float32) float32 { return j.impulse.Y * invDt }

func (j *prismaticJoint) Translation() float32 {
	d := j.bodyB.WorldCenter().Add(j.bodyB.xf.Q.MulVec2(j.localAnchorB.Sub(j.bodyB.sweep.LocalCenter))).
		Sub(j.bodyA.WorldCenter().Add(j.bodyA.xf.Q.MulVec2(j.localAnchorA.Sub(j.bodyA.sweep.LocalCenter))))
	axis := j.bodyA.xf.Q.MulVec2(j.localAxisA)
	return d.Dot(axis)
}

func (j *prismaticJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := posB.c.Add(rB).Sub(posA.c).Sub(rA)

	j.axis = qA.MulVec2(j.localAxisA)
	j.a1 = d.Add(rA).Cross(j.axis)
	j.a2 = rB.Cross(j.axis)
	invMassAxial := j.invMassA + j.invMassB + j.invIA*j.a1*j.a1 + j.invIB*j.a2*j.a2
	j.axialMass = 0
	if invMassAxial > 0 {
		j.axialMass = 1 / invMassAxial
	}

	j.perp = qA.MulVec2(j.localYAxisA)
	j.s1 = d.Add(rA).Cross(j.perp)
	j.s2 = rB.Cross(j.perp)

	k11 := j.invMassA + j.invMassB + j.invIA*j.s1*j.s1 + j.invIB*j.s2*j.s2
	k12 := j.invIA*j.s1 + j.invIB*j.s2
	k22 := j.invIA + j.invIB
	if k22 == 0 {
		k22 = 1
	}
	j.k = lin.Mat22{Ex: lin.V2{X: k11, Y: k12}, Ey: lin.V2{X: k12, Y: k22}}

	if !j.enableMotor {
		j.motorImpulse = 0
	}
	if !j.enableLimit {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
	p := j.perp.Scale(j.impulse.X).Add(j.axis.Scale(axialImpulse))
	la := j.impulse.X*j.s1 + j.impulse.Y + axialImpulse*j.a1
	lb := j.impulse.X*j.s2 + j.impulse.Y + axialImpulse*j.a2

	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * la
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * lb
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *prismaticJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	if j.enableMotor {
		cdot := j.axis.Dot(velB.v.Sub(velA.v)) + j.a2*velB.w - j.a1*velA.w - j.motorSpeed
		impulse := j.axialMass * -cdot
		old := j.motorImpulse
		maxImpulse := data.dt * j.maxMotorForce
		j.motorImpulse = lin.Clamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old

		p := j.axis.Scale(impulse)
		velA.v = velA.v.Sub(p.Scale(j.invMassA))
		velA.w -= j.invIA * impulse * j.a1
		velB.v = velB.v.Add(p.Scale(j.invMassB))
		velB.w += j.invIB * impulse * j.a2
	}

	if j.enableLimit {
		c := j.Translation()
		lowerC := c - j.lower
		bias := lin.Max(lowerC, 0) * data.invDt
		cdot := j.axis.Dot(velB.v.Sub(velA.v)) + j.a2*velB.w - j.a1*velA.w
		impulse := j.axialMass * -(cdot + bias)
		old := j.lowerImpulse
		j.lowerImpulse = lin.Max(old+impulse, 0)
		impulse = j.lowerImpulse - old
		p := j.axis.Scale(impulse)
		velA.v = velA.v.Sub(p.Scale(j.invMassA))
		velA.w -= j.invIA * impulse * j.a1
		velB.v = velB.v.Add(p.Scale(j.invMassB))
		velB.w += j.invIB * impulse * j.a2

		upperC := j.upper - c
		bias = lin.Max(upperC, 0) * data.invDt
		cdot = j.axis.Dot(velA.v.Sub(velB.v)) + j.a1*velA.w - j.a2*velB.w
		impulse = j.axialMass * -(cdot + bias)
		old = j.upperImpulse
		j.upperImpulse = lin.Max(old+impulse, 0)
		impulse = j.upperImpulse - old
		p = j.axis.Scale(impulse)
		velA.v = velA.v.Add(p.Scale(j.invMassA))
		velA.w += j.invIA * impulse * j.a1
		velB.v = velB.v.Sub(p.Scale(j.invMassB))
		velB.w -= j.invIB * impulse * j.a2
	}

	cdot := lin.V2{
		X: j.perp.Dot(velB.v.Sub(velA.v)) + j.s2*velB.w - j.s1*velA.w,
		Y: velB.w - velA.w,
	}
	impulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)

	p := j.perp.Scale(impulse.X)
	la := impulse.X*j.s1 + impulse.Y
	lb := impulse.X*j.s2 + impulse.Y

	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * la
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * lb
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *prismaticJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := posB.c.Add(rB).Sub(posA.c).Sub(rA)

	perp := qA.MulVec2(j.localYAxisA)
	s1 := d.Add(rA).Cross(perp)
	s2 := rB.Cross(perp)

	c1 := lin.V2{X: perp.Dot(d), Y: posB.a - posA.a - j.referenceAngle}

	linearError := lin.Abs(c1.X)
	angularError := lin.Abs(c1.Y)

	k11 := j.invMassA + j.invMassB + j.invIA*s1*s1 + j.invIB*s2*s2
	k12 := j.invIA*s1 + j.invIB*s2
	k22 := j.invIA + j.invIB
	if k22 == 0 {
		k22 = 1
	}
	k := lin.Mat22{Ex: lin.V2{X: k11, Y: k12}, Ey: lin.V2{X: k12, Y: k22}}
	impulse := k.Solve(c1.Neg())

	p := perp.Scale(impulse.X)
	la := impulse.X*s1 + impulse.Y
	lb := impulse.X*s2 + impulse.Y

	posA.c = posA.c.Sub(p.Scale(j.invMassA))
	posA.a -= j.invIA * la
	posB.c = posB.c.Add(p.Scale(j.invMassB))
	posB.a += j.invIB * lb
	data.positions[j.indexA], data.positions[j.indexB] = posA, posB

	return linearError <= linearSlop && angularError <= angularSlop
}
