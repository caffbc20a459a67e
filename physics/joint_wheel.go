// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// WheelJointDef describes a vehicle-wheel suspension: bodyB may slide
// along a suspension axis fixed in bodyA's frame (softened by a
// Stiffness/Damping spring, optionally clamped between translation
// limits) and spin freely about the anchor, optionally driven by a
// motor. Unlike the prismatic joint it does not lock relative angle.
type WheelJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	LocalAxisA                 lin.V2
	EnableLimit                bool
	LowerTranslation, UpperTranslation float32
	EnableMotor                bool
	MotorSpeed, MaxMotorTorque float32
	Stiffness, Damping         float32
}

// wheelJoint constrains bodyB to slide along a fixed axis relative to
// bodyA (rigid perpendicular constraint, soft spring along the axis)
// while leaving relative rotation free for a spin motor.
type wheelJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	localAxisA, localYAxisA    lin.V2
	enableLimit                bool
	lower, upper               float32
	enableMotor                bool
	motorSpeed, maxMotorTorque float32
	stiffness, damping         float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32

	ax, ay     lin.V2
	sAx, sBx   float32
	sAy, sBy   float32
	springMass float32
	bias       float32
	gamma      float32
	springImpulse float32

	perpMass     float32
	perpImpulse  float32

	axialMass    float32
	motorImpulse float32
	lowerImpulse float32
	upperImpulse float32
}

// NewWheelJoint builds a wheel joint from def.
func NewWheelJoint(def WheelJointDef) Joint {
	axis := def.LocalAxisA.Unit()
	return &wheelJoint{
		jointBase:    newJointBase(WheelJoint, def.JointDef),
		localAnchorA: def.LocalAnchorA, localAnchorB: def.LocalAnchorB,
		localAxisA: axis, localYAxisA: axis.Perp(),
		enableLimit: def.EnableLimit,
		lower:       def.LowerTranslation, upper: def.UpperTranslation,
		enableMotor: def.EnableMotor, motorSpeed: def.MotorSpeed, maxMotorTorque: def.MaxMotorTorque,
		stiffness: def.Stiffness, damping: def.Damping,
	}
}

func (j *wheelJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *wheelJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *wheelJoint) GetReactionForce(invDt float32) lin.V2 {
	return j.ay.Scale(j.perpImpulse).Add(j.ax.Scale(j.springImpulse)).Scale(invDt)
}
func (j *wheelJoint) GetReactionTorque(invDt float32) float32 {
	return (j.motorImpulse + j.lowerImpulse - j.upperImpulse) * invDt
}

// Translation returns the current axial displacement of bodyB relative
// to bodyA along the suspension axis.
func (j *wheelJoint) Translation() float32 {
	d := j.bodyB.WorldCenter().Add(j.bodyB.xf.Q.MulVec2(j.localAnchorB.Sub(j.bodyB.sweep.LocalCenter))).
		Sub(j.bodyA.WorldCenter().Add(j.bodyA.xf.Q.MulVec2(j.localAnchorA.Sub(j.bodyA.sweep.LocalCenter))))
	axis := j.bodyA.xf.Q.MulVec2(j.localAxisA)
	return d.Dot(axis)
}

func (j *wheelJoint) initVelocityConstraints(data *solverData) {
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

	j.ay = qA.MulVec2(j.localYAxisA)
	j.sAy = d.Add(rA).Cross(j.ay)
	j.sBy = rB.Cross(j.ay)
	perpInvMass := j.invMassA + j.invMassB + j.invIA*j.sAy*j.sAy + j.invIB*j.sBy*j.sBy
	j.perpMass = 0
	if perpInvMass > 0 {
		j.perpMass = 1 / perpInvMass
	}

	j.ax = qA.MulVec2(j.localAxisA)
	j.sAx = d.Add(rA).Cross(j.ax)
	j.sBx = rB.Cross(j.ax)
	axialInvMass := j.invMassA + j.invMassB + j.invIA*j.sAx*j.sAx + j.invIB*j.sBx*j.sBx

	j.springMass = 0
	j.gamma = 0
	j.bias = 0
	if j.stiffness > 0 && axialInvMass > 0 {
		c := d.Dot(j.ax)
		h := data.dt
		if denom := h * (j.damping + h*j.stiffness); denom != 0 {
			j.gamma = 1 / denom
		}
		j.bias = c * h * j.stiffness * j.gamma
		if m := axialInvMass + j.gamma; m > 0 {
			j.springMass = 1 / m
		}
	} else {
		j.springImpulse = 0
	}

	iSum := j.invIA + j.invIB
	j.axialMass = 0
	if iSum > 0 {
		j.axialMass = 1 / iSum
	}
	if !j.enableMotor {
		j.motorImpulse = 0
	}
	if !j.enableLimit {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	axialImpulse := j.springImpulse + j.motorImpulse + j.lowerImpulse - j.upperImpulse
	p := j.ay.Scale(j.perpImpulse).Add(j.ax.Scale(axialImpulse))
	la := j.perpImpulse*j.sAy + axialImpulse*j.sAx
	lb := j.perpImpulse*j.sBy + axialImpulse*j.sBx

	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * la
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * lb
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *wheelJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	if j.springMass > 0 {
		cdot := j.ax.Dot(velB.v.Sub(velA.v)) + j.sBx*velB.w - j.sAx*velA.w
		impulse := -j.springMass * (cdot + j.bias + j.gamma*j.springImpulse)
		j.springImpulse += impulse
		p := j.ax.Scale(impulse)
		velA.v = velA.v.Sub(p.Scale(j.invMassA))
		velA.w -= j.invIA * impulse * j.sAx
		velB.v = velB.v.Add(p.Scale(j.invMassB))
		velB.w += j.invIB * impulse * j.sBx
	}

	if j.enableMotor {
		cdot := velB.w - velA.w - j.motorSpeed
		impulse := j.axialMass * -cdot
		old := j.motorImpulse
		maxImpulse := data.dt * j.maxMotorTorque
		j.motorImpulse = lin.Clamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		velA.w -= j.invIA * impulse
		velB.w += j.invIB * impulse
	}

	if j.enableLimit {
		c := j.Translation()
		lowerC := c - j.lower
		bias := lin.Max(lowerC, 0) * data.invDt
		cdot := j.ax.Dot(velB.v.Sub(velA.v)) + j.sBx*velB.w - j.sAx*velA.w
		impulse := j.axialMass * -(cdot + bias)
		old := j.lowerImpulse
		j.lowerImpulse = lin.Max(old+impulse, 0)
		impulse = j.lowerImpulse - old
		p := j.ax.Scale(impulse)
		velA.v = velA.v.Sub(p.Scale(j.invMassA))
		velA.w -= j.invIA * impulse * j.sAx
		velB.v = velB.v.Add(p.Scale(j.invMassB))
		velB.w += j.invIB * impulse * j.sBx

		upperC := j.upper - c
		bias = lin.Max(upperC, 0) * data.invDt
		cdot = j.ax.Dot(velA.v.Sub(velB.v)) + j.sAx*velA.w - j.sBx*velB.w
		impulse = j.axialMass * -(cdot + bias)
		old = j.upperImpulse
		j.upperImpulse = lin.Max(old+impulse, 0)
		impulse = j.upperImpulse - old
		p = j.ax.Scale(impulse)
		velA.v = velA.v.Add(p.Scale(j.invMassA))
		velA.w += j.invIA * impulse * j.sAx
		velB.v = velB.v.Sub(p.Scale(j.invMassB))
		velB.w -= j.invIB * impulse * j.sBx
	}

	cdot := j.ay.Dot(velB.v.Sub(velA.v)) + j.sBy*velB.w - j.sAy*velA.w
	impulse := -j.perpMass * cdot
	j.perpImpulse += impulse
	p := j.ay.Scale(impulse)
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * impulse * j.sAy
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * impulse * j.sBy
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *wheelJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := posB.c.Add(rB).Sub(posA.c).Sub(rA)

	ay := qA.MulVec2(j.localYAxisA)
	sAy := d.Add(rA).Cross(ay)
	sBy := rB.Cross(ay)

	c := d.Dot(ay)
	k := j.invMassA + j.invMassB + j.invIA*sAy*sAy + j.invIB*sBy*sBy
	impulse := float32(0)
	if k != 0 {
		impulse = -c / k
	}

	p := ay.Scale(impulse)
	la := impulse * sAy
	lb := impulse * sBy

	posA.c = posA.c.Sub(p.Scale(j.invMassA))
	posA.a -= j.invIA * la
	posB.c = posB.c.Add(p.Scale(j.invMassB))
	posB.a += j.invIB * lb
	data.positions[j.indexA], data.positions[j.indexB] = posA, posB

	return lin.Abs(c) <= linearSlop
}
