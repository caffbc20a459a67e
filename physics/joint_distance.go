// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// DistanceJointDef describes a rod holding two anchor points a Length
// apart. With Hertz>0 the rod is a damped spring pulling toward Length
// instead of a rigid equality constraint. MinLength/MaxLength bound the
// anchors' separation independently of the spring; MaxLength defaults
// to Length when left zero. Length is held rigidly only when MinLength
// >= MaxLength (for example both equal to Length). With MinLength at its
// zero default, MaxLength at Length and Hertz 0 the joint acts as a
// rope: the upper limit stops stretching past Length, but nothing
// resists the anchors moving closer together.
type DistanceJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	Length                     float32
	MinLength, MaxLength       float32
	Hertz, DampingRatio        float32
}

// distanceJoint constrains the distance between two anchor points.
// Length is enforced as a damped spring when hertz>0, and minLength/
// maxLength are enforced as independent one-sided limits with their own
// accumulated impulses (lowerImpulse/upperImpulse, clamped >= 0).
type distanceJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	length                     float32
	minLength, maxLength       float32
	hertz, dampingRatio        float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	rA, rB                     lin.V2
	u                          lin.V2
	currentLength              float32
	mass                       float32
	impulse                    float32
	lowerImpulse               float32
	upperImpulse               float32
	bias                       float32
	gamma                      float32
}

// NewDistanceJoint builds a distance joint from def.
func NewDistanceJoint(def DistanceJointDef) Joint {
	j := &distanceJoint{
		jointBase:    newJointBase(DistanceJoint, def.JointDef),
		localAnchorA: def.LocalAnchorA, localAnchorB: def.LocalAnchorB,
		length: def.Length, minLength: def.MinLength, maxLength: def.MaxLength,
		hertz: def.Hertz, dampingRatio: def.DampingRatio,
	}
	if j.maxLength == 0 {
		j.maxLength = def.Length
	}
	return j
}

func (j *distanceJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *distanceJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }

func (j *distanceJoint) GetReactionForce(invDt float32) lin.V2 {
	return j.u.Scale((j.impulse + j.lowerImpulse - j.upperImpulse) * invDt)
}
func (j *distanceJoint) GetReactionTorque(invDt float32) float32 { return 0 }

// linearStiffness converts a spring's hertz/dampingRatio into an
// n/m stiffness and n*s/m damping, scaled by the reduced mass of the
// two bodies the spring couples (mass*omega^2, 2*mass*dampingRatio*omega).
func linearStiffness(hertz, dampingRatio, massA, massB float32) (stiffness, damping float32) {
	var mass float32
	switch {
	case massA > 0 && massB > 0:
		mass = massA * massB / (massA + massB)
	case massA > 0:
		mass = massA
	default:
		mass = massB
	}
	omega := 2 * float32(pi) * hertz
	return mass * omega * omega, 2 * mass * dampingRatio * omega
}

func (j *distanceJoint) initVelocityConstraints(data *solverData) {
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

	j.currentLength = j.u.Len()
	if j.currentLength > lin.Epsilon {
		j.u = j.u.Scale(1 / j.currentLength)
	} else {
		j.u = lin.V2{}
	}

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB

	if j.minLength < j.maxLength && j.hertz > 0 {
		c := j.currentLength - j.length
		h := data.dt
		stiffness, damping := linearStiffness(j.hertz, j.dampingRatio, j.bodyA.Mass(), j.bodyB.Mass())

		j.gamma = h * (damping + h*stiffness)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = c * h * stiffness * j.gamma
		invMass += j.gamma
	} else {
		j.gamma = 0
		j.bias = 0
	}
	j.mass = 0
	if invMass > 0 {
		j.mass = 1 / invMass
	}

	p := j.u.Scale(j.impulse + j.lowerImpulse - j.upperImpulse)
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * j.rA.Cross(p)
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(p)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *distanceJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	if j.minLength < j.maxLength {
		if j.hertz > 0 {
			vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
			vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
			cdot := j.u.Dot(vpB.Sub(vpA))

			impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)
			j.impulse += impulse

			p := j.u.Scale(impulse)
			velA.v = velA.v.Sub(p.Scale(j.invMassA))
			velA.w -= j.invIA * j.rA.Cross(p)
			velB.v = velB.v.Add(p.Scale(j.invMassB))
			velB.w += j.invIB * j.rB.Cross(p)
		}

		// Lower limit: prevents the anchors from closing past minLength.
		{
			c := j.currentLength - j.minLength
			bias := float32(0)
			if c > 0 {
				bias = c * data.invDt
			}
			vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
			vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
			cdot := j.u.Dot(vpB.Sub(vpA))

			impulse := -j.mass * (cdot + bias)
			newImpulse := lin.Max(0, j.lowerImpulse+impulse)
			impulse = newImpulse - j.lowerImpulse
			j.lowerImpulse = newImpulse

			p := j.u.Scale(impulse)
			velA.v = velA.v.Sub(p.Scale(j.invMassA))
			velA.w -= j.invIA * j.rA.Cross(p)
			velB.v = velB.v.Add(p.Scale(j.invMassB))
			velB.w += j.invIB * j.rB.Cross(p)
		}

		// Upper limit: prevents the anchors from stretching past maxLength.
		{
			c := j.maxLength - j.currentLength
			bias := float32(0)
			if c > 0 {
				bias = c * data.invDt
			}
			vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
			vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
			cdot := j.u.Dot(vpA.Sub(vpB))

			impulse := -j.mass * (cdot + bias)
			newImpulse := lin.Max(0, j.upperImpulse+impulse)
			impulse = newImpulse - j.upperImpulse
			j.upperImpulse = newImpulse

			p := j.u.Scale(-impulse)
			velA.v = velA.v.Sub(p.Scale(j.invMassA))
			velA.w -= j.invIA * j.rA.Cross(p)
			velB.v = velB.v.Add(p.Scale(j.invMassB))
			velB.w += j.invIB * j.rB.Cross(p)
		}
	} else {
		vpA := velA.v.Add(lin.CrossSV(velA.w, j.rA))
		vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
		cdot := j.u.Dot(vpB.Sub(vpA))

		impulse := -j.mass * cdot
		j.impulse += impulse

		p := j.u.Scale(impulse)
		velA.v = velA.v.Sub(p.Scale(j.invMassA))
		velA.w -= j.invIA * j.rA.Cross(p)
		velB.v = velB.v.Add(p.Scale(j.invMassB))
		velB.w += j.invIB * j.rB.Cross(p)
	}

	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *distanceJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := posB.c.Add(rB).Sub(posA.c).Sub(rA)

	length := d.Len()
	u := d
	if length > lin.Epsilon {
		u = u.Scale(1 / length)
	}

	var c float32
	switch {
	case j.minLength >= j.maxLength:
		c = length - j.length
	case length < j.minLength:
		c = length - j.minLength
	case j.maxLength < length:
		c = length - j.maxLength
	default:
		return true
	}
	c = lin.Clamp(c, -maxLinearCorrection, maxLinearCorrection)

	crA := rA.Cross(u)
	crB := rB.Cross(u)
	invMass := j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB
	impulse := float32(0)
	if invMass > 0 {
		impulse = -c / invMass
	}

	p := u.Scale(impulse)
	posA.c = posA.c.Sub(p.Scale(j.invMassA))
	posA.a -= j.invIA * rA.Cross(p)
	posB.c = posB.c.Add(p.Scale(j.invMassB))
	posB.a += j.invIB * rB.Cross(p)
	data.positions[j.indexA], data.positions[j.indexB] = posA, posB

	return lin.Abs(c) < linearSlop
}
