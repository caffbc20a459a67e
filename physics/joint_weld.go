// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// WeldJointDef describes a rigid joint that locks the relative
// position and angle of the two bodies together. With Hertz>0 the
// angular row is a damped spring pulling toward ReferenceAngle instead
// of a rigid equality constraint; the linear (point-to-point) row is
// always rigid.
type WeldJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB lin.V2
	ReferenceAngle             float32
	Hertz, DampingRatio        float32
}

// weldJoint locks the relative pose of the two bodies with three rows
// (2 linear + 1 angular), solved one after the other rather than as a
// single 3x3 block: the angular row as a scalar, then the two linear
// rows as a 2x2 point block like the revolute joint's. The
// angular row becomes a damped spring instead of a rigid equality
// constraint when hertz>0.
type weldJoint struct {
	jointBase
	localAnchorA, localAnchorB lin.V2
	referenceAngle             float32
	hertz, dampingRatio        float32

	indexA, indexB             int
	localCenterA, localCenterB lin.V2
	invMassA, invMassB         float32
	invIA, invIB               float32
	rA, rB                     lin.V2
	axialMass                  float32
	impulse                    lin.V2
	angularImpulse             float32
	bias                       float32
	gamma                      float32
}

// NewWeldJoint builds a weld joint from def.
func NewWeldJoint(def WeldJointDef) Joint {
	return &weldJoint{
		jointBase:      newJointBase(WeldJoint, def.JointDef),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		hertz:          def.Hertz,
		dampingRatio:   def.DampingRatio,
	}
}

// angularStiffness converts a spring's hertz/dampingRatio into an
// n*m/rad stiffness and n*m*s/rad damping, scaled by the reduced
// rotational inertia of the two bodies the spring couples.
func angularStiffness(hertz, dampingRatio, iA, iB float32) (stiffness, damping float32) {
	var i float32
	switch {
	case iA > 0 && iB > 0:
		i = iA * iB / (iA + iB)
	case iA > 0:
		i = iA
	default:
		i = iB
	}
	omega := 2 * float32(pi) * hertz
	return i * omega * omega, 2 * i * dampingRatio * omega
}

func (j *weldJoint) GetAnchorA() lin.V2 { return j.bodyA.xf.World(j.localAnchorA) }
func (j *weldJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *weldJoint) GetReactionForce(invDt float32) lin.V2 { return j.impulse.Scale(invDt) }
func (j *weldJoint) GetReactionTorque(invDt float32) float32 { return j.angularImpulse * invDt }

func (j *weldJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexOf(j.bodyA), data.indexOf(j.bodyB)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	iSum := j.invIA + j.invIB
	if j.hertz > 0 && iSum > 0 {
		c := posB.a - posA.a - j.referenceAngle
		h := data.dt
		stiffness, damping := angularStiffness(j.hertz, j.dampingRatio, j.bodyA.Inertia(), j.bodyB.Inertia())

		j.gamma = h * (damping + h*stiffness)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = c * h * stiffness * j.gamma

		j.axialMass = 0
		if invMass := iSum + j.gamma; invMass > 0 {
			j.axialMass = 1 / invMass
		}
	} else {
		j.gamma = 0
		j.bias = 0
		j.axialMass = 0
		if iSum > 0 {
			j.axialMass = 1 / iSum
		}
	}

	p := j.impulse
	velA.v = velA.v.Sub(p.Scale(j.invMassA))
	velA.w -= j.invIA * (j.rA.Cross(p) + j.angularImpulse)
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * (j.rB.Cross(p) + j.angularImpulse)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *weldJoint) solveVelocityConstraints(data *solverData) {
	velA, velB := data.velocities[j.indexA], data.velocities[j.indexB]

	cdotAngular := velB.w - velA.w
	impulseAngular := -j.axialMass * (cdotAngular + j.bias + j.gamma*j.angularImpulse)
	j.angularImpulse += impulseAngular
	velA.w -= j.invIA * impulseAngular
	velB.w += j.invIB * impulseAngular

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
	j.impulse = j.impulse.Add(impulse)

	velA.v = velA.v.Sub(impulse.Scale(j.invMassA))
	velA.w -= j.invIA * j.rA.Cross(impulse)
	velB.v = velB.v.Add(impulse.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(impulse)
	data.velocities[j.indexA], data.velocities[j.indexB] = velA, velB
}

func (j *weldJoint) solvePositionConstraints(data *solverData) bool {
	posA, posB := data.positions[j.indexA], data.positions[j.indexB]
	qA, qB := lin.NewRot(posA.a), lin.NewRot(posB.a)

	// A soft angular row has no position correction: drift is left to
	// the spring, matching the linear row in a soft distance joint.
	angularError := float32(0)
	if j.hertz == 0 && j.axialMass > 0 {
		c := posB.a - posA.a - j.referenceAngle
		impulse := -j.axialMass * c
		posA.a -= j.invIA * impulse
		posB.a += j.invIB * impulse
		angularError = lin.Abs(c)
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
