// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// MouseJointDef describes a soft point-to-point drag constraint
// typically anchored to a fixed "ground" body on one side (BodyA) and
// the dragged body on the other (BodyB), with Target the world point
// currently under the cursor.
type MouseJointDef struct {
	JointDef
	Target              lin.V2
	MaxForce            float32
	Hertz, DampingRatio float32
}

// mouseJoint drives BodyB's anchor point toward a moving world Target
// with a soft (spring-damper) constraint, clamped to MaxForce. Like the
// friction, motor and gear joints it has no position correction: its
// target is expected to move every step rather than be converged to rest.
type mouseJoint struct {
	jointBase
	localAnchorB        lin.V2
	target              lin.V2
	maxForce            float32
	hertz, dampingRatio float32

	indexB             int
	localCenterB       lin.V2
	invMassB           float32
	invIB              float32
	rB                 lin.V2
	mass               lin.Mat22
	gamma, beta        float32
	impulse            lin.V2
}

// NewMouseJoint builds a mouse joint dragging def.JointDef.BodyB
// toward def.Target.
func NewMouseJoint(def MouseJointDef) Joint {
	return &mouseJoint{
		jointBase: newJointBase(MouseJoint, def.JointDef),
		target:    def.Target,
		maxForce:  def.MaxForce,
		hertz:     def.Hertz, dampingRatio: def.DampingRatio,
	}
}

// SetTarget retargets the drag point; called every step by the caller
// tracking cursor/input position.
func (j *mouseJoint) SetTarget(target lin.V2) { j.target = target }

func (j *mouseJoint) GetAnchorA() lin.V2 { return j.target }
func (j *mouseJoint) GetAnchorB() lin.V2 { return j.bodyB.xf.World(j.localAnchorB) }
func (j *mouseJoint) GetReactionForce(invDt float32) lin.V2 { return j.impulse.Scale(invDt) }
func (j *mouseJoint) GetReactionTorque(invDt float32) float32 { return 0 }

func (j *mouseJoint) initVelocityConstraints(data *solverData) {
	j.indexB = data.indexOf(j.bodyB)
	j.localCenterB = j.bodyB.sweep.LocalCenter
	j.invMassB = j.bodyB.invMass
	j.invIB = j.bodyB.invI

	if j.localAnchorB == (lin.V2{}) {
		j.localAnchorB = j.bodyB.xf.Local(j.target)
	}

	posB := data.positions[j.indexB]
	velB := data.velocities[j.indexB]
	qB := lin.NewRot(posB.a)

	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	k := lin.Mat22{
		Ex: lin.V2{X: j.invMassB + j.invIB*j.rB.Y*j.rB.Y, Y: -j.invIB * j.rB.X * j.rB.Y},
		Ey: lin.V2{X: -j.invIB * j.rB.X * j.rB.Y, Y: j.invMassB + j.invIB*j.rB.X*j.rB.X},
	}

	omega := 2 * pi * j.hertz
	j.gamma = 0
	if data.dt > 0 && j.hertz > 0 {
		j.gamma = 1 / (data.dt * omega * (2*j.dampingRatio + data.dt*omega))
	}
	j.beta = data.dt * omega * j.gamma

	k.Ex.X += j.gamma
	k.Ey.Y += j.gamma
	j.mass = k.Inverse()

	p := j.impulse
	velB.v = velB.v.Add(p.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(p)
	data.velocities[j.indexB] = velB
}

func (j *mouseJoint) solveVelocityConstraints(data *solverData) {
	posB := data.positions[j.indexB]
	velB := data.velocities[j.indexB]

	vpB := velB.v.Add(lin.CrossSV(velB.w, j.rB))
	cdot := vpB.Add(posB.c.Add(j.rB).Sub(j.target).Scale(j.beta)).Add(j.impulse.Scale(j.gamma))

	impulse := j.mass.Mul(cdot.Neg())
	oldImpulse := j.impulse
	j.impulse = j.impulse.Add(impulse)
	maxImpulse := data.dt * j.maxForce
	if j.impulse.Dot(j.impulse) > maxImpulse*maxImpulse {
		j.impulse = j.impulse.Scale(maxImpulse / j.impulse.Len())
	}
	impulse = j.impulse.Sub(oldImpulse)

	velB.v = velB.v.Add(impulse.Scale(j.invMassB))
	velB.w += j.invIB * j.rB.Cross(impulse)
	data.velocities[j.indexB] = velB
}

func (j *mouseJoint) solvePositionConstraints(data *solverData) bool { return true }
