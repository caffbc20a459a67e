// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

// velocityConstraintPoint holds the per-manifold-point effective mass
// and bias terms InitVelocityConstraints precomputes once per step.
type velocityConstraintPoint struct {
	rA, rB         lin.V2
	normalImpulse  float32
	tangentImpulse float32
	normalMass     float32
	tangentMass    float32
	velocityBias   float32
}

// velocityConstraint is the per-contact state the velocity solver
// iterates over. normalMass/K back the two-point block solver.
type velocityConstraint struct {
	contact            *Contact
	indexA, indexB     int
	invMassA, invMassB float32
	invIA, invIB       float32
	friction           float32
	restitution        float32
	threshold          float32
	tangentSpeed       float32
	normal             lin.V2
	K                  lin.Mat22
	normalMass         lin.Mat22
	points             []velocityConstraintPoint
}

// positionConstraint is the per-contact state SolvePositionConstraints
// iterates over; it recomputes the manifold geometry fresh each
// position iteration from the current (not yet synchronized) poses.
type positionConstraint struct {
	indexA, indexB             int
	invMassA, invMassB         float32
	localCenterA, localCenterB lin.V2
	invIA, invIB               float32
	manifoldType               shape.ManifoldType
	radiusA, radiusB           float32
	localNormal                lin.V2
	localPoint                 lin.V2
	localPoints                [maxManifoldPoints]lin.V2
	pointCount                 int
}

// ContactSolver runs the sequential-impulse velocity and position
// passes over one island's contacts. toi selects the time-of-impact
// mode: no warm-starting (the discrete solve's stored impulses would
// overshoot a TOI sub-step) and a stiffer, more exact position pass
// (toiBaumgarte instead of baumgarte, converging to -1.5*linearSlop
// instead of -3*linearSlop).
type ContactSolver struct {
	data         *solverData
	velocity     []velocityConstraint
	position     []positionConstraint
	blockSolve   bool
	toi          bool
	toiBaumgarte float32
}

// NewContactSolver builds per-contact constraint state for contacts,
// to be run against the given island solverData.
func NewContactSolver(data *solverData, contacts []*Contact, blockSolve bool) *ContactSolver {
	cs := &ContactSolver{data: data, blockSolve: blockSolve}
	cs.velocity = make([]velocityConstraint, len(contacts))
	cs.position = make([]positionConstraint, len(contacts))
	for i, c := range contacts {
		bodyA, bodyB := c.FixtureA.Body, c.FixtureB.Body
		iA, iB := data.indexOf(bodyA), data.indexOf(bodyB)
		m := c.manifold

		vc := &cs.velocity[i]
		vc.contact = c
		vc.indexA, vc.indexB = iA, iB
		vc.invMassA, vc.invMassB = bodyA.invMass, bodyB.invMass
		vc.invIA, vc.invIB = bodyA.invI, bodyB.invI
		vc.friction = c.friction
		vc.restitution = c.restitution
		vc.threshold = c.restitutionThreshold
		vc.tangentSpeed = c.tangentSpeed
		vc.points = make([]velocityConstraintPoint, len(m.Points))

		pc := &cs.position[i]
		pc.indexA, pc.indexB = iA, iB
		pc.invMassA, pc.invMassB = bodyA.invMass, bodyB.invMass
		pc.invIA, pc.invIB = bodyA.invI, bodyB.invI
		pc.localCenterA, pc.localCenterB = bodyA.sweep.LocalCenter, bodyB.sweep.LocalCenter
		pc.radiusA, pc.radiusB = c.FixtureA.Shape.GetRadius(), c.FixtureB.Shape.GetRadius()
		pc.manifoldType = m.Type
		pc.localNormal = m.LocalNormal
		pc.localPoint = m.LocalPoint
		pc.pointCount = len(m.Points)
		for j, mp := range m.Points {
			pc.localPoints[j] = mp.LocalPoint
		}
	}
	return cs
}

// NewTOIContactSolver is NewContactSolver for a time-of-impact sub-step:
// the resulting solver skips warm-starting and solves position
// constraints against toiBaumgarte and the TOI tolerance instead of
// the discrete solve's baumgarte/tolerance.
func NewTOIContactSolver(data *solverData, contacts []*Contact, blockSolve bool, toiBaumgarte float32) *ContactSolver {
	cs := NewContactSolver(data, contacts, blockSolve)
	cs.toi = true
	cs.toiBaumgarte = toiBaumgarte
	return cs
}

// InitVelocityConstraints computes effective masses, tangent/normal
// directions and restitution bias for every contact point, then warm
// starts by applying the impulses carried over from the prior step
// (skipped in TOI mode: the discrete solve's stored impulses are sized
// for a full dt and would overshoot a TOI sub-step).
func (cs *ContactSolver) InitVelocityConstraints() {
	d := cs.data
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		pc := &cs.position[i]
		m := vc.contact.manifold

		posA := d.positions[vc.indexA]
		posB := d.positions[vc.indexB]
		rotA, rotB := lin.NewRot(posA.a), lin.NewRot(posB.a)
		xfA := lin.Transform{P: posA.c.Sub(rotA.MulVec2(pc.localCenterA)), Q: rotA}
		xfB := lin.Transform{P: posB.c.Sub(rotB.MulVec2(pc.localCenterB)), Q: rotB}
		wm := shape.ComputeWorldManifold(&m, xfA, pc.radiusA, xfB, pc.radiusB)
		vc.normal = wm.Normal

		vA, wA := d.velocities[vc.indexA].v, d.velocities[vc.indexA].w
		vB, wB := d.velocities[vc.indexB].v, d.velocities[vc.indexB].w

		for j := range vc.points {
			vcp := &vc.points[j]
			vcp.rA = wm.Points[j].Point.Sub(posA.c)
			vcp.rB = wm.Points[j].Point.Sub(posB.c)

			rnA := vcp.rA.Cross(vc.normal)
			rnB := vcp.rB.Cross(vc.normal)
			kNormal := vc.invMassA + vc.invMassB + vc.invIA*rnA*rnA + vc.invIB*rnB*rnB
			if kNormal > 0 {
				vcp.normalMass = 1 / kNormal
			}

			tangent := lin.CrossVS(vc.normal, 1)
			rtA := vcp.rA.Cross(tangent)
			rtB := vcp.rB.Cross(tangent)
			kTangent := vc.invMassA + vc.invMassB + vc.invIA*rtA*rtA + vc.invIB*rtB*rtB
			if kTangent > 0 {
				vcp.tangentMass = 1 / kTangent
			}

			vRel := vc.normal.Dot(vB.Add(lin.CrossSV(wB, vcp.rB)).Sub(vA.Add(lin.CrossSV(wA, vcp.rA))))
			vcp.velocityBias = 0
			if vRel < -vc.threshold {
				vcp.velocityBias = -vc.restitution * vRel
			}
		}

		if len(vc.points) == 2 {
			vcp1, vcp2 := &vc.points[0], &vc.points[1]
			rn1A, rn1B := vcp1.rA.Cross(vc.normal), vcp1.rB.Cross(vc.normal)
			rn2A, rn2B := vcp2.rA.Cross(vc.normal), vcp2.rB.Cross(vc.normal)
			k11 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn1A + vc.invIB*rn1B*rn1B
			k22 := vc.invMassA + vc.invMassB + vc.invIA*rn2A*rn2A + vc.invIB*rn2B*rn2B
			k12 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn2A + vc.invIB*rn1B*rn2B
			const maxConditionNumber = 1000.0
			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.K = lin.Mat22{Ex: lin.V2{X: k11, Y: k12}, Ey: lin.V2{X: k12, Y: k22}}
				vc.normalMass = vc.K.Inverse()
			} else {
				vc.points = vc.points[:1]
			}
		}
	}
	if !cs.toi {
		cs.WarmStart()
	}
}

// WarmStart reapplies each point's carried-over normal/tangent impulse
// before the first velocity iteration, so the solver starts near last
// step's solution instead of from rest.
func (cs *ContactSolver) WarmStart() {
	d := cs.data
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		tangent := lin.CrossVS(vc.normal, 1)
		vA, wA := d.velocities[vc.indexA].v, d.velocities[vc.indexA].w
		vB, wB := d.velocities[vc.indexB].v, d.velocities[vc.indexB].w
		for j := range vc.points {
			mp := vc.contact.manifold.Points[j]
			vcp := &vc.points[j]
			vcp.normalImpulse = mp.NormalImpulse
			vcp.tangentImpulse = mp.TangentImpulse
			p := vc.normal.Scale(vcp.normalImpulse).Add(tangent.Scale(vcp.tangentImpulse))
			wA -= vc.invIA * vcp.rA.Cross(p)
			vA = vA.Sub(p.Scale(vc.invMassA))
			wB += vc.invIB * vcp.rB.Cross(p)
			vB = vB.Add(p.Scale(vc.invMassB))
		}
		d.velocities[vc.indexA] = solverVelocity{v: vA, w: wA}
		d.velocities[vc.indexB] = solverVelocity{v: vB, w: wB}
	}
}

// SolveVelocityConstraints runs one velocity iteration: friction
// (tangent) first using the previous iteration's normal impulse as the
// Coulomb bound, then normal impulses, using Dirk Gregorius's block
// solver for two-point manifolds to avoid the jitter of sequential
// single-point solves.
func (cs *ContactSolver) SolveVelocityConstraints() {
	d := cs.data
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		vA, wA := d.velocities[vc.indexA].v, d.velocities[vc.indexA].w
		vB, wB := d.velocities[vc.indexB].v, d.velocities[vc.indexB].w
		tangent := lin.CrossVS(vc.normal, 1)

		for j := range vc.points {
			vcp := &vc.points[j]
			dv := vB.Add(lin.CrossSV(wB, vcp.rB)).Sub(vA.Add(lin.CrossSV(wA, vcp.rA)))
			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vcp.tangentMass * -vt
			maxFriction := vc.friction * vcp.normalImpulse
			newImpulse := lin.Clamp(vcp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.tangentImpulse
			vcp.tangentImpulse = newImpulse

			p := tangent.Scale(lambda)
			vA = vA.Sub(p.Scale(vc.invMassA))
			wA -= vc.invIA * vcp.rA.Cross(p)
			vB = vB.Add(p.Scale(vc.invMassB))
			wB += vc.invIB * vcp.rB.Cross(p)
		}

		if len(vc.points) == 1 || !cs.blockSolve {
			for j := range vc.points {
				vcp := &vc.points[j]
				dv := vB.Add(lin.CrossSV(wB, vcp.rB)).Sub(vA.Add(lin.CrossSV(wA, vcp.rA)))
				vn := dv.Dot(vc.normal)
				lambda := -vcp.normalMass * (vn - vcp.velocityBias)
				newImpulse := lin.Max(vcp.normalImpulse+lambda, 0)
				lambda = newImpulse - vcp.normalImpulse
				vcp.normalImpulse = newImpulse

				p := vc.normal.Scale(lambda)
				vA = vA.Sub(p.Scale(vc.invMassA))
				wA -= vc.invIA * vcp.rA.Cross(p)
				vB = vB.Add(p.Scale(vc.invMassB))
				wB += vc.invIB * vcp.rB.Cross(p)
			}
		} else {
			vA, wA, vB, wB = cs.solveBlock(vc, vA, wA, vB, wB)
		}

		d.velocities[vc.indexA] = solverVelocity{v: vA, w: wA}
		d.velocities[vc.indexB] = solverVelocity{v: vB, w: wB}
	}
}

// solveBlock runs the 2-point block solver, enumerating the LCP sign
// cases (both active, either one active alone, or both clamped to
// zero) the way Dirk Gregorius's GDC block-solver derivation does,
// falling back to leaving the impulses unchanged if none of the cases
// produce a non-separating, non-negative answer.
func (cs *ContactSolver) solveBlock(vc *velocityConstraint, vA lin.V2, wA float32, vB lin.V2, wB float32) (lin.V2, float32, lin.V2, float32) {
	vcp1, vcp2 := &vc.points[0], &vc.points[1]
	a := lin.V2{X: vcp1.normalImpulse, Y: vcp2.normalImpulse}

	dv1 := vB.Add(lin.CrossSV(wB, vcp1.rB)).Sub(vA.Add(lin.CrossSV(wA, vcp1.rA)))
	dv2 := vB.Add(lin.CrossSV(wB, vcp2.rB)).Sub(vA.Add(lin.CrossSV(wA, vcp2.rA)))
	vn1 := dv1.Dot(vc.normal)
	vn2 := dv2.Dot(vc.normal)

	b := lin.V2{X: vn1 - vcp1.velocityBias, Y: vn2 - vcp2.velocityBias}
	b = b.Sub(vc.K.Mul(a))

	apply := func(d lin.V2) (lin.V2, float32, lin.V2, float32) {
		p1 := vc.normal.Scale(d.X)
		p2 := vc.normal.Scale(d.Y)
		sum := p1.Add(p2)
		vA = vA.Sub(sum.Scale(vc.invMassA))
		wA -= vc.invIA * (vcp1.rA.Cross(p1) + vcp2.rA.Cross(p2))
		vB = vB.Add(sum.Scale(vc.invMassB))
		wB += vc.invIB * (vcp1.rB.Cross(p1) + vcp2.rB.Cross(p2))
		return vA, wA, vB, wB
	}

	// case 1: both points active.
	x := vc.normalMass.Mul(b.Neg())
	if x.X >= 0 && x.Y >= 0 {
		vA, wA, vB, wB = apply(x.Sub(a))
		vcp1.normalImpulse, vcp2.normalImpulse = x.X, x.Y
		return vA, wA, vB, wB
	}

	// case 2: only point 1 active.
	x1 := -vcp1.normalMass * b.X
	if x1 >= 0 && vc.K.Ey.X*x1+b.Y >= 0 {
		vA, wA, vB, wB = apply(lin.V2{X: x1}.Sub(a))
		vcp1.normalImpulse, vcp2.normalImpulse = x1, 0
		return vA, wA, vB, wB
	}

	// case 3: only point 2 active.
	x2 := -vcp2.normalMass * b.Y
	if x2 >= 0 && vc.K.Ex.Y*x2+b.X >= 0 {
		vA, wA, vB, wB = apply(lin.V2{Y: x2}.Sub(a))
		vcp1.normalImpulse, vcp2.normalImpulse = 0, x2
		return vA, wA, vB, wB
	}

	// case 4: neither point active (separating).
	if b.X >= 0 && b.Y >= 0 {
		vA, wA, vB, wB = apply(lin.V2{}.Sub(a))
		vcp1.normalImpulse, vcp2.normalImpulse = 0, 0
	}
	return vA, wA, vB, wB
}

// StoreImpulses writes each velocity constraint's final normal and
// tangent impulses back into the contact's manifold so the next
// step's warm start (Contact.Update's ContactID matching) can find them.
func (cs *ContactSolver) StoreImpulses() {
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		for j := range vc.points {
			vc.contact.manifold.Points[j].NormalImpulse = vc.points[j].normalImpulse
			vc.contact.manifold.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

// positionSolverManifold resolves one position-constraint point's
// world-space location, separation axis and penetration, recomputed
// fresh each iteration from xfA/xfB (mirroring b2ComputeWorldManifold
// but specialized to the single point pc/j currently being solved).
func positionSolverManifold(pc *positionConstraint, xfA, xfB lin.Transform, j int) (point, normal lin.V2, separation float32) {
	switch pc.manifoldType {
	case shape.ManifoldCircles:
		pointA := xfA.World(pc.localPoint)
		pointB := xfB.World(pc.localPoints[0])
		normal = lin.V2{X: 1, Y: 0}
		if pointB.Sub(pointA).Len() > lin.Epsilon {
			normal = pointB.Sub(pointA).Unit()
		}
		point = pointA.Add(pointB).Scale(0.5)
		separation = pointB.Sub(pointA).Dot(normal) - pc.radiusA - pc.radiusB
	case shape.ManifoldFaceA:
		normal = xfA.WorldVec(pc.localNormal)
		planePoint := xfA.World(pc.localPoint)
		clipPoint := xfB.World(pc.localPoints[j])
		separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		point = clipPoint
	case shape.ManifoldFaceB:
		normal = xfB.WorldVec(pc.localNormal)
		planePoint := xfB.World(pc.localPoint)
		clipPoint := xfA.World(pc.localPoints[j])
		separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		point = clipPoint
		normal = normal.Neg()
	}
	return point, normal, separation
}

// SolvePositionConstraints runs one Baumgarte position-correction
// iteration per contact, recomputing separation fresh from the
// current (not yet fully synchronized) poses, and reports whether
// the deepest penetration is no worse than -3*linearSlop. In TOI mode it
// uses toiBaumgarte in place of baumgarte and converges to the
// stricter -1.5*linearSlop, since only the single TOI contact (not a
// general resting stack) is being resolved.
func (cs *ContactSolver) SolvePositionConstraints() bool {
	factor := float32(baumgarte)
	slack := float32(-3 * linearSlop)
	if cs.toi {
		factor = cs.toiBaumgarte
		slack = -1.5 * linearSlop
	}

	minSeparation := float32(0)
	d := cs.data
	for i := range cs.position {
		pc := &cs.position[i]
		cA, aA := d.positions[pc.indexA].c, d.positions[pc.indexA].a
		cB, aB := d.positions[pc.indexB].c, d.positions[pc.indexB].a

		for j := 0; j < pc.pointCount; j++ {
			rotA, rotB := lin.NewRot(aA), lin.NewRot(aB)
			xfA := lin.Transform{P: cA.Sub(rotA.MulVec2(pc.localCenterA)), Q: rotA}
			xfB := lin.Transform{P: cB.Sub(rotB.MulVec2(pc.localCenterB)), Q: rotB}

			point, normal, separation := positionSolverManifold(pc, xfA, xfB, j)

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			c := lin.Clamp(factor*(separation+linearSlop), -maxLinearCorrection, 0)
			if separation < minSeparation {
				minSeparation = separation
			}

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := pc.invMassA + pc.invMassB + pc.invIA*rnA*rnA + pc.invIB*rnB*rnB
			impulse := float32(0)
			if k > 0 {
				impulse = -c / k
			}
			p := normal.Scale(impulse)

			cA = cA.Sub(p.Scale(pc.invMassA))
			aA -= pc.invIA * rA.Cross(p)
			cB = cB.Add(p.Scale(pc.invMassB))
			aB += pc.invIB * rB.Cross(p)
		}

		d.positions[pc.indexA] = solverPosition{c: cA, a: aA}
		d.positions[pc.indexB] = solverPosition{c: cB, a: aB}
	}
	return minSeparation >= slack
}
