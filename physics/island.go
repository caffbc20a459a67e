// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/kinetix2d/kinetix/math/lin"

// Island is one connected component of awake, touching bodies (plus
// the static/kinematic bodies they touch) solved together in a single
// sequential-impulse pass. Bodies in different islands never interact
// in a step, so islands may in principle be solved independently.
type Island struct {
	bodies    []*Body
	contacts  []*Contact
	joints    []Joint
	listener  ContactListener
	tuning    Tuning
	blockSolve bool
}

// NewIsland returns an empty island ready to accept bodies/contacts/joints.
func NewIsland(tuning Tuning, blockSolve bool, listener ContactListener) *Island {
	return &Island{tuning: tuning, blockSolve: blockSolve, listener: listener}
}

func (is *Island) Clear() {
	is.bodies = is.bodies[:0]
	is.contacts = is.contacts[:0]
	is.joints = is.joints[:0]
}

func (is *Island) Add(b *Body)       { is.bodies = append(is.bodies, b) }
func (is *Island) AddContact(c *Contact) { is.contacts = append(is.contacts, c) }
func (is *Island) AddJoint(j Joint)  { is.joints = append(is.joints, j) }

// Solve advances every body in the island by dt using velocityIterations
// velocity passes and positionIterations position passes, following the
// usual sequence: integrate forces into velocities, warm-start and solve
// the velocity constraints (contacts and joints), integrate velocities
// into positions (clamped to maxTranslation/maxRotation), solve position
// constraints to remove any remaining penetration/joint drift, then run
// sleep management across the island.
func (is *Island) Solve(dt float32, gravity lin.V2, allowSleep bool, velocityIterations, positionIterations int) {
	t := is.tuning
	data := &solverData{dt: dt, index: make(map[*Body]int, len(is.bodies))}
	if dt > 0 {
		data.invDt = 1 / dt
	}
	data.positions = make([]solverPosition, len(is.bodies))
	data.velocities = make([]solverVelocity, len(is.bodies))

	for i, b := range is.bodies {
		data.index[b] = i
		b.sweep.C0, b.sweep.A0 = b.sweep.C, b.sweep.A
		v := b.linearVelocity
		w := b.angularVelocity
		if b.typ == DynamicBody {
			v = v.Add(gravity.Add(b.force.Scale(b.invMass)).Scale(dt * b.gravityScale))
			w += dt * b.invI * b.torque
			v = v.Scale(1 / (1 + dt*b.linearDamping))
			w *= 1 / (1 + dt*b.angularDamping)
		}
		data.positions[i] = solverPosition{c: b.sweep.C, a: b.sweep.A}
		data.velocities[i] = solverVelocity{v: v, w: w}
	}

	solver := NewContactSolver(data, is.contacts, is.blockSolve)
	solver.InitVelocityConstraints()

	for _, j := range is.joints {
		j.initVelocityConstraints(data)
	}

	for i := 0; i < velocityIterations; i++ {
		for _, j := range is.joints {
			j.solveVelocityConstraints(data)
		}
		solver.SolveVelocityConstraints()
	}
	solver.StoreImpulses()

	for i := range is.bodies {
		pos := data.positions[i]
		vel := data.velocities[i]

		translation := vel.v.Scale(dt)
		if translation.Dot(translation) > t.MaxTranslation*t.MaxTranslation {
			ratio := t.MaxTranslation / translation.Len()
			vel.v = vel.v.Scale(ratio)
		}
		rotation := dt * vel.w
		if rotation*rotation > t.MaxRotation*t.MaxRotation {
			ratio := t.MaxRotation / lin.Abs(rotation)
			vel.w *= ratio
		}

		pos.c = pos.c.Add(vel.v.Scale(dt))
		pos.a += dt * vel.w
		data.positions[i] = pos
		data.velocities[i] = vel
	}

	for i := 0; i < positionIterations; i++ {
		contactsOkay := solver.SolvePositionConstraints()
		jointsOkay := true
		for _, j := range is.joints {
			if !j.solvePositionConstraints(data) {
				jointsOkay = false
			}
		}
		if contactsOkay && jointsOkay {
			break
		}
	}

	is.reportPostSolve(solver)

	for i, b := range is.bodies {
		pos := data.positions[i]
		vel := data.velocities[i]
		b.sweep.C = pos.c
		b.sweep.A = pos.a
		b.linearVelocity = vel.v
		b.angularVelocity = vel.w
		b.synchronizeTransform()
	}

	if allowSleep {
		is.sleepPass(dt, t)
	}
}

// reportPostSolve fires the listener's PostSolve with the final
// accumulated impulses for every contact that took part in this solve.
func (is *Island) reportPostSolve(solver *ContactSolver) {
	if is.listener == nil {
		return
	}
	for i := range solver.velocity {
		vc := &solver.velocity[i]
		var impulse ContactImpulse
		impulse.Count = len(vc.points)
		for j, p := range vc.points {
			impulse.NormalImpulses[j] = p.normalImpulse
			impulse.TangentImpulses[j] = p.tangentImpulse
		}
		is.listener.PostSolve(vc.contact, &impulse)
	}
}

// sleepPass resets each body's sleep timer when it moves above the
// sleep-tolerance thresholds, or accumulates dt when it doesn't; if
// every body in the island has accumulated at least timeToSleep (and
// every body allows sleep), the whole island is put to sleep together.
func (is *Island) sleepPass(dt float32, t Tuning) {
	minSleepTime := t.TimeToSleep
	linTolSq := t.LinearSleepTolerance * t.LinearSleepTolerance
	angTolSq := t.AngularSleepTolerance * t.AngularSleepTolerance

	for _, b := range is.bodies {
		if b.typ == StaticBody {
			continue
		}
		if !b.AllowsSleep() || !b.IsAwake() ||
			b.angularVelocity*b.angularVelocity > angTolSq ||
			b.linearVelocity.Dot(b.linearVelocity) > linTolSq {
			b.sleepTime = 0
		} else {
			b.sleepTime += dt
		}
		if b.sleepTime < minSleepTime {
			minSleepTime = b.sleepTime
		}
	}

	if minSleepTime >= t.TimeToSleep {
		for _, b := range is.bodies {
			b.SetAwake(false)
		}
	}
}

// SolveTOI runs a restricted island solve for a time-of-impact event:
// position and velocity constraints are built across every body in the
// island (a contact set may chain through several bodies), but only
// indexA and indexB, the two bodies the triggering TOI contact
// actually involves, are integrated and written back — every other
// body in the island holds its pre-TOI pose and velocity, matching the
// restriction that a TOI sub-step only advances the colliding pair.
// There is no sleep management, no warm-starting (the discrete
// solve's stored impulses are sized for a full dt and would overshoot
// a TOI sub-step), and position correction uses toiBaumgarte instead
// of the discrete baumgarte factor plus a stricter convergence
// tolerance, since only the triggering contact's penetration (not a
// general resting stack) is being resolved.
func (is *Island) SolveTOI(subStep float32, indexA, indexB int) {
	data := &solverData{dt: subStep, index: make(map[*Body]int, len(is.bodies))}
	if subStep > 0 {
		data.invDt = 1 / subStep
	}
	data.positions = make([]solverPosition, len(is.bodies))
	data.velocities = make([]solverVelocity, len(is.bodies))
	for i, b := range is.bodies {
		data.index[b] = i
		data.positions[i] = solverPosition{c: b.sweep.C, a: b.sweep.A}
		data.velocities[i] = solverVelocity{v: b.linearVelocity, w: b.angularVelocity}
	}

	solver := NewTOIContactSolver(data, is.contacts, is.blockSolve, is.tuning.ToiBaumgarte)
	for i := 0; i < 20; i++ {
		if solver.SolvePositionConstraints() {
			break
		}
	}

	solver.InitVelocityConstraints()
	for i := 0; i < 20; i++ {
		solver.SolveVelocityConstraints()
	}
	solver.StoreImpulses()

	for _, i := range []int{indexA, indexB} {
		b := is.bodies[i]
		pos := data.positions[i]
		vel := data.velocities[i]
		pos.c = pos.c.Add(vel.v.Scale(subStep))
		pos.a += subStep * vel.w
		b.sweep.C = pos.c
		b.sweep.A = pos.a
		b.linearVelocity = vel.v
		b.angularVelocity = vel.w
		b.synchronizeTransform()
	}
}
