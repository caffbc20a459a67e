// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"errors"
	"log/slog"

	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

// ErrWorldLocked is returned by the body/fixture/joint mutators when
// called from inside Step (typically from a ContactListener callback).
var ErrWorldLocked = errors.New("physics: world is locked")

type worldFlags uint32

const (
	worldLocked worldFlags = 1 << iota
	worldClearForces
)

// WorldConfig collects the values an Option can set.
type WorldConfig struct {
	gravity            lin.V2
	velocityIterations int
	positionIterations int
	continuous         bool
	autoClearForces    bool
	blockSolve         bool
	tuning             Tuning
}

// Option configures a World at construction time.
type Option func(*WorldConfig)

// Gravity sets the constant force-per-unit-mass applied to every
// dynamic body each step. Default is zero gravity.
func Gravity(x, y float32) Option {
	return func(c *WorldConfig) { c.gravity = lin.V2{X: x, Y: y} }
}

// VelocityIterations records a velocity-solver pass count in the world
// configuration. Default 8. Step does not read it; it uses its own
// velocityIterations argument.
func VelocityIterations(n int) Option {
	return func(c *WorldConfig) { c.velocityIterations = n }
}

// PositionIterations records a position-correction pass count in the
// world configuration. Default 3. Step does not read it; it uses its own
// positionIterations argument.
func PositionIterations(n int) Option {
	return func(c *WorldConfig) { c.positionIterations = n }
}

// ContinuousPhysics toggles time-of-impact sweeping for bullet bodies
// and fast-moving thin-shape pairs. Default true.
func ContinuousPhysics(on bool) Option {
	return func(c *WorldConfig) { c.continuous = on }
}

// AutoClearForces toggles whether Step zeroes accumulated forces and
// torques after integrating them. Default true.
func AutoClearForces(on bool) Option {
	return func(c *WorldConfig) { c.autoClearForces = on }
}

// BlockSolve toggles the two-point block contact solver (Dirk
// Gregorius' method) versus sequential per-point solving. Default true.
func BlockSolve(on bool) Option {
	return func(c *WorldConfig) { c.blockSolve = on }
}

// WithTuning sets the Tuning handed to the world's Island (its
// translation/rotation clamps, sleep thresholds and ToiBaumgarte),
// typically via LoadTuning. Default DefaultTuning(). The broad-phase,
// tree, contact solver, joints and solveTOI use the package constants.
func WithTuning(t Tuning) Option {
	return func(c *WorldConfig) { c.tuning = t }
}

func defaultWorldConfig() WorldConfig {
	return WorldConfig{
		velocityIterations: 8,
		positionIterations: 3,
		continuous:         true,
		autoClearForces:    true,
		blockSolve:         true,
		tuning:             DefaultTuning(),
	}
}

// World owns every Body, Fixture and Joint in a simulation and steps
// them forward in time through the usual broad-phase / narrow-phase /
// island-solve / continuous-collision pipeline.
type World struct {
	config WorldConfig
	flags  worldFlags

	contactManager *ContactManager
	listener       ContactListener

	bodies    map[uint32]*Body
	joints    map[uint32]Joint
	nextBody  uint32
	nextJoint uint32

	island *Island
}

// nopListener discards every contact callback; used when NewWorld is
// not given one.
type nopListener struct{}

func (nopListener) BeginContact(c *Contact)                    {}
func (nopListener) EndContact(c *Contact)                      {}
func (nopListener) PreSolve(c *Contact, oldManifold *shape.Manifold) {}
func (nopListener) PostSolve(c *Contact, impulse *ContactImpulse)    {}

// NewWorld returns a World configured by opts, with zero gravity and
// no registered listener unless overridden.
func NewWorld(listener ContactListener, opts ...Option) *World {
	cfg := defaultWorldConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if listener == nil {
		listener = nopListener{}
	}
	w := &World{
		config:         cfg,
		listener:       listener,
		contactManager: NewContactManager(listener),
		bodies:         make(map[uint32]*Body),
		joints:         make(map[uint32]Joint),
	}
	if cfg.autoClearForces {
		w.flags |= worldClearForces
	}
	w.island = NewIsland(cfg.tuning, cfg.blockSolve, listener)
	return w
}

func (w *World) isLocked() bool { return w.flags&worldLocked != 0 }

// CreateBody adds a body to the world. Returns ErrWorldLocked if called
// during Step.
func (w *World) CreateBody(def BodyDef) (*Body, error) {
	if w.isLocked() {
		slog.Warn("physics: CreateBody called while world locked")
		return nil, ErrWorldLocked
	}
	w.nextBody++
	b := &Body{
		handle:          BodyHandle{id: w.nextBody},
		typ:             def.Type,
		world:           w,
		xf:              lin.NewTransform(def.Position, def.Angle),
		linearVelocity:  def.LinearVelocity,
		angularVelocity: def.AngularVelocity,
		linearDamping:   def.LinearDamping,
		angularDamping:  def.AngularDamping,
		gravityScale:    def.GravityScale,
	}
	b.sweep = lin.Sweep{
		LocalCenter: lin.V2Zero,
		C0:          def.Position,
		C:           def.Position,
		A0:          def.Angle,
		A:           def.Angle,
	}
	if def.Enabled {
		b.flags |= bodyEnabled
	}
	if def.AllowSleep {
		b.flags |= bodyAutoSleep
	}
	if def.Awake {
		b.flags |= bodyAwake
	}
	if def.Bullet {
		b.flags |= bodyBullet
	}
	if def.FixedRotation {
		b.flags |= bodyFixedRotation
	}
	b.resetMassData()
	w.bodies[b.handle.id] = b
	return b, nil
}

// DestroyBody removes a body and every fixture, contact and joint
// attached to it. Returns ErrWorldLocked if called during Step.
func (w *World) DestroyBody(b *Body) error {
	if w.isLocked() {
		slog.Warn("physics: DestroyBody called while world locked")
		return ErrWorldLocked
	}
	for len(b.jointEdges) > 0 {
		w.DestroyJoint(b.jointEdges[0].Joint)
	}
	for len(b.contactEdges) > 0 {
		w.contactManager.destroy(b.contactEdges[0].Contact)
	}
	for _, f := range b.fixtures {
		w.destroyFixtureProxies(f)
	}
	delete(w.bodies, b.handle.id)
	return nil
}

func removeContactEdge(edges []*ContactEdge, e *ContactEdge) []*ContactEdge {
	for i, o := range edges {
		if o == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// CreateFixture attaches a fixture to b, registering one broad-phase
// proxy per child shape and recomputing b's mass data. Returns
// ErrWorldLocked if called during Step.
func (w *World) CreateFixture(b *Body, def FixtureDef) (*Fixture, error) {
	if w.isLocked() {
		slog.Warn("physics: CreateFixture called while world locked")
		return nil, ErrWorldLocked
	}
	f := &Fixture{
		Body:                 b,
		Shape:                def.Shape,
		Density:              def.Density,
		Friction:             def.Friction,
		Restitution:          def.Restitution,
		RestitutionThreshold: def.RestitutionThreshold,
		IsSensor:             def.IsSensor,
		Filter:               def.Filter,
	}
	for i := 0; i < def.Shape.GetChildCount(); i++ {
		aabb := def.Shape.ComputeAABB(b.xf, i).Extend(aabbExtension)
		p := &Proxy{Fixture: f, ChildIndex: i, AABB: aabb}
		p.treeID = w.contactManager.BroadPhase().CreateProxy(aabb, p)
		f.Proxies = append(f.Proxies, p)
	}
	b.fixtures = append(b.fixtures, f)
	b.resetMassData()
	return f, nil
}

// DestroyFixture detaches a fixture from its body, destroying every
// contact that referenced it. Returns ErrWorldLocked if called during
// Step.
func (w *World) DestroyFixture(f *Fixture) error {
	if w.isLocked() {
		slog.Warn("physics: DestroyFixture called while world locked")
		return ErrWorldLocked
	}
	b := f.Body
	for _, edge := range append([]*ContactEdge(nil), b.contactEdges...) {
		c := edge.Contact
		if c.FixtureA == f || c.FixtureB == f {
			w.contactManager.destroy(c)
		}
	}
	w.destroyFixtureProxies(f)
	for i, of := range b.fixtures {
		if of == f {
			b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
			break
		}
	}
	b.resetMassData()
	return nil
}

func (w *World) destroyFixtureProxies(f *Fixture) {
	for _, p := range f.Proxies {
		w.contactManager.BroadPhase().DestroyProxy(p.treeID)
	}
	f.Proxies = nil
}

// CreateJoint attaches j to the world, building the JointEdges that
// link it into both endpoint bodies. Returns ErrWorldLocked if called
// during Step.
func (w *World) CreateJoint(j Joint) error {
	if w.isLocked() {
		slog.Warn("physics: CreateJoint called while world locked")
		return ErrWorldLocked
	}
	base := j.base()
	base.edgeA = &JointEdge{Other: base.bodyB, Joint: j}
	base.edgeB = &JointEdge{Other: base.bodyA, Joint: j}
	base.bodyA.jointEdges = append(base.bodyA.jointEdges, base.edgeA)
	base.bodyB.jointEdges = append(base.bodyB.jointEdges, base.edgeB)
	base.bodyA.SetAwake(true)
	base.bodyB.SetAwake(true)

	if !base.collideConnected {
		for _, edge := range append([]*ContactEdge(nil), base.bodyA.contactEdges...) {
			if edge.Other == base.bodyB {
				w.contactManager.destroy(edge.Contact)
			}
		}
	}

	w.nextJoint++
	w.joints[w.nextJoint] = j
	return nil
}

// DestroyJoint removes j from the world.
func (w *World) DestroyJoint(j Joint) error {
	if w.isLocked() {
		slog.Warn("physics: DestroyJoint called while world locked")
		return ErrWorldLocked
	}
	base := j.base()
	base.bodyA.jointEdges = removeJointEdge(base.bodyA.jointEdges, base.edgeA)
	base.bodyB.jointEdges = removeJointEdge(base.bodyB.jointEdges, base.edgeB)
	for id, oj := range w.joints {
		if oj == j {
			delete(w.joints, id)
			break
		}
	}
	return nil
}

func removeJointEdge(edges []*JointEdge, e *JointEdge) []*JointEdge {
	for i, o := range edges {
		if o == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// Step advances the simulation by dt using velocityIterations velocity
// passes and positionIterations position passes. The pipeline: find new
// candidate pairs, update (narrow-phase) every live contact, build and
// solve one island per connected component of awake bodies (solve then
// synchronizes the moved broad-phase proxies and finds new pairs again),
// then, when continuous physics is on, run the time-of-impact pass.
func (w *World) Step(dt float32, velocityIterations, positionIterations int) {
	w.flags |= worldLocked
	defer func() { w.flags &^= worldLocked }()

	w.contactManager.FindNewPairs()
	w.contactManager.Collide()

	if dt > 0 {
		w.solve(dt, velocityIterations, positionIterations)
		if w.config.continuous {
			w.solveTOI(dt)
		}
	}

	if w.flags&worldClearForces != 0 {
		for _, b := range w.bodies {
			b.force = lin.V2Zero
			b.torque = 0
		}
	}
}

// solve builds one island per connected component of awake dynamic
// bodies (reached through touching contacts and joints) and solves
// each independently, then synchronizes every moved fixture's
// broad-phase proxy.
func (w *World) solve(dt float32, velocityIterations, positionIterations int) {
	for _, b := range w.bodies {
		b.flags &^= bodyIsland
	}
	for _, c := range w.contactManager.Contacts() {
		c.flags &^= contactIsland
	}
	for _, j := range w.joints {
		j.base().islandFlag = false
	}

	stack := make([]*Body, 0, len(w.bodies))
	for _, seed := range w.bodies {
		if seed.flags&bodyIsland != 0 {
			continue
		}
		if !seed.IsAwake() || !seed.IsEnabled() {
			continue
		}
		if seed.typ == StaticBody {
			continue
		}

		w.island.Clear()
		stack = stack[:0]
		stack = append(stack, seed)
		seed.flags |= bodyIsland

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			w.island.Add(b)

			if b.typ == StaticBody {
				continue
			}

			for _, edge := range b.contactEdges {
				c := edge.Contact
				if c.flags&contactIsland != 0 || !c.IsTouching() || !c.IsEnabled() || c.IsSensor() {
					continue
				}
				c.flags |= contactIsland
				w.island.AddContact(c)
				other := edge.Other
				if other.flags&bodyIsland == 0 {
					other.flags |= bodyIsland
					stack = append(stack, other)
				}
			}

			for _, edge := range b.jointEdges {
				j := edge.Joint
				if j.base().islandFlag || !j.IsActive() {
					continue
				}
				j.base().islandFlag = true
				w.island.AddJoint(j)
				other := edge.Other
				if other.flags&bodyIsland == 0 {
					other.flags |= bodyIsland
					stack = append(stack, other)
				}
			}
		}

		allowSleep := true
		for _, b := range w.island.bodies {
			if !b.AllowsSleep() {
				allowSleep = false
				break
			}
		}
		w.island.Solve(dt, w.config.gravity, allowSleep, velocityIterations, positionIterations)

		for _, b := range w.island.bodies {
			if b.typ == StaticBody {
				b.flags &^= bodyIsland
			}
		}
	}

	for _, b := range w.bodies {
		if b.typ == StaticBody || !b.IsAwake() || !b.IsEnabled() {
			continue
		}
		w.synchronizeFixtures(b)
	}
	w.contactManager.FindNewPairs()
}

func (w *World) synchronizeFixtures(b *Body) {
	xf1 := b.sweep.Transform(0)
	for _, f := range b.fixtures {
		for _, p := range f.Proxies {
			aabb1 := f.Shape.ComputeAABB(xf1, p.ChildIndex)
			aabb2 := f.Shape.ComputeAABB(b.xf, p.ChildIndex)
			p.AABB = aabb1.Union(aabb2).Extend(aabbExtension)
			displacement := b.xf.P.Sub(xf1.P)
			w.contactManager.BroadPhase().MoveProxy(p.treeID, p.AABB, displacement)
		}
	}
}

// solveTOI repeatedly finds the earliest time-of-impact among all
// contacts eligible for continuous collision (any pair with a bullet
// body, or a dynamic body against a static or kinematic one), advances
// the two bodies of that contact (and the neighbours it pulls into the
// sub-island) to that instant, and resolves them with a restricted
// island solve, until no further impact is found within dt or
// maxTOIContacts events have been handled.
func (w *World) solveTOI(dt float32) {
	for _, b := range w.bodies {
		b.sweep.Alpha0 = 0
	}
	for _, c := range w.contactManager.Contacts() {
		c.flags &^= (contactTOI)
		c.toiCount = 0
	}

	for iter := 0; iter < maxTOIContacts; iter++ {
		var minContact *Contact
		minAlpha := float32(1.0)

		for _, c := range w.contactManager.Contacts() {
			if c.flags&contactTOI != 0 || !c.IsEnabled() || c.toiCount >= maxSubSteps {
				continue
			}
			bodyA, bodyB := c.FixtureA.Body, c.FixtureB.Body
			if bodyA.typ != DynamicBody && bodyB.typ != DynamicBody {
				continue
			}
			if !bodyA.IsBullet() && !bodyB.IsBullet() && bodyA.typ == DynamicBody && bodyB.typ == DynamicBody {
				continue
			}
			if !bodyA.IsAwake() && !bodyB.IsAwake() {
				continue
			}
			if c.IsSensor() {
				continue
			}

			alpha0 := lin.Max(bodyA.sweep.Alpha0, bodyB.sweep.Alpha0)

			proxyA := shape.MakeDistanceProxy(resolveChild(c.FixtureA, c.ChildIndexA), 0)
			proxyB := shape.MakeDistanceProxy(resolveChild(c.FixtureB, c.ChildIndexB), 0)
			out := TimeOfImpact(TOIInput{
				ProxyA: proxyA, ProxyB: proxyB,
				SweepA: bodyA.sweep, SweepB: bodyB.sweep,
				TMax: 1,
			})

			alpha := float32(1)
			switch out.State {
			case TOITouching:
				alpha = lin.Min(alpha0+(1-alpha0)*out.T, 1)
			case TOIFailed, TOIUnknown:
				slog.Debug("physics: time-of-impact root finder did not converge, treating as no-impact",
					"state", out.State)
			}

			if alpha < minAlpha {
				minAlpha = alpha
				minContact = c
			}
		}

		if minContact == nil || minAlpha > 1-10*lin.Epsilon {
			break
		}

		bodyA, bodyB := minContact.FixtureA.Body, minContact.FixtureB.Body
		backupA, backupB := bodyA.sweep, bodyB.sweep
		bodyA.sweep.Advance(minAlpha)
		bodyB.sweep.Advance(minAlpha)
		bodyA.sweep.C, bodyA.sweep.A = bodyA.sweep.C0, bodyA.sweep.A0
		bodyB.sweep.C, bodyB.sweep.A = bodyB.sweep.C0, bodyB.sweep.A0
		bodyA.synchronizeTransform()
		bodyB.synchronizeTransform()

		minContact.Update(w.listener)
		minContact.flags |= contactTOI
		minContact.toiCount++

		if !minContact.IsTouching() || !minContact.IsEnabled() {
			bodyA.sweep = backupA
			bodyB.sweep = backupB
			bodyA.synchronizeTransform()
			bodyB.synchronizeTransform()
			continue
		}

		bodyA.SetAwake(true)
		bodyB.SetAwake(true)

		w.island.Clear()
		w.island.Add(bodyA)
		w.island.Add(bodyB)
		w.island.AddContact(minContact)
		indexA, indexB := 0, 1
		if bodyA.typ != DynamicBody {
			indexA = 1
			indexB = 0
		}

		for _, b := range [2]*Body{bodyA, bodyB} {
			if b.typ != DynamicBody {
				continue
			}
			for _, edge := range b.contactEdges {
				c := edge.Contact
				if c == minContact || c.flags&contactTOI != 0 {
					continue
				}
				other := edge.Other
				if other.typ == DynamicBody && !b.IsBullet() && !other.IsBullet() {
					continue
				}
				if !c.IsEnabled() || c.IsSensor() {
					continue
				}
				other.sweep.Advance(minAlpha)
				other.sweep.C, other.sweep.A = other.sweep.C0, other.sweep.A0
				other.synchronizeTransform()
				c.Update(w.listener)
				if !c.IsTouching() {
					continue
				}
				c.flags |= contactTOI
				w.island.Add(other)
				w.island.AddContact(c)
			}
		}

		w.island.SolveTOI(dt*(1-minAlpha), indexA, indexB)

		for _, b := range w.island.bodies {
			if b.typ != DynamicBody {
				continue
			}
			w.synchronizeFixtures(b)
			for _, edge := range b.contactEdges {
				edge.Contact.flags &^= contactTOI
			}
		}
	}
}

// QueryAABB visits every fixture proxy whose fat AABB overlaps aabb.
// callback returning false stops the query early.
func (w *World) QueryAABB(aabb shape.AABB, callback func(f *Fixture) bool) {
	w.contactManager.BroadPhase().Query(aabb, func(proxyID int32) bool {
		p := w.contactManager.BroadPhase().GetUserData(proxyID).(*Proxy)
		return callback(p.Fixture)
	})
}

// RayCastFixtureCallback receives each fixture hit along a ray, nearest
// first per proxy visited (not globally sorted); return the fraction to
// clip the ray to continue searching closer hits, 0 to stop the whole
// cast, or input.MaxFraction to ignore this fixture and keep going.
type RayCastFixtureCallback func(f *Fixture, point, normal lin.V2, fraction float32) float32

// RayCast casts a ray against every fixture in the world.
func (w *World) RayCast(p1, p2 lin.V2, callback RayCastFixtureCallback) {
	input := shape.RayCastInput{P1: p1, P2: p2, MaxFraction: 1}
	w.contactManager.BroadPhase().RayCast(input, func(in shape.RayCastInput, proxyID int32) float32 {
		p := w.contactManager.BroadPhase().GetUserData(proxyID).(*Proxy)
		out := p.Fixture.RayCast(in, p.ChildIndex)
		if !out.Hit {
			return in.MaxFraction
		}
		point := in.P1.Lerp(in.P2, out.Fraction)
		return callback(p.Fixture, point, out.Normal, out.Fraction)
	})
}

// GetProxyCount returns the number of broad-phase proxies currently
// registered, one per (fixture, child shape) pair across every body.
func (w *World) GetProxyCount() int {
	n := 0
	for _, b := range w.bodies {
		for _, f := range b.fixtures {
			n += len(f.Proxies)
		}
	}
	return n
}

// GetTreeHeight returns the dynamic tree's current height.
func (w *World) GetTreeHeight() int { return w.contactManager.BroadPhase().tree.GetHeight() }

// GetTreeBalance returns the dynamic tree's worst per-node height
// imbalance.
func (w *World) GetTreeBalance() int { return w.contactManager.BroadPhase().tree.GetMaxBalance() }

// GetTreeQuality returns the ratio of the tree's total node perimeter
// to the root's perimeter: 1.0 is perfectly tight, higher is looser.
func (w *World) GetTreeQuality() float32 { return w.contactManager.BroadPhase().tree.GetAreaRatio() }

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int { return len(w.bodies) }

// JointCount returns the number of live joints.
func (w *World) JointCount() int { return len(w.joints) }

// ContactCount returns the number of live contacts (touching or not).
func (w *World) ContactCount() int { return len(w.contactManager.Contacts()) }
