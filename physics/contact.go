// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

type contactFlags uint32

const (
	contactIsland contactFlags = 1 << iota
	contactTouching
	contactEnabled
	contactFilter
	contactBulletHit
	contactTOI
)

// ContactListener receives the lifecycle callbacks a Contact fires as
// its manifold is updated: BeginContact/EndContact on touching-state
// transitions, PreSolve before each island solve, PostSolve after.
type ContactListener interface {
	BeginContact(c *Contact)
	EndContact(c *Contact)
	PreSolve(c *Contact, oldManifold *shape.Manifold)
	PostSolve(c *Contact, impulse *ContactImpulse)
}

// ContactImpulse reports the final accumulated impulses of a solved
// contact, passed to PostSolve.
type ContactImpulse struct {
	NormalImpulses  [maxManifoldPoints]float32
	TangentImpulses [maxManifoldPoints]float32
	Count           int
}

// ContactEdge is one endpoint of a contact on a body's contact list.
type ContactEdge struct {
	Other   *Body
	Contact *Contact
}

// Contact represents a potentially-touching pair of fixture children.
// FixtureA/ChildIndexA is always the "primary" shape per typeRank, so
// that narrow-phase dispatch (collideShapes) only needs to handle each
// unordered shape-type pair once.
type Contact struct {
	FixtureA, FixtureB       *Fixture
	ChildIndexA, ChildIndexB int

	flags    contactFlags
	manifold shape.Manifold

	friction             float32
	restitution          float32
	restitutionThreshold float32
	tangentSpeed         float32

	toi      float32
	toiCount int

	edgeA *ContactEdge
	edgeB *ContactEdge
}

// typeRank orders shape types so that the "more complex" shape leads a
// pair: Circle is never primary except against another circle; Chain
// and Edge (both degenerate-polygon natured) outrank Polygon.
func typeRank(t shape.Type) int {
	switch t {
	case shape.Circle:
		return 0
	case shape.Polygon:
		return 1
	case shape.Edge:
		return 2
	case shape.Chain:
		return 3
	}
	return 0
}

func shapeType(f *Fixture) shape.Type { return f.Shape.GetType() }

// newContact builds a Contact for fixtures fa/fb (children ia/ib),
// canonicalizing which fixture is "A" via typeRank, and mixing the
// material parameters per the friction/restitution/threshold rules.
func newContact(fa *Fixture, ia int, fb *Fixture, ib int) *Contact {
	if typeRank(shapeType(fa)) < typeRank(shapeType(fb)) {
		fa, fb = fb, fa
		ia, ib = ib, ia
	}
	return &Contact{
		FixtureA: fa, ChildIndexA: ia,
		FixtureB: fb, ChildIndexB: ib,
		friction:             mixFriction(fa.Friction, fb.Friction),
		restitution:          mixRestitution(fa.Restitution, fb.Restitution),
		restitutionThreshold: mixThreshold(fa.RestitutionThreshold, fb.RestitutionThreshold),
		flags:                contactEnabled,
	}
}

func mixFriction(a, b float32) float32    { return lin.Sqrt(a * b) }
func mixRestitution(a, b float32) float32 { return lin.Max(a, b) }
func mixThreshold(a, b float32) float32   { return lin.Min(a, b) }

// IsTouching reports whether the contact currently has a non-empty
// manifold (or, for sensors, an overlap).
func (c *Contact) IsTouching() bool { return c.flags&contactTouching != 0 }

// IsEnabled reports whether the contact currently participates in
// solving. A PreSolve callback may clear this for the current step.
func (c *Contact) IsEnabled() bool { return c.flags&contactEnabled != 0 }

// SetEnabled toggles solving participation for the current step.
func (c *Contact) SetEnabled(flag bool) {
	if flag {
		c.flags |= contactEnabled
	} else {
		c.flags &^= contactEnabled
	}
}

// IsSensor reports whether either fixture is a sensor.
func (c *Contact) IsSensor() bool { return c.FixtureA.IsSensor || c.FixtureB.IsSensor }

// Manifold returns the contact's current manifold (local-space,
// belonging to the FixtureA/FixtureB pair).
func (c *Contact) Manifold() *shape.Manifold { return &c.manifold }

// Friction returns the mixed Coulomb friction coefficient.
func (c *Contact) Friction() float32 { return c.friction }

// Restitution returns the mixed restitution (bounciness) coefficient.
func (c *Contact) Restitution() float32 { return c.restitution }

// resolveChild returns the concrete collidable shape for one child of
// a fixture's shape, expanding a ChainShape's child index to its edge.
func resolveChild(f *Fixture, childIndex int) shape.Shape {
	if c, ok := f.Shape.(*shape.ChainShape); ok {
		return c.Child(childIndex)
	}
	return f.Shape
}

// collideShapes dispatches to the appropriate pairwise CollideX
// function for two resolved shapes. This Go type switch is the
// idiomatic stand-in for a shape-type x shape-type function pointer
// table: the compiler lowers it to a jump on the concrete type, same
// complexity, no unsafe function pointers.
func collideShapes(sa shape.Shape, xfA lin.Transform, sb shape.Shape, xfB lin.Transform) shape.Manifold {
	switch a := sa.(type) {
	case *shape.CircleShape:
		if b, ok := sb.(*shape.CircleShape); ok {
			return shape.CollideCircles(a, xfA, b, xfB)
		}
	case *shape.PolygonShape:
		switch b := sb.(type) {
		case *shape.CircleShape:
			return shape.CollidePolygonAndCircle(a, xfA, b, xfB)
		case *shape.PolygonShape:
			return shape.CollidePolygons(a, xfA, b, xfB)
		}
	case *shape.EdgeShape:
		switch b := sb.(type) {
		case *shape.CircleShape:
			return shape.CollideEdgeAndCircle(a, xfA, b, xfB)
		case *shape.PolygonShape:
			return shape.CollideEdgeAndPolygon(a, xfA, b, xfB)
		}
	}
	return shape.Manifold{}
}

// testOverlap reports shape overlap without building a manifold, used
// for sensor fixtures.
func testOverlap(sa shape.Shape, xfA lin.Transform, sb shape.Shape, xfB lin.Transform) bool {
	pa := shape.MakeDistanceProxy(sa, 0)
	pb := shape.MakeDistanceProxy(sb, 0)
	out := shape.Distance(pa, xfA, pb, xfB)
	return out.Distance < 10*shape.LinearSlop
}

// Update recomputes the contact's manifold from the current body
// transforms, warm-starting accumulated impulses from the old manifold
// by matching ContactID, and firing BeginContact/EndContact/PreSolve on
// listener as the touching state changes.
func (c *Contact) Update(listener ContactListener) {
	old := c.manifold
	wasTouching := c.IsTouching()
	c.flags &^= contactTouching

	bodyA := c.FixtureA.Body
	bodyB := c.FixtureB.Body
	xfA := bodyA.xf
	xfB := bodyB.xf

	sensor := c.IsSensor()
	if sensor {
		sa := resolveChild(c.FixtureA, c.ChildIndexA)
		sb := resolveChild(c.FixtureB, c.ChildIndexB)
		if testOverlap(sa, xfA, sb, xfB) {
			c.flags |= contactTouching
		}
		c.manifold = shape.Manifold{}
	} else {
		sa := resolveChild(c.FixtureA, c.ChildIndexA)
		sb := resolveChild(c.FixtureB, c.ChildIndexB)
		c.manifold = collideShapes(sa, xfA, sb, xfB)
		if len(c.manifold.Points) > 0 {
			c.flags |= contactTouching
		}

		for i := range c.manifold.Points {
			mp := &c.manifold.Points[i]
			mp.NormalImpulse = 0
			mp.TangentImpulse = 0
			for _, op := range old.Points {
				if op.ID == mp.ID {
					mp.NormalImpulse = op.NormalImpulse
					mp.TangentImpulse = op.TangentImpulse
					break
				}
			}
		}
	}

	touching := c.IsTouching()
	if touching != wasTouching {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}
	if touching && !wasTouching {
		listener.BeginContact(c)
	}
	if !touching && wasTouching {
		listener.EndContact(c)
	}
	if touching && !sensor {
		listener.PreSolve(c, &old)
	}
}
