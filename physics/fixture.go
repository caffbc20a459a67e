// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"

	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

// Filter controls which fixture pairs are tested for collision: a pair
// passes iff either groupIndex matches and is non-zero (sign decides —
// positive always collides, negative never), or the category/mask bits
// intersect both ways.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything.
func DefaultFilter() Filter {
	return Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}
}

// ShouldCollide applies the filter rule between two fixtures' filters.
func (f Filter) ShouldCollide(other Filter) bool {
	if f.GroupIndex == other.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.MaskBits&other.CategoryBits != 0 && f.CategoryBits&other.MaskBits != 0
}

// FixtureDef describes a fixture to be attached via World.CreateFixture.
type FixtureDef struct {
	Shape               shape.Shape
	Density             float32
	Friction            float32
	Restitution         float32
	RestitutionThreshold float32
	IsSensor            bool
	Filter              Filter
}

// DefaultFixtureDef returns a FixtureDef with friction 0.2 and the
// default collision filter.
func DefaultFixtureDef(s shape.Shape) FixtureDef {
	return FixtureDef{Shape: s, Friction: 0.2, Filter: DefaultFilter()}
}

// Proxy is a broad-phase handle for one (fixture, child shape) pair:
// its fattened AABB and the tree node id backing it.
type Proxy struct {
	Fixture    *Fixture
	ChildIndex int
	AABB       shape.AABB
	treeID     int32
}

// Fixture binds a shape to a body together with material parameters,
// a collision filter, and one broad-phase Proxy per child shape.
type Fixture struct {
	Body                 *Body
	Shape                shape.Shape
	Density              float32
	Friction             float32
	Restitution          float32
	RestitutionThreshold float32
	IsSensor             bool
	Filter               Filter
	Proxies              []*Proxy
	userData             interface{}
}

// TestPoint reports whether p (world space) lies inside the fixture's shape.
func (f *Fixture) TestPoint(p lin.V2) bool {
	return f.Shape.TestPoint(f.Body.xf, p)
}

// RayCast casts a ray against one child of the fixture's shape.
func (f *Fixture) RayCast(input shape.RayCastInput, childIndex int) shape.RayCastOutput {
	return f.Shape.RayCast(input, f.Body.xf, childIndex)
}

// ComputeAABB returns the tight world-space AABB of one child of the
// fixture's shape at the body's current transform.
func (f *Fixture) ComputeAABB(childIndex int) shape.AABB {
	return f.Shape.ComputeAABB(f.Body.xf, childIndex)
}

// SetFilterData replaces the fixture's collision filter and destroys
// every contact it currently participates in, so the next Step rebuilds
// them under the new rule. Returns ErrWorldLocked if called during Step.
func (f *Fixture) SetFilterData(filter Filter) error {
	if f.Body.world.isLocked() {
		slog.Warn("physics: SetFilterData called while world locked")
		return ErrWorldLocked
	}
	f.Filter = filter
	for _, edge := range append([]*ContactEdge(nil), f.Body.contactEdges...) {
		c := edge.Contact
		if c.FixtureA == f || c.FixtureB == f {
			f.Body.world.contactManager.destroy(c)
		}
	}
	if f.Body.IsEnabled() {
		bp := f.Body.world.contactManager.BroadPhase()
		for _, p := range f.Proxies {
			bp.TouchProxy(p.treeID)
		}
	}
	return nil
}

// UserData returns the value last stored via SetUserData.
func (f *Fixture) UserData() interface{} { return f.userData }

// SetUserData attaches an arbitrary value to the fixture.
func (f *Fixture) SetUserData(v interface{}) { f.userData = v }
