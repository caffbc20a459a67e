// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package shape is the geometry collaborator the physics core depends on
// but does not own: circle, polygon, edge and chain primitives plus the
// handful of operations the core calls through an interface —
// ComputeAABB, TestPoint, RayCast, ComputeMass — and pairwise CollideX
// functions that fill in a Manifold.
//
// The algorithms here follow the well known separating-axis / clipping
// approach common to 2D rigid body engines, written in the style of the
// rest of this module (value-typed math, no hidden allocation in the hot
// path).
package shape

import "github.com/kinetix2d/kinetix/math/lin"

// Type enumerates the kinds of shape the physics core dispatches on.
// The order matches the contact registry's dispatch table.
type Type int

const (
	Circle Type = iota
	Edge
	Polygon
	Chain
	TypeCount
)

// PolygonRadius is the "skin" thickness applied to polygon and edge
// shapes so that resting contacts generate a persistent manifold
// instead of flickering at the boundary.
const PolygonRadius = 2 * LinearSlop

// LinearSlop is the core engine's allowed penetration slop. Declared
// here because shapes' default radius is derived from it.
const LinearSlop = 0.005

// MaxPolygonVertices bounds a single convex polygon.
const MaxPolygonVertices = 8

// AABB is an axis-aligned bounding box.
type AABB struct {
	LowerBound, UpperBound lin.V2
}

// Contains reports whether aabb entirely contains other.
func (aabb AABB) Contains(other AABB) bool {
	return aabb.LowerBound.X <= other.LowerBound.X &&
		aabb.LowerBound.Y <= other.LowerBound.Y &&
		other.UpperBound.X <= aabb.UpperBound.X &&
		other.UpperBound.Y <= aabb.UpperBound.Y
}

// Overlaps reports whether aabb and other intersect.
func (aabb AABB) Overlaps(other AABB) bool {
	d1x := other.LowerBound.X - aabb.UpperBound.X
	d1y := other.LowerBound.Y - aabb.UpperBound.Y
	d2x := aabb.LowerBound.X - other.UpperBound.X
	d2y := aabb.LowerBound.Y - other.UpperBound.Y
	if d1x > 0 || d1y > 0 || d2x > 0 || d2y > 0 {
		return false
	}
	return true
}

// Union returns the smallest AABB containing both aabb and other.
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		LowerBound: aabb.LowerBound.Min(other.LowerBound),
		UpperBound: aabb.UpperBound.Max(other.UpperBound),
	}
}

// Extend returns aabb expanded by r on every side.
func (aabb AABB) Extend(r float32) AABB {
	rv := lin.V2{X: r, Y: r}
	return AABB{aabb.LowerBound.Sub(rv), aabb.UpperBound.Add(rv)}
}

// Perimeter returns twice the sum of the box's width and height, used
// by the dynamic tree's SAH insertion cost.
func (aabb AABB) Perimeter() float32 {
	wx := aabb.UpperBound.X - aabb.LowerBound.X
	wy := aabb.UpperBound.Y - aabb.LowerBound.Y
	return 2 * (wx + wy)
}

// Center returns the AABB's center point.
func (aabb AABB) Center() lin.V2 {
	return lin.V2{X: 0.5 * (aabb.LowerBound.X + aabb.UpperBound.X), Y: 0.5 * (aabb.LowerBound.Y + aabb.UpperBound.Y)}
}

// MassData holds the mass, centroid and rotational inertia (about the
// shape's local origin) of a shape, needed by Body.ComputeMass.
type MassData struct {
	Mass   float32
	Center lin.V2
	I      float32 // rotational inertia about the local origin
}

// RayCastInput is a ray segment plus a fraction clip.
type RayCastInput struct {
	P1, P2      lin.V2
	MaxFraction float32
}

// RayCastOutput reports where along the input segment a shape was hit.
type RayCastOutput struct {
	Normal   lin.V2
	Fraction float32
	Hit      bool
}

// Shape is the interface the physics core depends on. Concrete shapes
// (CircleShape, PolygonShape, EdgeShape, ChainShape) implement it.
type Shape interface {
	GetType() Type
	GetRadius() float32
	GetChildCount() int
	ComputeAABB(xf lin.Transform, childIndex int) AABB
	TestPoint(xf lin.Transform, p lin.V2) bool
	RayCast(input RayCastInput, xf lin.Transform, childIndex int) RayCastOutput
	ComputeMass(density float32) MassData
}
