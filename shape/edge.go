// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/kinetix2d/kinetix/math/lin"

// EdgeShape is a single line segment, typically used for static ground
// and walls. It is represented internally as a degenerate 2-vertex
// PolygonShape so that the polygon collision and clipping routines
// (CollidePolygons) serve both without duplicating the SAT/clip logic.
type EdgeShape struct {
	V1, V2 lin.V2
	poly   *PolygonShape
}

// NewEdgeShape builds an edge between v1 and v2.
func NewEdgeShape(v1, v2 lin.V2) *EdgeShape {
	normal := v2.Sub(v1).Perp().Neg().Unit()
	return &EdgeShape{
		V1: v1, V2: v2,
		poly: &PolygonShape{
			Vertices: []lin.V2{v1, v2},
			Normals:  []lin.V2{normal, normal.Neg()},
			Centroid: v1.Add(v2).Scale(0.5),
			Radius:   PolygonRadius,
		},
	}
}

// AsPolygon exposes the edge's degenerate two-sided polygon
// representation, consumed by CollideEdgeAndCircle/CollideEdgeAndPolygon.
func (e *EdgeShape) AsPolygon() *PolygonShape { return e.poly }

func (e *EdgeShape) GetType() Type      { return Edge }
func (e *EdgeShape) GetRadius() float32 { return e.poly.Radius }
func (e *EdgeShape) GetChildCount() int { return 1 }

func (e *EdgeShape) ComputeAABB(xf lin.Transform, childIndex int) AABB {
	return e.poly.ComputeAABB(xf, childIndex)
}

func (e *EdgeShape) TestPoint(xf lin.Transform, p lin.V2) bool {
	// a segment has no interior; treat as a near-zero thickness test.
	local := xf.Local(p)
	d := e.V2.Sub(e.V1)
	t := lin.Clamp(local.Sub(e.V1).Dot(d)/lin.Max(d.LenSq(), lin.Epsilon), 0, 1)
	closest := e.V1.Add(d.Scale(t))
	return local.Sub(closest).LenSq() <= e.poly.Radius*e.poly.Radius
}

func (e *EdgeShape) RayCast(input RayCastInput, xf lin.Transform, childIndex int) RayCastOutput {
	return e.poly.RayCast(input, xf, childIndex)
}

func (e *EdgeShape) ComputeMass(density float32) MassData {
	return e.poly.ComputeMass(density)
}

// ChainShape is a sequence of connected edges, typically used for
// static terrain. Each child index is one edge segment.
type ChainShape struct {
	Vertices []lin.V2
	Loop     bool
}

// NewChainShape builds a chain from consecutive vertices.
func NewChainShape(vertices []lin.V2, loop bool) *ChainShape {
	return &ChainShape{Vertices: vertices, Loop: loop}
}

func (c *ChainShape) GetType() Type      { return Chain }
func (c *ChainShape) GetRadius() float32 { return PolygonRadius }

func (c *ChainShape) GetChildCount() int {
	if c.Loop {
		return len(c.Vertices)
	}
	if len(c.Vertices) < 2 {
		return 0
	}
	return len(c.Vertices) - 1
}

func (c *ChainShape) edge(childIndex int) *EdgeShape {
	v1 := c.Vertices[childIndex]
	v2 := c.Vertices[(childIndex+1)%len(c.Vertices)]
	return NewEdgeShape(v1, v2)
}

// Child returns the EdgeShape for one segment of the chain, letting
// narrow-phase dispatch treat a chain exactly like a one-off edge.
func (c *ChainShape) Child(childIndex int) *EdgeShape { return c.edge(childIndex) }

func (c *ChainShape) ComputeAABB(xf lin.Transform, childIndex int) AABB {
	return c.edge(childIndex).ComputeAABB(xf, 0)
}

func (c *ChainShape) TestPoint(xf lin.Transform, p lin.V2) bool { return false }

func (c *ChainShape) RayCast(input RayCastInput, xf lin.Transform, childIndex int) RayCastOutput {
	return c.edge(childIndex).RayCast(input, xf, 0)
}

func (c *ChainShape) ComputeMass(density float32) MassData {
	// chains are intended for static geometry; zero mass contribution.
	return MassData{}
}
