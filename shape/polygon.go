// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/kinetix2d/kinetix/math/lin"

// PolygonShape is a convex polygon of up to MaxPolygonVertices vertices,
// with a small radius "skin" so that resting contacts produce a stable
// manifold rather than flickering at the exact geometric boundary. A
// 2-vertex polygon behaves as a two-sided edge (EdgeShape builds one of
// these) with normals on both sides.
type PolygonShape struct {
	Vertices []lin.V2
	Normals  []lin.V2
	Centroid lin.V2
	Radius   float32
}

// NewBoxPolygon builds an axis-aligned box with the given half-extents
// centered at the local origin.
func NewBoxPolygon(hx, hy float32) *PolygonShape {
	return NewBoxPolygonAt(hx, hy, lin.V2Zero, 0)
}

// NewBoxPolygonAt builds a box with the given half-extents centered at
// center and rotated by angle, all in local space.
func NewBoxPolygonAt(hx, hy float32, center lin.V2, angle float32) *PolygonShape {
	verts := []lin.V2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}
	xf := lin.NewTransform(center, angle)
	for i := range verts {
		verts[i] = xf.World(verts[i])
	}
	p, _ := NewPolygonShape(verts)
	return p
}

// NewPolygonShape computes the convex hull of the given point set and
// returns the resulting polygon (vertices in CCW order, with matching
// outward-facing edge normals and the polygon's centroid).
func NewPolygonShape(points []lin.V2) (*PolygonShape, error) {
	hull := computeHull(points)
	n := len(hull)
	normals := make([]lin.V2, n)
	for i := 0; i < n; i++ {
		edge := hull[(i+1)%n].Sub(hull[i])
		normals[i] = edge.Perp().Neg().Unit() // outward normal (CW perp of CCW edge)
	}
	return &PolygonShape{
		Vertices: hull,
		Normals:  normals,
		Centroid: computeCentroid(hull),
		Radius:   PolygonRadius,
	}, nil
}

// computeHull returns the convex hull of points in counter-clockwise
// order using a simple gift-wrapping scan (point sets here are tiny,
// at most MaxPolygonVertices, so O(n^2) is plenty fast).
func computeHull(points []lin.V2) []lin.V2 {
	n := len(points)
	if n < 3 {
		return points
	}
	// find the lowest, then leftmost point to start from.
	start := 0
	for i := 1; i < n; i++ {
		if points[i].Y < points[start].Y || (points[i].Y == points[start].Y && points[i].X < points[start].X) {
			start = i
		}
	}
	hull := []lin.V2{}
	used := make([]bool, n)
	current := start
	for {
		hull = append(hull, points[current])
		used[current] = true
		next := -1
		for i := 0; i < n; i++ {
			if i == current {
				continue
			}
			if next == -1 {
				next = i
				continue
			}
			cross := points[next].Sub(points[current]).Cross(points[i].Sub(points[current]))
			if cross < 0 || (cross == 0 && points[i].Sub(points[current]).LenSq() > points[next].Sub(points[current]).LenSq()) {
				next = i
			}
		}
		current = next
		if current == start || len(hull) > MaxPolygonVertices {
			break
		}
	}
	return hull
}

func computeCentroid(verts []lin.V2) lin.V2 {
	n := len(verts)
	if n == 1 {
		return verts[0]
	}
	if n == 2 {
		return verts[0].Add(verts[1]).Scale(0.5)
	}
	center := lin.V2Zero
	var area float32
	origin := verts[0]
	const inv3 = 1.0 / 3.0
	for i := 1; i < n-1; i++ {
		e1 := verts[i].Sub(origin)
		e2 := verts[i+1].Sub(origin)
		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Scale(triArea * inv3))
	}
	if area > lin.Epsilon {
		center = center.Scale(1 / area)
	}
	return center.Add(origin)
}

func (p *PolygonShape) GetType() Type      { return Polygon }
func (p *PolygonShape) GetRadius() float32 { return p.Radius }
func (p *PolygonShape) GetChildCount() int { return 1 }

func (p *PolygonShape) ComputeAABB(xf lin.Transform, childIndex int) AABB {
	lower := xf.World(p.Vertices[0])
	upper := lower
	for _, v := range p.Vertices[1:] {
		w := xf.World(v)
		lower = lower.Min(w)
		upper = upper.Max(w)
	}
	r := lin.V2{X: p.Radius, Y: p.Radius}
	return AABB{LowerBound: lower.Sub(r), UpperBound: upper.Add(r)}
}

func (p *PolygonShape) TestPoint(xf lin.Transform, point lin.V2) bool {
	local := xf.Local(point)
	for i, n := range p.Normals {
		if n.Dot(local.Sub(p.Vertices[i])) > 0 {
			return false
		}
	}
	return true
}

func (p *PolygonShape) RayCast(input RayCastInput, xf lin.Transform, childIndex int) RayCastOutput {
	p1 := xf.LocalVec(input.P1.Sub(xf.P))
	p2 := xf.LocalVec(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	var lower, upper float32 = 0, input.MaxFraction
	index := -1
	for i, n := range p.Normals {
		numerator := n.Dot(p.Vertices[i].Sub(p1))
		denominator := n.Dot(d)
		if denominator == 0 {
			if numerator < 0 {
				return RayCastOutput{}
			}
			continue
		}
		t := numerator / denominator
		if denominator < 0 && t > lower {
			lower = t
			index = i
		} else if denominator > 0 && t < upper {
			upper = t
		}
		if upper < lower {
			return RayCastOutput{}
		}
	}
	if index >= 0 {
		return RayCastOutput{
			Hit:      true,
			Fraction: lower,
			Normal:   xf.WorldVec(p.Normals[index]),
		}
	}
	return RayCastOutput{}
}

func (p *PolygonShape) ComputeMass(density float32) MassData {
	n := len(p.Vertices)
	if n < 3 {
		// degenerate (edge) polygon: treat as a thin rod for mass purposes.
		length := p.Vertices[1].Sub(p.Vertices[0]).Len()
		mass := density * length
		center := p.Centroid
		i := mass * length * length / 12
		return MassData{Mass: mass, Center: center, I: i}
	}
	center := lin.V2Zero
	var area, i float32
	origin := p.Vertices[0]
	const inv3 = 1.0 / 3.0
	for k := 1; k < n-1; k++ {
		e1 := p.Vertices[k].Sub(origin)
		e2 := p.Vertices[k+1].Sub(origin)
		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Scale(triArea * inv3))
		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
		i += (0.25 * inv3 * d) * (intx2 + inty2)
	}
	mass := density * area
	if area > lin.Epsilon {
		center = center.Scale(1 / area)
	}
	worldCenter := center.Add(origin)
	// shift inertia from origin-relative to centroid-relative, then to local origin.
	i = density*i - mass*center.Dot(center)
	i += mass * worldCenter.Dot(worldCenter)
	return MassData{Mass: mass, Center: worldCenter, I: i}
}
