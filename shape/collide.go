// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/kinetix2d/kinetix/math/lin"

// clipVertex is one endpoint of a clipped incident edge, carrying the
// feature id that will become the resulting manifold point's ContactID.
type clipVertex struct {
	V  lin.V2
	ID ContactID
}

// CollideCircles fills in the manifold for two circles, empty if they
// don't overlap.
func CollideCircles(circleA *CircleShape, xfA lin.Transform, circleB *CircleShape, xfB lin.Transform) Manifold {
	m := Manifold{Type: ManifoldCircles}
	pA := xfA.World(circleA.P)
	pB := xfB.World(circleB.P)
	d := pB.Sub(pA)
	radius := circleA.Radius + circleB.Radius
	if d.LenSq() > radius*radius {
		return m
	}
	m.LocalPoint = circleA.P
	m.Points = []ManifoldPoint{{LocalPoint: circleB.P}}
	return m
}

// CollidePolygonAndCircle fills in the manifold for a polygon (A) and a
// circle (B).
func CollidePolygonAndCircle(polyA *PolygonShape, xfA lin.Transform, circleB *CircleShape, xfB lin.Transform) Manifold {
	m := Manifold{}
	c := xfB.World(circleB.P)
	cLocal := xfA.Local(c)

	vertexCount := len(polyA.Vertices)
	normalIndex := 0
	separation := float32(-lin.Large)
	radius := polyA.Radius + circleB.Radius
	for i := 0; i < vertexCount; i++ {
		s := polyA.Normals[i].Dot(cLocal.Sub(polyA.Vertices[i]))
		if s > radius {
			return m
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := polyA.Vertices[normalIndex]
	v2 := polyA.Vertices[(normalIndex+1)%vertexCount]

	if separation < lin.Epsilon {
		m.Type = ManifoldFaceA
		m.LocalNormal = polyA.Normals[normalIndex]
		m.LocalPoint = v1.Add(v2).Scale(0.5)
		m.Points = []ManifoldPoint{{LocalPoint: circleB.P}}
		return m
	}

	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0:
		if cLocal.Sub(v1).LenSq() > radius*radius {
			return m
		}
		m.Type = ManifoldFaceA
		m.LocalNormal = cLocal.Sub(v1).Unit()
		m.LocalPoint = v1
	case u2 <= 0:
		if cLocal.Sub(v2).LenSq() > radius*radius {
			return m
		}
		m.Type = ManifoldFaceA
		m.LocalNormal = cLocal.Sub(v2).Unit()
		m.LocalPoint = v2
	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		s := cLocal.Sub(faceCenter).Dot(polyA.Normals[normalIndex])
		if s > radius {
			return m
		}
		m.Type = ManifoldFaceA
		m.LocalNormal = polyA.Normals[normalIndex]
		m.LocalPoint = faceCenter
	}
	m.Points = []ManifoldPoint{{LocalPoint: circleB.P}}
	return m
}

// findMaxSeparation returns the edge of poly1 (and the separation along
// its normal) that best separates poly1 from poly2 — the core of the
// separating-axis test.
func findMaxSeparation(poly1, poly2 *PolygonShape, xf1, xf2 lin.Transform) (int, float32) {
	xf := lin.MulT(xf1, xf2) // poly2's local points expressed in poly1's local frame.

	bestIndex := 0
	maxSeparation := float32(-lin.Large)
	for i, n := range poly1.Normals {
		v1 := poly1.Vertices[i]
		si := float32(lin.Large)
		for _, v2 := range poly2.Vertices {
			sv := xf.World(v2)
			s := n.Dot(sv.Sub(v1))
			if s < si {
				si = s
			}
		}
		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}
	return bestIndex, maxSeparation
}

// findIncidentEdge picks the edge of inc most anti-parallel to ref's
// reference-edge normal, returning its two endpoints in world space.
func findIncidentEdge(ref *PolygonShape, xfRef lin.Transform, edge1 int, inc *PolygonShape, xfInc lin.Transform) [2]clipVertex {
	refNormalWorld := xfRef.WorldVec(ref.Normals[edge1])
	normalInIncLocal := xfInc.LocalVec(refNormalWorld)

	index := 0
	minDot := float32(lin.Large)
	for i, n := range inc.Normals {
		d := normalInIncLocal.Dot(n)
		if d < minDot {
			minDot = d
			index = i
		}
	}
	i1 := index
	i2 := (index + 1) % len(inc.Vertices)
	return [2]clipVertex{
		{V: xfInc.World(inc.Vertices[i1]), ID: ContactID{IndexB: uint8(i1)}},
		{V: xfInc.World(inc.Vertices[i2]), ID: ContactID{IndexB: uint8(i2)}},
	}
}

// clipSegmentToLine clips the 2-point segment vIn against the half-plane
// normal.Dot(x) <= offset, recording which vertex was produced by the
// clip for the resulting ContactID (Dirk Gregorius's standard SAT clip).
func clipSegmentToLine(vIn [2]clipVertex, normal lin.V2, offset float32, clipEdge uint8) ([2]clipVertex, int) {
	var vOut [2]clipVertex
	numOut := 0
	dist0 := normal.Dot(vIn[0].V) - offset
	dist1 := normal.Dot(vIn[1].V) - offset
	if dist0 <= 0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if dist1 <= 0 {
		vOut[numOut] = vIn[1]
		numOut++
	}
	if dist0*dist1 < 0 {
		interp := dist0 / (dist0 - dist1)
		vOut[numOut] = clipVertex{
			V:  vIn[0].V.Add(vIn[1].V.Sub(vIn[0].V).Scale(interp)),
			ID: ContactID{IndexA: clipEdge, IndexB: vIn[0].ID.IndexB},
		}
		numOut++
	}
	return vOut, numOut
}

// CollidePolygons fills in the manifold for two polygons (also used for
// edge-vs-polygon and edge-vs-edge via their degenerate 2-vertex
// polygon form) using the reference-face SAT + clip algorithm.
func CollidePolygons(polyA *PolygonShape, xfA lin.Transform, polyB *PolygonShape, xfB lin.Transform) Manifold {
	m := Manifold{}
	totalRadius := polyA.Radius + polyB.Radius

	edgeA, sepA := findMaxSeparation(polyA, polyB, xfA, xfB)
	if sepA > totalRadius {
		return m
	}
	edgeB, sepB := findMaxSeparation(polyB, polyA, xfB, xfA)
	if sepB > totalRadius {
		return m
	}

	var ref, inc *PolygonShape
	var xfRef, xfInc lin.Transform
	var edge1 int
	flip := false
	const tol = 0.1 * LinearSlop
	if sepB > sepA+tol {
		ref, inc, xfRef, xfInc, edge1, flip = polyB, polyA, xfB, xfA, edgeB, true
	} else {
		ref, inc, xfRef, xfInc, edge1 = polyA, polyB, xfA, xfB, edgeA
	}

	incident := findIncidentEdge(ref, xfRef, edge1, inc, xfInc)

	iv1 := edge1
	iv2 := (edge1 + 1) % len(ref.Vertices)
	v11 := xfRef.World(ref.Vertices[iv1])
	v12 := xfRef.World(ref.Vertices[iv2])
	tangent := v12.Sub(v11).Unit()
	normal := xfRef.WorldVec(ref.Normals[edge1])

	sideOffset1 := -tangent.Dot(v11) + totalRadius
	sideOffset2 := tangent.Dot(v12) + totalRadius

	clip1, n1 := clipSegmentToLine(incident, tangent.Neg(), sideOffset1, uint8(iv1))
	if n1 < 2 {
		return m
	}
	clip2, n2 := clipSegmentToLine(clip1, tangent, sideOffset2, uint8(iv2))
	if n2 < 2 {
		return m
	}

	frontOffset := normal.Dot(v11)

	points := make([]ManifoldPoint, 0, 2)
	for i := 0; i < 2; i++ {
		separation := normal.Dot(clip2[i].V) - frontOffset
		if separation > totalRadius {
			continue
		}
		var localPoint lin.V2
		if flip {
			localPoint = xfA.Local(clip2[i].V)
		} else {
			localPoint = xfB.Local(clip2[i].V)
		}
		points = append(points, ManifoldPoint{LocalPoint: localPoint, ID: clip2[i].ID})
	}
	if len(points) == 0 {
		return m
	}

	if flip {
		m.Type = ManifoldFaceB
	} else {
		m.Type = ManifoldFaceA
	}
	m.LocalNormal = ref.Normals[edge1]
	m.LocalPoint = ref.Vertices[iv1].Add(ref.Vertices[iv2]).Scale(0.5)
	m.Points = points
	return m
}

// CollideEdgeAndCircle collides a two-sided edge with a circle by
// reusing the polygon-circle routine against the edge's 2-vertex
// polygon representation.
func CollideEdgeAndCircle(edgeA *EdgeShape, xfA lin.Transform, circleB *CircleShape, xfB lin.Transform) Manifold {
	return CollidePolygonAndCircle(edgeA.AsPolygon(), xfA, circleB, xfB)
}

// CollideEdgeAndPolygon collides a two-sided edge with a polygon by
// reusing CollidePolygons against the edge's 2-vertex polygon form.
func CollideEdgeAndPolygon(edgeA *EdgeShape, xfA lin.Transform, polyB *PolygonShape, xfB lin.Transform) Manifold {
	return CollidePolygons(edgeA.AsPolygon(), xfA, polyB, xfB)
}
