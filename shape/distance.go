// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/kinetix2d/kinetix/math/lin"

// DistanceProxy is a shape reduced to the vertex set GJK needs: a convex
// point cloud plus a skin radius. TimeOfImpact builds one per swept body.
type DistanceProxy struct {
	Vertices []lin.V2
	Radius   float32
}

// MakeDistanceProxy reduces a Shape's given child to a DistanceProxy.
func MakeDistanceProxy(s Shape, childIndex int) DistanceProxy {
	switch sh := s.(type) {
	case *CircleShape:
		return DistanceProxy{Vertices: []lin.V2{sh.P}, Radius: sh.Radius}
	case *PolygonShape:
		return DistanceProxy{Vertices: sh.Vertices, Radius: sh.Radius}
	case *EdgeShape:
		p := sh.AsPolygon()
		return DistanceProxy{Vertices: p.Vertices, Radius: p.Radius}
	case *ChainShape:
		e := sh.edge(childIndex)
		return DistanceProxy{Vertices: e.poly.Vertices, Radius: e.poly.Radius}
	}
	return DistanceProxy{}
}

// Support returns the index of the vertex farthest in direction d.
func (p DistanceProxy) Support(d lin.V2) int {
	best := 0
	bestValue := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		v := p.Vertices[i].Dot(d)
		if v > bestValue {
			bestValue = v
			best = i
		}
	}
	return best
}

// simplexVertex is one support point pair in the GJK simplex: wA/wB are
// the witness points on each shape (world space), w is their difference,
// a is the barycentric weight assigned by the most recent solve.
type simplexVertex struct {
	wA, wB         lin.V2
	w              lin.V2
	a              float32
	indexA, indexB int
}

// Simplex is the up-to-3-vertex working set GJK narrows toward the
// closest pair of points between two convex proxies. Once resolved, its
// vertices are also the witness simplex a SeparationFunction builds
// from: 1 vertex gives a Points axis, 2 vertices give a Face axis.
type Simplex struct {
	v     [3]simplexVertex
	count int
}

// Count returns the number of vertices in the resolved simplex.
func (s *Simplex) Count() int { return s.count }

// IndexA returns the shape-A vertex index of simplex vertex i.
func (s *Simplex) IndexA(i int) int { return s.v[i].indexA }

// IndexB returns the shape-B vertex index of simplex vertex i.
func (s *Simplex) IndexB(i int) int { return s.v[i].indexB }

func makeSimplexVertex(proxyA DistanceProxy, xfA lin.Transform, indexA int, proxyB DistanceProxy, xfB lin.Transform, indexB int) simplexVertex {
	wA := xfA.World(proxyA.Vertices[indexA])
	wB := xfB.World(proxyB.Vertices[indexB])
	return simplexVertex{wA: wA, wB: wB, w: wB.Sub(wA), indexA: indexA, indexB: indexB}
}

func (s *Simplex) solve2() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	e12 := w2.Sub(w1)

	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}
	d12_1 := w2.Dot(e12)
	if d12_1 <= 0 {
		s.v[1].a = 1
		s.v[0] = s.v[1]
		s.count = 1
		return
	}
	inv := 1.0 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

func (s *Simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := w2.Sub(w1)
	w1e12 := w1.Dot(e12)
	w2e12 := w2.Dot(e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	e13 := w3.Sub(w1)
	w1e13 := w1.Dot(e13)
	w3e13 := w3.Dot(e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	e23 := w3.Sub(w2)
	w2e23 := w2.Dot(e23)
	w3e23 := w3.Dot(e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	n123 := e12.Cross(e13)
	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	switch {
	case d12_2 <= 0 && d13_2 <= 0:
		s.v[0].a = 1
		s.count = 1
	case d12_1 > 0 && d12_2 > 0 && d123_3 <= 0:
		inv := 1.0 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
	case d13_1 > 0 && d13_2 > 0 && d123_2 <= 0:
		inv := 1.0 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[2].a = d13_2 * inv
		s.v[1] = s.v[2]
		s.count = 2
	case d12_1 <= 0 && d23_2 <= 0:
		s.v[1].a = 1
		s.v[0] = s.v[1]
		s.count = 1
	case d13_1 <= 0 && d23_1 <= 0:
		s.v[2].a = 1
		s.v[0] = s.v[2]
		s.count = 1
	case d23_1 > 0 && d23_2 > 0 && d123_1 <= 0:
		inv := 1.0 / (d23_1 + d23_2)
		s.v[1].a = d23_1 * inv
		s.v[2].a = d23_2 * inv
		s.v[0] = s.v[1]
		s.v[1] = s.v[2]
		s.count = 2
	default:
		inv := 1.0 / (d123_1 + d123_2 + d123_3)
		s.v[0].a = d123_1 * inv
		s.v[1].a = d123_2 * inv
		s.v[2].a = d123_3 * inv
		s.count = 3
	}
}

func (s *Simplex) searchDirection() lin.V2 {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e := s.v[1].w.Sub(s.v[0].w)
		sgn := e.Cross(s.v[0].w.Neg())
		if sgn > 0 {
			return lin.CrossSV(1, e)
		}
		return lin.CrossVS(e, 1)
	default:
		return lin.V2Zero
	}
}

func (s *Simplex) closestPoints() (lin.V2, lin.V2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA := s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a))
		pB := s.v[0].wB.Scale(s.v[0].a).Add(s.v[1].wB.Scale(s.v[1].a))
		return pA, pB
	default:
		pA := s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a)).Add(s.v[2].wA.Scale(s.v[2].a))
		return pA, pA
	}
}

// DistanceOutput is the result of Distance: the closest witness points
// on each proxy (inflated by their radii), the gap between them, and the
// resolved simplex (for SeparationFunction construction in TOI).
type DistanceOutput struct {
	PointA, PointB lin.V2
	Distance       float32
	Simplex        Simplex
}

// Distance computes the minimum distance between two convex proxies
// (and the closest points realizing it) using GJK, along with the
// witness simplex that produced it.
func Distance(proxyA DistanceProxy, xfA lin.Transform, proxyB DistanceProxy, xfB lin.Transform) DistanceOutput {
	var simplex Simplex
	simplex.count = 1
	simplex.v[0] = makeSimplexVertex(proxyA, xfA, 0, proxyB, xfB, 0)

	var saveA, saveB [3]int
	const maxIters = 20
	for iter := 0; iter < maxIters; iter++ {
		saveCount := simplex.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = simplex.v[i].indexA
			saveB[i] = simplex.v[i].indexB
		}

		switch simplex.count {
		case 2:
			simplex.solve2()
		case 3:
			simplex.solve3()
		}

		if simplex.count == 3 {
			break // origin enclosed by the simplex: the shapes overlap.
		}

		d := simplex.searchDirection()
		if d.LenSq() < lin.Epsilon*lin.Epsilon {
			break
		}

		vertex := &simplex.v[simplex.count]
		vertex.indexA = proxyA.Support(xfA.LocalVec(d.Neg()))
		vertex.wA = xfA.World(proxyA.Vertices[vertex.indexA])
		vertex.indexB = proxyB.Support(xfB.LocalVec(d))
		vertex.wB = xfB.World(proxyB.Vertices[vertex.indexB])
		vertex.w = vertex.wB.Sub(vertex.wA)

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.indexA == saveA[i] && vertex.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}
		simplex.count++
	}

	pointA, pointB := simplex.closestPoints()
	dist := pointA.Distance(pointB)

	rA, rB := proxyA.Radius, proxyB.Radius
	if dist > rA+rB && dist > lin.Epsilon {
		dist -= rA + rB
		n := pointB.Sub(pointA).Unit()
		pointA = pointA.Add(n.Scale(rA))
		pointB = pointB.Sub(n.Scale(rB))
	} else {
		mid := pointA.Add(pointB).Scale(0.5)
		pointA, pointB = mid, mid
		dist = 0
	}

	return DistanceOutput{PointA: pointA, PointB: pointB, Distance: dist, Simplex: simplex}
}
