// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/kinetix2d/kinetix/math/lin"

// ManifoldType distinguishes how a manifold's normal and points are to
// be interpreted when building the world-space manifold.
type ManifoldType int

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// ContactID identifies a manifold point by the shape features that
// produced it, so that warm-starting can match points across frames
// even as the manifold point count or order changes.
type ContactID struct {
	IndexA, IndexB uint8
	TypeA, TypeB   uint8
}

// Key packs the ContactID into a single comparable value.
func (id ContactID) Key() uint32 {
	return uint32(id.IndexA) | uint32(id.IndexB)<<8 | uint32(id.TypeA)<<16 | uint32(id.TypeB)<<24
}

// ManifoldPoint is one point of contact between two shapes. LocalPoint
// is expressed in the incident shape's local frame (body B's frame for
// ManifoldCircles and FaceA, body A's for FaceB).
// NormalImpulse/TangentImpulse are warm-start accumulators owned by the
// contact solver, carried here only so Contact.Update can copy them
// across narrow-phase recomputation.
type ManifoldPoint struct {
	LocalPoint      lin.V2
	NormalImpulse   float32
	TangentImpulse  float32
	ID              ContactID
}

// Manifold is the narrow-phase result for one shape pair: up to
// MaxManifoldPoints points sharing a single normal/reference point.
type Manifold struct {
	Type        ManifoldType
	LocalNormal lin.V2 // not used for Circles
	LocalPoint  lin.V2 // usage depends on Type
	Points      []ManifoldPoint
}

// MaxManifoldPoints bounds a single manifold.
const MaxManifoldPoints = 2

// WorldManifoldPoint is one contact point expressed in world space,
// ready for the contact solver.
type WorldManifoldPoint struct {
	Point      lin.V2
	Separation float32
}

// WorldManifold is a Manifold resolved into world space using the two
// bodies' current transforms and the shapes' radii.
type WorldManifold struct {
	Normal lin.V2
	Points []WorldManifoldPoint
}

// ComputeWorldManifold resolves m into world space given the two shapes'
// transforms and radii.
func ComputeWorldManifold(m *Manifold, xfA lin.Transform, radiusA float32, xfB lin.Transform, radiusB float32) WorldManifold {
	wm := WorldManifold{}
	if len(m.Points) == 0 {
		return wm
	}
	switch m.Type {
	case ManifoldCircles:
		pointA := xfA.World(m.LocalPoint)
		pointB := xfB.World(m.Points[0].LocalPoint)
		normal := lin.V2{X: 1, Y: 0}
		if pointB.Sub(pointA).Len() > lin.Epsilon {
			normal = pointB.Sub(pointA).Unit()
		}
		cA := pointA.Add(normal.Scale(radiusA))
		cB := pointB.Sub(normal.Scale(radiusB))
		wm.Normal = normal
		wm.Points = []WorldManifoldPoint{{
			Point:      cA.Add(cB).Scale(0.5),
			Separation: cB.Sub(cA).Dot(normal),
		}}
	case ManifoldFaceA:
		normal := xfA.WorldVec(m.LocalNormal)
		planePoint := xfA.World(m.LocalPoint)
		wm.Normal = normal
		wm.Points = make([]WorldManifoldPoint, len(m.Points))
		for i, mp := range m.Points {
			clipPoint := xfB.World(mp.LocalPoint)
			cA := clipPoint.Add(normal.Scale(radiusA - clipPoint.Sub(planePoint).Dot(normal)))
			cB := clipPoint.Sub(normal.Scale(radiusB))
			wm.Points[i] = WorldManifoldPoint{
				Point:      cA.Add(cB).Scale(0.5),
				Separation: cB.Sub(cA).Dot(normal),
			}
		}
	case ManifoldFaceB:
		normal := xfB.WorldVec(m.LocalNormal)
		planePoint := xfB.World(m.LocalPoint)
		wm.Normal = normal.Neg() // normal always points from A to B
		wm.Points = make([]WorldManifoldPoint, len(m.Points))
		for i, mp := range m.Points {
			clipPoint := xfA.World(mp.LocalPoint)
			cB := clipPoint.Add(normal.Scale(radiusB - clipPoint.Sub(planePoint).Dot(normal)))
			cA := clipPoint.Sub(normal.Scale(radiusA))
			wm.Points[i] = WorldManifoldPoint{
				Point:      cA.Add(cB).Scale(0.5),
				Separation: cA.Sub(cB).Dot(normal),
			}
		}
	}
	return wm
}
