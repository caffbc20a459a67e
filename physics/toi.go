// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

// TOIState classifies the outcome of a TimeOfImpact computation.
type TOIState int

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

// TOIOutput is the result of TimeOfImpact: State and, when Touching,
// the time fraction T at which the shapes first touch.
type TOIOutput struct {
	State TOIState
	T     float32
}

// TOIInput bundles the two shape proxies and their sweeps for a
// conservative-advancement query, plus the target separation the
// proxies' radii already bake in.
type TOIInput struct {
	ProxyA, ProxyB shape.DistanceProxy
	SweepA, SweepB lin.Sweep
	TMax           float32
}

// sepAxisType mirrors the three ways a SeparationFunction's witness
// points can be interpreted, matching the cases the simplex returned
// by GJK distance can take.
type sepAxisType int

const (
	sepPoints sepAxisType = iota
	sepFaceA
	sepFaceB
)

// separationFunction evaluates the signed separation along a fixed
// axis (chosen once from the GJK simplex at t=0) as the two sweeps
// advance, letting the outer TimeOfImpact loop conservatively bound
// how far they can advance before that separation could reach zero.
type separationFunction struct {
	proxyA, proxyB shape.DistanceProxy
	sweepA, sweepB lin.Sweep
	axisType       sepAxisType
	localPoint     lin.V2
	axis           lin.V2
}

func makeSeparationFunction(cache *shape.Simplex, proxyA shape.DistanceProxy, sweepA lin.Sweep, proxyB shape.DistanceProxy, sweepB lin.Sweep, t1 float32) separationFunction {
	f := separationFunction{proxyA: proxyA, proxyB: proxyB, sweepA: sweepA, sweepB: sweepB}
	count := cache.Count()
	xfA := sweepA.Transform(t1)
	xfB := sweepB.Transform(t1)

	if count == 1 {
		f.axisType = sepPoints
		localPointA := proxyA.Vertices[cache.IndexA(0)]
		localPointB := proxyB.Vertices[cache.IndexB(0)]
		pointA := xfA.World(localPointA)
		pointB := xfB.World(localPointB)
		f.axis = pointB.Sub(pointA).Unit()
		return f
	}

	if cache.IndexA(0) == cache.IndexA(1) {
		// two points on proxy B, one on proxy A: face on B.
		f.axisType = sepFaceB
		localPointB1 := proxyB.Vertices[cache.IndexB(0)]
		localPointB2 := proxyB.Vertices[cache.IndexB(1)]
		f.axis = localPointB2.Sub(localPointB1).Perp().Unit()
		normal := xfB.WorldVec(f.axis)
		f.localPoint = localPointB1.Add(localPointB2).Scale(0.5)
		pointB := xfB.World(f.localPoint)

		localPointA := proxyA.Vertices[cache.IndexA(0)]
		pointA := xfA.World(localPointA)
		if pointA.Sub(pointB).Dot(normal) < 0 {
			f.axis = f.axis.Neg()
		}
		return f
	}

	f.axisType = sepFaceA
	localPointA1 := proxyA.Vertices[cache.IndexA(0)]
	localPointA2 := proxyA.Vertices[cache.IndexA(1)]
	f.axis = localPointA2.Sub(localPointA1).Perp().Unit()
	normal := xfA.WorldVec(f.axis)
	f.localPoint = localPointA1.Add(localPointA2).Scale(0.5)
	pointA := xfA.World(f.localPoint)

	localPointB := proxyB.Vertices[cache.IndexB(0)]
	pointB := xfB.World(localPointB)
	if pointB.Sub(pointA).Dot(normal) < 0 {
		f.axis = f.axis.Neg()
	}
	return f
}

// findMinSeparation returns the minimum separation at time t along the
// fixed axis, together with the supporting vertex indices, by finding
// the support points of each proxy against +/- the axis.
func (f *separationFunction) findMinSeparation(t float32) (separation float32, indexA, indexB int) {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.axisType {
	case sepPoints:
		axisA := xfA.LocalVec(f.axis)
		axisB := xfB.LocalVec(f.axis.Neg())
		indexA = f.proxyA.Support(axisA)
		indexB = f.proxyB.Support(axisB)
		pointA := xfA.World(f.proxyA.Vertices[indexA])
		pointB := xfB.World(f.proxyB.Vertices[indexB])
		return pointB.Sub(pointA).Dot(f.axis), indexA, indexB

	case sepFaceA:
		normal := xfA.WorldVec(f.axis)
		pointA := xfA.World(f.localPoint)
		axisB := xfB.LocalVec(normal.Neg())
		indexB = f.proxyB.Support(axisB)
		pointB := xfB.World(f.proxyB.Vertices[indexB])
		return pointB.Sub(pointA).Dot(normal), -1, indexB

	default: // sepFaceB
		normal := xfB.WorldVec(f.axis)
		pointB := xfB.World(f.localPoint)
		axisA := xfA.LocalVec(normal.Neg())
		indexA = f.proxyA.Support(axisA)
		pointA := xfA.World(f.proxyA.Vertices[indexA])
		return pointA.Sub(pointB).Dot(normal), indexA, -1
	}
}

// evaluate returns the separation at time t for the specific support
// pairing (indexA, indexB) found by findMinSeparation, used by the
// root finder once it has fixed which vertex pair is closest.
func (f *separationFunction) evaluate(indexA, indexB int, t float32) float32 {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.axisType {
	case sepPoints:
		pointA := xfA.World(f.proxyA.Vertices[indexA])
		pointB := xfB.World(f.proxyB.Vertices[indexB])
		return pointB.Sub(pointA).Dot(f.axis)
	case sepFaceA:
		normal := xfA.WorldVec(f.axis)
		pointA := xfA.World(f.localPoint)
		pointB := xfB.World(f.proxyB.Vertices[indexB])
		return pointB.Sub(pointA).Dot(normal)
	default:
		normal := xfB.WorldVec(f.axis)
		pointB := xfB.World(f.localPoint)
		pointA := xfA.World(f.proxyA.Vertices[indexA])
		return pointA.Sub(pointB).Dot(normal)
	}
}

// TimeOfImpact computes the first time in [0, input.TMax] at which the
// two swept, radius-inflated proxies come within target separation of
// touching, using conservative advancement: repeatedly find the GJK
// distance at the current time estimate, bound how far the sweeps can
// advance before the fixed-axis separation could close that gap, and
// root-find the exact crossing within that bound.
func TimeOfImpact(input TOIInput) TOIOutput {
	const maxIterations = 20
	const maxRootIterations = 50

	proxyA, proxyB := input.ProxyA, input.ProxyB
	sweepA, sweepB := input.SweepA, input.SweepB
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax
	totalRadius := proxyA.Radius + proxyB.Radius
	target := lin.Max(linearSlop, totalRadius-3*linearSlop)
	tolerance := float32(0.25 * linearSlop)

	// target already includes the radii, so the GJK distance is measured
	// between the core shapes.
	coreA, coreB := proxyA, proxyB
	coreA.Radius, coreB.Radius = 0, 0

	t1 := float32(0)
	output := TOIOutput{State: TOIUnknown, T: tMax}

	for iter := 0; ; iter++ {
		xfA := sweepA.Transform(t1)
		xfB := sweepB.Transform(t1)
		distOut := shape.Distance(coreA, xfA, coreB, xfB)

		if distOut.Distance <= 0 {
			output.State = TOIOverlapped
			output.T = 0
			break
		}
		if distOut.Distance < target+tolerance {
			output.State = TOITouching
			output.T = t1
			break
		}

		fn := makeSeparationFunction(&distOut.Simplex, proxyA, sweepA, proxyB, sweepB, t1)

		done := false
		t2 := tMax
		for pushIter := 0; pushIter < maxIterations; pushIter++ {
			s2, indexA, indexB := fn.findMinSeparation(t2)
			if s2 > target+tolerance {
				output.State = TOISeparated
				output.T = tMax
				done = true
				break
			}
			if s2 > target-tolerance {
				t1 = t2
				break
			}

			s1 := fn.evaluate(indexA, indexB, t1)
			if s1 < target-tolerance {
				output.State = TOIFailed
				output.T = t1
				done = true
				break
			}
			if s1 <= target+tolerance {
				output.State = TOITouching
				output.T = t1
				done = true
				break
			}

			a1, a2 := t1, t2
			rootFound := false
			for rootIter := 0; rootIter < maxRootIterations; rootIter++ {
				var t float32
				if rootIter&1 != 0 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				s := fn.evaluate(indexA, indexB, t)
				if lin.Abs(s-target) < tolerance {
					t2 = t
					rootFound = true
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
			}
			if !rootFound {
				t2 = 0.5 * (a1 + a2)
			}
		}

		if done {
			break
		}
		if iter == maxIterations {
			output.State = TOIFailed
			output.T = t1
			break
		}
	}
	return output
}
