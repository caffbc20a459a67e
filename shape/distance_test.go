// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
)

func TestDistanceSeparatedCircles(t *testing.T) {
	a := MakeDistanceProxy(NewCircleShape(1), 0)
	b := MakeDistanceProxy(NewCircleShape(1), 0)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 5, Y: 0}, 0)
	out := Distance(a, xfA, b, xfB)
	want := float32(3) // 5 - 1 - 1
	if lin.Abs(out.Distance-want) > 1e-3 {
		t.Errorf("Distance = %v, want %v", out.Distance, want)
	}
}

func TestDistanceTouchingBoxes(t *testing.T) {
	a := MakeDistanceProxy(NewBoxPolygon(1, 1), 0)
	b := MakeDistanceProxy(NewBoxPolygon(1, 1), 0)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 2, Y: 0}, 0)
	out := Distance(a, xfA, b, xfB)
	if lin.Abs(out.Distance) > 1e-3 {
		t.Errorf("Distance = %v, want ~0 for touching boxes", out.Distance)
	}
}

func TestDistanceOverlappingBoxes(t *testing.T) {
	a := MakeDistanceProxy(NewBoxPolygon(1, 1), 0)
	b := MakeDistanceProxy(NewBoxPolygon(1, 1), 0)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 0.5, Y: 0}, 0)
	out := Distance(a, xfA, b, xfB)
	if out.Distance != 0 {
		t.Errorf("Distance = %v, want 0 for overlapping boxes", out.Distance)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := MakeDistanceProxy(NewBoxPolygon(1, 0.5), 0)
	b := MakeDistanceProxy(NewCircleShape(0.5), 0)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 3, Y: 1}, 0)
	forward := Distance(a, xfA, b, xfB)
	backward := Distance(b, xfB, a, xfA)
	if lin.Abs(forward.Distance-backward.Distance) > 1e-3 {
		t.Errorf("Distance not symmetric: %v vs %v", forward.Distance, backward.Distance)
	}
}
