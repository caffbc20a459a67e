// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
)

func TestCollideCirclesOverlap(t *testing.T) {
	a := NewCircleShape(1)
	b := NewCircleShape(1)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 1.5, Y: 0}, 0)
	m := CollideCircles(a, xfA, b, xfB)
	if len(m.Points) != 1 {
		t.Fatalf("len(Points) = %d, want 1", len(m.Points))
	}
}

func TestCollideCirclesSeparated(t *testing.T) {
	a := NewCircleShape(1)
	b := NewCircleShape(1)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 5, Y: 0}, 0)
	m := CollideCircles(a, xfA, b, xfB)
	if len(m.Points) != 0 {
		t.Fatalf("len(Points) = %d, want 0", len(m.Points))
	}
}

func TestCollidePolygonAndCircleFaceRegion(t *testing.T) {
	box := NewBoxPolygon(1, 1)
	circle := NewCircleShape(0.5)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 1.2, Y: 0}, 0)
	m := CollidePolygonAndCircle(box, xfA, circle, xfB)
	if len(m.Points) != 1 {
		t.Fatalf("expected contact, got %d points", len(m.Points))
	}
	if m.Type != ManifoldFaceA {
		t.Errorf("Type = %v, want ManifoldFaceA", m.Type)
	}
}

func TestCollidePolygonAndCircleVertexRegion(t *testing.T) {
	box := NewBoxPolygon(1, 1)
	circle := NewCircleShape(0.5)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 1.3, Y: 1.3}, 0)
	m := CollidePolygonAndCircle(box, xfA, circle, xfB)
	if len(m.Points) != 1 {
		t.Fatalf("expected corner contact, got %d points", len(m.Points))
	}
}

func TestCollidePolygonsRestingBoxes(t *testing.T) {
	ground := NewBoxPolygon(10, 1)
	box := NewBoxPolygon(0.5, 0.5)
	xfGround := lin.NewTransform(lin.V2{X: 0, Y: -1}, 0)
	xfBox := lin.NewTransform(lin.V2{X: 0, Y: 0.49}, 0)
	m := CollidePolygons(ground, xfGround, box, xfBox)
	if len(m.Points) != 2 {
		t.Fatalf("expected a 2-point manifold for a box resting on flat ground, got %d", len(m.Points))
	}
	wm := ComputeWorldManifold(&m, xfGround, ground.Radius, xfBox, box.Radius)
	for _, p := range wm.Points {
		if p.Separation > 0 {
			t.Errorf("expected penetrating separation, got %v", p.Separation)
		}
	}
}

func TestCollidePolygonsSeparated(t *testing.T) {
	a := NewBoxPolygon(1, 1)
	b := NewBoxPolygon(1, 1)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 10, Y: 0}, 0)
	m := CollidePolygons(a, xfA, b, xfB)
	if len(m.Points) != 0 {
		t.Fatalf("len(Points) = %d, want 0", len(m.Points))
	}
}

func TestCollideEdgeAndCircle(t *testing.T) {
	ground := NewEdgeShape(lin.V2{X: -10, Y: 0}, lin.V2{X: 10, Y: 0})
	circle := NewCircleShape(0.5)
	xfA := lin.TransformIdentity
	xfB := lin.NewTransform(lin.V2{X: 0, Y: 0.3}, 0)
	m := CollideEdgeAndCircle(ground, xfA, circle, xfB)
	if len(m.Points) != 1 {
		t.Fatalf("expected circle resting on edge to collide, got %d points", len(m.Points))
	}
}
