// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
)

func TestNewBoxPolygonVertexCount(t *testing.T) {
	box := NewBoxPolygon(1, 2)
	if len(box.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(box.Vertices))
	}
	if len(box.Normals) != 4 {
		t.Fatalf("len(Normals) = %d, want 4", len(box.Normals))
	}
}

func TestBoxPolygonTestPoint(t *testing.T) {
	box := NewBoxPolygon(1, 1)
	xf := lin.TransformIdentity
	if !box.TestPoint(xf, lin.V2{X: 0.5, Y: 0.5}) {
		t.Error("center point reported outside box")
	}
	if box.TestPoint(xf, lin.V2{X: 2, Y: 2}) {
		t.Error("far point reported inside box")
	}
}

func TestBoxPolygonComputeAABB(t *testing.T) {
	box := NewBoxPolygon(1, 1)
	xf := lin.NewTransform(lin.V2{X: 5, Y: 0}, 0)
	aabb := box.ComputeAABB(xf, 0)
	want := AABB{
		LowerBound: lin.V2{X: 4 - box.Radius, Y: -1 - box.Radius},
		UpperBound: lin.V2{X: 6 + box.Radius, Y: 1 + box.Radius},
	}
	if !lin.Aeq(aabb.LowerBound.X, want.LowerBound.X) || !lin.Aeq(aabb.UpperBound.X, want.UpperBound.X) {
		t.Errorf("aabb = %+v, want %+v", aabb, want)
	}
}

func TestBoxPolygonComputeMass(t *testing.T) {
	box := NewBoxPolygon(1, 1)
	md := box.ComputeMass(1)
	if !lin.Aeq(md.Mass, 4) {
		t.Errorf("mass = %v, want 4", md.Mass)
	}
	if !md.Center.Aeq(lin.V2Zero) {
		t.Errorf("center = %+v, want zero", md.Center)
	}
}

func TestComputeHullOrdering(t *testing.T) {
	// a square given out of order and with a redundant interior point.
	pts := []lin.V2{
		{X: 1, Y: 1}, {X: -1, Y: -1}, {X: 0, Y: 0}, {X: -1, Y: 1}, {X: 1, Y: -1},
	}
	poly, err := NewPolygonShape(pts)
	if err != nil {
		t.Fatalf("NewPolygonShape: %v", err)
	}
	if len(poly.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4 (interior point dropped)", len(poly.Vertices))
	}
}

func TestPolygonRayCast(t *testing.T) {
	box := NewBoxPolygon(1, 1)
	xf := lin.TransformIdentity
	out := box.RayCast(RayCastInput{P1: lin.V2{X: -5, Y: 0}, P2: lin.V2{X: 5, Y: 0}, MaxFraction: 1}, xf, 0)
	if !out.Hit {
		t.Fatal("expected ray to hit box")
	}
}
