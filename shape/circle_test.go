// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
)

func TestCircleComputeAABB(t *testing.T) {
	c := NewCircleShape(1)
	xf := lin.NewTransform(lin.V2{X: 2, Y: 3}, 0)
	aabb := c.ComputeAABB(xf, 0)
	if !lin.Aeq(aabb.LowerBound.X, 1) || !lin.Aeq(aabb.LowerBound.Y, 2) {
		t.Fatalf("lower bound = %+v", aabb.LowerBound)
	}
	if !lin.Aeq(aabb.UpperBound.X, 3) || !lin.Aeq(aabb.UpperBound.Y, 4) {
		t.Fatalf("upper bound = %+v", aabb.UpperBound)
	}
}

func TestCircleTestPoint(t *testing.T) {
	c := NewCircleShape(2)
	xf := lin.TransformIdentity
	if !c.TestPoint(xf, lin.V2{X: 1, Y: 1}) {
		t.Error("point inside circle reported outside")
	}
	if c.TestPoint(xf, lin.V2{X: 5, Y: 5}) {
		t.Error("point outside circle reported inside")
	}
}

func TestCircleRayCastHit(t *testing.T) {
	c := NewCircleShape(1)
	xf := lin.TransformIdentity
	out := c.RayCast(RayCastInput{P1: lin.V2{X: -5, Y: 0}, P2: lin.V2{X: 5, Y: 0}, MaxFraction: 1}, xf, 0)
	if !out.Hit {
		t.Fatal("expected ray to hit circle")
	}
	if !lin.Aeq(out.Normal.X, -1) {
		t.Errorf("normal = %+v, want {-1, 0}", out.Normal)
	}
}

func TestCircleRayCastMiss(t *testing.T) {
	c := NewCircleShape(1)
	xf := lin.TransformIdentity
	out := c.RayCast(RayCastInput{P1: lin.V2{X: -5, Y: 5}, P2: lin.V2{X: 5, Y: 5}, MaxFraction: 1}, xf, 0)
	if out.Hit {
		t.Fatal("expected ray to miss circle")
	}
}

func TestCircleComputeMass(t *testing.T) {
	c := NewCircleShape(2)
	md := c.ComputeMass(1)
	expectedMass := lin.PI * 4
	if !lin.Aeq(md.Mass, expectedMass) {
		t.Errorf("mass = %v, want %v", md.Mass, expectedMass)
	}
	expectedI := md.Mass * 0.5 * 4
	if !lin.Aeq(md.I, expectedI) {
		t.Errorf("I = %v, want %v", md.I, expectedI)
	}
}
