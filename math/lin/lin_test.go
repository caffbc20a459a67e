// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import (
	"fmt"
	"math"
	"testing"
)

func TestAeqmately(t *testing.T) {
	var f1 float32 = 0.0
	var f2 float32 = 0.0000001
	var f3 float32 = -0.0001
	if !Aeq(f1, f2) || Aeq(f1, f3) {
		t.Error("Aeq")
	}
}

func TestApproimatelyZero(t *testing.T) {
	var f1 float32 = 0.00000001
	var f2 float32 = -0.00000001
	var f3 float32 = -0.0001
	if !AeqZ(f1) || !AeqZ(f2) || AeqZ(f3) {
		t.Error("Aeqz")
	}
}

func TestLerp(t *testing.T) {
	if !Aeq(Lerp(10, 5, 0.5), 7.5) {
		t.Error("Lerp")
	}
}

func TestNang(t *testing.T) {
	pos450, neg450 := float32(7.8539815), float32(-7.8539815)
	pos90, neg90 := float32(1.570796), float32(-1.570796)
	if !Aeq(Nang(pos450), pos90) || !Aeq(Nang(neg450), neg90) {
		t.Error("Nang")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(20, -30, -15) != -15 || Clamp(20, 30, 60) != 30 || Clamp(20, 10, 50) != 20 {
		t.Error("Clamp")
	}
}

func TestRadDeg(t *testing.T) {
	if !Aeq(Deg(Rad(90)), 90) {
		t.Error("Rad Deg conversion")
	}
}

func TestRound(t *testing.T) {
	f1, f2 := Round(1.48, 0), Round(1.51, 0)
	if f1 != 1.0 || f2 != 2.0 {
		t.Error("Failed to round floats", f1, f2)
	}
}

func TestVec2Basics(t *testing.T) {
	a := V2{1, 2}
	b := V2{3, 4}
	if !a.Add(b).Eq(V2{4, 6}) {
		t.Error("Add")
	}
	if !b.Sub(a).Eq(V2{2, 2}) {
		t.Error("Sub")
	}
	if a.Dot(b) != 11 {
		t.Error("Dot")
	}
	if a.Cross(b) != 1*4-2*3 {
		t.Error("Cross")
	}
	if !a.Neg().Eq(V2{-1, -2}) {
		t.Error("Neg")
	}
}

func TestVec2Unit(t *testing.T) {
	v := V2{3, 4}
	u := v.Unit()
	if !Aeq(u.Len(), 1) {
		t.Error("Unit length", u.Len())
	}
}

func TestMat22SolveRoundTrip(t *testing.T) {
	m := NewMat22FromAngle(0.7)
	v := V2{2, -5}
	x := m.Solve(m.Mul(v))
	if !x.Aeq(v) {
		t.Errorf(format, fmt.Sprintf("%v", x), fmt.Sprintf("%v", v))
	}
}

func TestRotMulIdentity(t *testing.T) {
	r := NewRot(1.234)
	id := r.Mul(RotIdentity)
	if !Aeq(id.Angle(), r.Angle()) {
		t.Error("Rot identity mul")
	}
}

func TestTransformWorldLocalRoundTrip(t *testing.T) {
	tr := NewTransform(V2{1, 2}, 0.5)
	p := V2{4, -3}
	got := tr.Local(tr.World(p))
	if !got.Aeq(p) {
		t.Errorf(format, fmt.Sprintf("%v", got), fmt.Sprintf("%v", p))
	}
}

func TestSweepTransformAtEnds(t *testing.T) {
	s := Sweep{C0: V2{0, 0}, C: V2{10, 0}, A0: 0, A: HalfPi, Alpha0: 0}
	t0 := s.Transform(0)
	t1 := s.Transform(1)
	if !t0.P.Aeq(V2{0, 0}) {
		t.Error("sweep at beta=0")
	}
	if !t1.P.Aeq(V2{10, 0}) {
		t.Error("sweep at beta=1")
	}
}

func TestSweepAdvanceMonotonic(t *testing.T) {
	s := Sweep{C0: V2{0, 0}, C: V2{10, 0}, A0: 0, A: 1, Alpha0: 0}
	s.Advance(0.5)
	if s.Alpha0 != 0.5 {
		t.Error("advance did not set alpha0")
	}
	if !Aeq(s.C0.X, 5) {
		t.Error("advance did not interpolate center", s.C0.X)
	}
}

// ============================================================================
// Benchmarking

func BenchmarkAtan2(b *testing.B) {
	for cnt := 0; cnt < b.N; cnt++ {
		math.Atan2(1, 1)
	}
}

// ============================================================================
// Test helpers for the other test case files in this package.

const format = "\ngot\n%s\nwanted\n%s"
