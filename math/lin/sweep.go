// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// Sweep describes the motion of a body's center of mass over a single
// step, used by continuous collision detection to interpolate between
// the pose at the start of the step (c0, a0) and the current pose (c, a).
// Alpha0 is the time fraction in [0, 1) that the sweep has already been
// advanced to by a previous TOI sub-step.
type Sweep struct {
	LocalCenter V2 // local center of mass
	C0, C       V2 // center world positions
	A0, A       float32
	Alpha0      float32
}

// Transform returns the interpolated world transform at fraction beta
// between (c0, a0) and (c, a): beta=0 is the start of the step, beta=1
// is the current pose.
func (s Sweep) Transform(beta float32) Transform {
	c := s.C0.Lerp(s.C, beta)
	a := Lerp(s.A0, s.A, beta)
	q := NewRot(a)
	// p is the origin (not center of mass) in world space.
	p := c.Sub(q.MulVec2(s.LocalCenter))
	return Transform{P: p, Q: q}
}

// GetTransform returns the transform at the sweep's current pose (beta=1).
func (s Sweep) GetTransform() Transform { return s.Transform(1) }

// Advance moves c0/a0 forward to time alpha, which must lie in [Alpha0, 1].
// The fraction of the remaining interval to advance by is normalized so
// that repeated partial advances compose correctly.
func (s *Sweep) Advance(alpha float32) {
	if s.Alpha0 >= 1 {
		return
	}
	beta := (alpha - s.Alpha0) / (1 - s.Alpha0)
	s.C0 = s.C0.Lerp(s.C, beta)
	s.A0 = Lerp(s.A0, s.A, beta)
	s.Alpha0 = alpha
}

// Normalize re-winds A0/A by a multiple of 2*PI so that A0 lies in
// [0, 2*PI), keeping the pair well conditioned for repeated sweep
// advancement (box2d-rs b2_body.rs sweep normalization).
func (s *Sweep) Normalize() {
	d := PIx2 * float32(math.Floor(float64(s.A0)/float64(PIx2)))
	s.A0 -= d
	s.A -= d
}
