// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Rot represents a 2D rotation as a sin/cos pair rather than an angle,
// so that repeated composition doesn't require trigonometric calls.
// This replaces the 3D engine's quaternion for the 2D case.
type Rot struct {
	S float32 // sin(angle)
	C float32 // cos(angle)
}

// RotIdentity is the zero rotation.
var RotIdentity = Rot{0, 1}

// NewRot builds a Rot from an angle in radians.
func NewRot(angle float32) Rot { return Rot{Sin(angle), Cos(angle)} }

// Angle returns the angle in radians represented by r.
func (r Rot) Angle() float32 { return Atan2(r.S, r.C) }

// XAxis returns the rotated local x-axis.
func (r Rot) XAxis() V2 { return V2{r.C, r.S} }

// YAxis returns the rotated local y-axis.
func (r Rot) YAxis() V2 { return V2{-r.S, r.C} }

// Mul returns the composition q*r (apply r, then q).
func (q Rot) Mul(r Rot) Rot {
	return Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

// MulT returns the composition transpose(q)*r.
func (q Rot) MulT(r Rot) Rot {
	return Rot{
		S: q.C*r.S - q.S*r.C,
		C: q.C*r.C + q.S*r.S,
	}
}

// MulVec2 rotates v by r.
func (r Rot) MulVec2(v V2) V2 {
	return V2{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

// MulTVec2 rotates v by the inverse of r.
func (r Rot) MulTVec2(v V2) V2 {
	return V2{r.C*v.X + r.S*v.Y, -r.S*v.X + r.C*v.Y}
}
