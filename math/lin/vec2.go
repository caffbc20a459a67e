// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// V2 is a 2 element vector. This can also be used as a point.
type V2 struct {
	X float32
	Y float32
}

// V2Zero is the zero vector.
var V2Zero = V2{0, 0}

// Eq (==) returns true if each element in v has the same value as a.
func (v V2) Eq(a V2) bool { return v.X == a.X && v.Y == a.Y }

// Aeq (~=) almost-equals returns true if each element in v is essentially
// the same value as the corresponding element in a.
func (v V2) Aeq(a V2) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) }

// AeqZ (~=) almost-equals-zero returns true if the square length of v is
// close enough to zero that it makes no difference.
func (v V2) AeqZ() bool { return v.Dot(v) < Epsilon*Epsilon }

// Add (+) returns v + a.
func (v V2) Add(a V2) V2 { return V2{v.X + a.X, v.Y + a.Y} }

// Sub (-) returns v - a.
func (v V2) Sub(a V2) V2 { return V2{v.X - a.X, v.Y - a.Y} }

// Scale (*) returns v scaled by s.
func (v V2) Scale(s float32) V2 { return V2{v.X * s, v.Y * s} }

// Neg (-v) returns the negation of v.
func (v V2) Neg() V2 { return V2{-v.X, -v.Y} }

// Dot (.) returns the dot product of v and a.
func (v V2) Dot(a V2) float32 { return v.X*a.X + v.Y*a.Y }

// Cross (x) returns the 2D cross product of v and a, a scalar equal to
// the Z component of the 3D cross product of (v.X, v.Y, 0) x (a.X, a.Y, 0).
func (v V2) Cross(a V2) float32 { return v.X*a.Y - v.Y*a.X }

// CrossVS returns the 2D cross product of a vector and a scalar: v x s.
// Equivalent to rotating v by -90 degrees and scaling by s.
func CrossVS(v V2, s float32) V2 { return V2{s * v.Y, -s * v.X} }

// CrossSV returns the 2D cross product of a scalar and a vector: s x v.
// Equivalent to rotating v by +90 degrees and scaling by s.
func CrossSV(s float32, v V2) V2 { return V2{-s * v.Y, s * v.X} }

// Perp returns v rotated 90 degrees counter-clockwise.
func (v V2) Perp() V2 { return V2{-v.Y, v.X} }

// Len returns the length (magnitude) of v.
func (v V2) Len() float32 { return Sqrt(v.Dot(v)) }

// LenSq returns the squared length of v, avoiding the square root.
func (v V2) LenSq() float32 { return v.Dot(v) }

// Distance returns the distance between points v and a.
func (v V2) Distance(a V2) float32 { return v.Sub(a).Len() }

// DistanceSq returns the squared distance between points v and a.
func (v V2) DistanceSq(a V2) float32 { return v.Sub(a).LenSq() }

// Unit returns v normalized to unit length. The zero vector is returned
// unchanged (its length is already below Epsilon).
func (v V2) Unit() V2 {
	length := v.Len()
	if length < Epsilon {
		return v
	}
	invLength := 1.0 / length
	return V2{v.X * invLength, v.Y * invLength}
}

// Min returns the component-wise minimum of v and a.
func (v V2) Min(a V2) V2 { return V2{Min(v.X, a.X), Min(v.Y, a.Y)} }

// Max returns the component-wise maximum of v and a.
func (v V2) Max(a V2) V2 { return V2{Max(v.X, a.X), Max(v.Y, a.Y)} }

// Abs returns the component-wise absolute value of v.
func (v V2) Abs() V2 { return V2{Abs(v.X), Abs(v.Y)} }

// Lerp returns the linear interpolation between v and a by ratio t.
func (v V2) Lerp(a V2, t float32) V2 { return v.Add(a.Sub(v).Scale(t)) }

// Mat22 is a 2x2 matrix stored by columns, matching the box2d convention:
//
//	| Ex.X  Ey.X |
//	| Ex.Y  Ey.Y |
type Mat22 struct {
	Ex V2
	Ey V2
}

// Mat22Identity is the 2x2 identity matrix.
var Mat22Identity = Mat22{V2{1, 0}, V2{0, 1}}

// NewMat22FromCols builds a matrix from its two column vectors.
func NewMat22FromCols(ex, ey V2) Mat22 { return Mat22{ex, ey} }

// NewMat22FromAngle builds a rotation matrix for the given angle.
func NewMat22FromAngle(angle float32) Mat22 {
	c, s := Cos(angle), Sin(angle)
	return Mat22{V2{c, s}, V2{-s, c}}
}

// Mul returns the matrix-vector product m*v.
func (m Mat22) Mul(v V2) V2 {
	return V2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

// MulT returns the matrix-vector product transpose(m)*v.
func (m Mat22) MulT(v V2) V2 {
	return V2{v.Dot(m.Ex), v.Dot(m.Ey)}
}

// MulM returns the matrix product m*n.
func (m Mat22) MulM(n Mat22) Mat22 {
	return Mat22{m.Mul(n.Ex), m.Mul(n.Ey)}
}

// Add returns m + n, element-wise.
func (m Mat22) Add(n Mat22) Mat22 {
	return Mat22{m.Ex.Add(n.Ex), m.Ey.Add(n.Ey)}
}

// Det returns the determinant of m.
func (m Mat22) Det() float32 { return m.Ex.X*m.Ey.Y - m.Ey.X*m.Ex.Y }

// Inverse returns the inverse of m. If m is singular the zero matrix is
// returned; callers that rely on effective-mass matrices must guard
// against this at the call site.
func (m Mat22) Inverse() Mat22 {
	det := m.Det()
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22{
		V2{det * m.Ey.Y, -det * m.Ex.Y},
		V2{-det * m.Ey.X, det * m.Ex.X},
	}
}

// Solve solves m*x = b for x using Cramer's rule, returning the zero
// vector if m is singular.
func (m Mat22) Solve(b V2) V2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return V2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}
