// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package lin provides the 2D linear math library used by the physics
// simulation: vectors, 2x2 matrices, rotations, transforms and sweeps.
// Linear math operations are useful for describing and transforming
// virtual objects as well as simulating rigid body physics.
//
// Package lin is provided as part of the kinetix 2D physics engine.
package lin

// Design Notes:
//
// 1) This is a 2D math library, single precision (float32) throughout,
//    matching the numerical conventions of the solver it backs.
//     - prefer multiply over divide
//     - guard effective-mass denominators against zero at the call site
//
// 2) Unlike a 3D engine's vector library this one returns new values from
//    its arithmetic (Add, Sub, Scale, ...) rather than mutating a pointer
//    receiver in place: rigid body math reads as a chain of small value
//    expressions (impulses, anchors, Jacobians) and favors that style.

import "math"

// Various linear math constants.
const (
	PI     float32 = math.Pi
	PIx2   float32 = PI * 2
	HalfPi float32 = PIx2 * 0.25
	DegRad float32 = PIx2 / 360.0 // X degrees * DegRad = Y radians
	RadDeg float32 = 360.0 / PIx2 // Y radians * RadDeg = X degrees

	// Large is used as "practically infinite" for bounds/guard checks.
	Large float32 = math.MaxFloat32

	// Epsilon distinguishes when a float32 is close enough to a number
	// that the difference makes no practical difference.
	Epsilon float32 = 1.19209290e-7
)

// Rad converts degrees to radians.
func Rad(deg float32) float32 { return deg * DegRad }

// Deg converts radians to degrees.
func Deg(rad float32) float32 { return rad * RadDeg }

// AeqZ (~=) almost-equals-zero returns true if x is close enough to zero
// that it makes no practical difference.
func AeqZ(x float32) bool { return Abs(x) < Epsilon }

// Aeq (~=) almost-equals returns true if the difference between a and b is
// so small that it doesn't matter.
func Aeq(a, b float32) bool { return Abs(a-b) < Epsilon }

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }

// Sin returns the sine of the radian angle x.
func Sin(x float32) float32 { return float32(math.Sin(float64(x))) }

// Cos returns the cosine of the radian angle x.
func Cos(x float32) float32 { return float32(math.Cos(float64(x))) }

// Atan2 returns the arc tangent of y/x, using the signs of the two to
// determine the quadrant of the returned angle.
func Atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }

// Lerp returns the linear interpolation of a to b by the given ratio.
func Lerp(a, b, ratio float32) float32 { return (b-a)*ratio + a }

// Max returns the larger of a and b.
func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Clamp returns a scalar value (one of: s, lb, ub) guaranteed to be within
// the range given by lower bound lb and upper bound ub.
func Clamp(s, lb, ub float32) float32 {
	switch {
	case s < lb:
		return lb
	case s > ub:
		return ub
	}
	return s
}

// Nang (normalize angle) ensures a rotation angle in radians is within the
// range [-PI, PI].
func Nang(radians float32) float32 {
	radians = float32(math.Mod(float64(radians), float64(PIx2)))
	switch {
	case radians < -PI:
		return radians + PIx2
	case radians > PI:
		return radians - PIx2
	}
	return radians
}

// Round returns x rounded to prec decimal digits.
func Round(val float32, prec int) float32 {
	pow := float32(math.Pow(10, float64(prec)))
	intermed := val * pow
	if intermed < 0.0 {
		intermed -= 0.5
	} else {
		intermed += 0.5
	}
	return float32(int64(intermed)) / pow
}

// AbsMax returns the index (0-3) of the largest absolute value among
// the 4 given values.
func AbsMax(a0, a1, a2, a3 float32) int {
	maxIndex := 0
	maxVal := Abs(a0)
	if Abs(a1) > maxVal {
		maxIndex, maxVal = 1, Abs(a1)
	}
	if Abs(a2) > maxVal {
		maxIndex, maxVal = 2, Abs(a2)
	}
	if Abs(a3) > maxVal {
		maxIndex = 3
	}
	return maxIndex
}
