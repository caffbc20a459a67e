// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Transform represents a body's position and orientation.
type Transform struct {
	P V2
	Q Rot
}

// TransformIdentity is the identity transform.
var TransformIdentity = Transform{V2Zero, RotIdentity}

// NewTransform builds a transform from a position and angle.
func NewTransform(p V2, angle float32) Transform {
	return Transform{P: p, Q: NewRot(angle)}
}

// World converts a point in the transform's local space to world space.
// World(Local(p)) == p for any transform.
func (t Transform) World(localPoint V2) V2 {
	return t.Q.MulVec2(localPoint).Add(t.P)
}

// Local converts a point in world space to the transform's local space.
func (t Transform) Local(worldPoint V2) V2 {
	return t.Q.MulTVec2(worldPoint.Sub(t.P))
}

// WorldVec rotates (but does not translate) a local direction into world space.
func (t Transform) WorldVec(localVec V2) V2 { return t.Q.MulVec2(localVec) }

// LocalVec rotates (but does not translate) a world direction into local space.
func (t Transform) LocalVec(worldVec V2) V2 { return t.Q.MulTVec2(worldVec) }

// Mul composes two transforms: applying Mul(a,b) to a point is the same
// as applying b then a.
func Mul(a, b Transform) Transform {
	return Transform{
		Q: a.Q.Mul(b.Q),
		P: a.Q.MulVec2(b.P).Add(a.P),
	}
}

// MulT composes the inverse of a with b: transform b into a's local frame.
func MulT(a, b Transform) Transform {
	return Transform{
		Q: a.Q.MulT(b.Q),
		P: a.Q.MulTVec2(b.P.Sub(a.P)),
	}
}
