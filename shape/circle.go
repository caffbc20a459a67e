// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/kinetix2d/kinetix/math/lin"

// CircleShape is a disk of the given radius centered at P in local space.
type CircleShape struct {
	Radius float32
	P      lin.V2
}

// NewCircleShape builds a circle of the given radius at the local origin.
func NewCircleShape(radius float32) *CircleShape {
	return &CircleShape{Radius: radius}
}

func (c *CircleShape) GetType() Type      { return Circle }
func (c *CircleShape) GetRadius() float32 { return c.Radius }
func (c *CircleShape) GetChildCount() int { return 1 }

func (c *CircleShape) ComputeAABB(xf lin.Transform, childIndex int) AABB {
	p := xf.World(c.P)
	r := lin.V2{X: c.Radius, Y: c.Radius}
	return AABB{LowerBound: p.Sub(r), UpperBound: p.Add(r)}
}

func (c *CircleShape) TestPoint(xf lin.Transform, p lin.V2) bool {
	center := xf.World(c.P)
	return p.Sub(center).LenSq() <= c.Radius*c.Radius
}

func (c *CircleShape) RayCast(input RayCastInput, xf lin.Transform, childIndex int) RayCastOutput {
	position := xf.World(c.P)
	s := input.P1.Sub(position)
	b := s.LenSq() - c.Radius*c.Radius

	r := input.P2.Sub(input.P1)
	rr := r.LenSq()
	c2 := s.Dot(r)
	sigma := c2*c2 - rr*b
	if sigma < 0 || rr < lin.Epsilon {
		return RayCastOutput{}
	}
	t := -(c2 + lin.Sqrt(sigma))
	if 0 <= t && t <= input.MaxFraction*rr {
		t /= rr
		return RayCastOutput{
			Hit:      true,
			Fraction: t,
			Normal:   s.Add(r.Scale(t)).Unit(),
		}
	}
	return RayCastOutput{}
}

func (c *CircleShape) ComputeMass(density float32) MassData {
	mass := density * lin.PI * c.Radius * c.Radius
	// I about the local origin: I_center + m*d^2 (parallel axis theorem).
	i := mass * (0.5*c.Radius*c.Radius + c.P.LenSq())
	return MassData{Mass: mass, Center: c.P, I: i}
}
