// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

func circleSweep(x0, x1, y float32) lin.Sweep {
	return lin.Sweep{
		C0: lin.V2{X: x0, Y: y},
		C:  lin.V2{X: x1, Y: y},
	}
}

func TestTimeOfImpactApproachingCirclesTouch(t *testing.T) {
	circle := shape.NewCircleShape(0.5)
	proxy := shape.MakeDistanceProxy(circle, 0)

	out := TimeOfImpact(TOIInput{
		ProxyA: proxy,
		ProxyB: proxy,
		SweepA: circleSweep(-5, 5, 0),
		SweepB: circleSweep(5, -5, 0),
		TMax:   1,
	})

	if out.State != TOITouching {
		t.Fatalf("state = %v, want TOITouching", out.State)
	}
	if out.T <= 0 || out.T >= 1 {
		t.Errorf("T = %v, want strictly between 0 and 1", out.T)
	}
}

func TestTimeOfImpactNeverApproachingSeparated(t *testing.T) {
	circle := shape.NewCircleShape(0.5)
	proxy := shape.MakeDistanceProxy(circle, 0)

	out := TimeOfImpact(TOIInput{
		ProxyA: proxy,
		ProxyB: proxy,
		SweepA: circleSweep(-5, -5, 0),
		SweepB: circleSweep(5, 5, 0),
		TMax:   1,
	})

	if out.State != TOISeparated {
		t.Errorf("state = %v, want TOISeparated", out.State)
	}
}

func TestTimeOfImpactInitiallyOverlapped(t *testing.T) {
	circle := shape.NewCircleShape(0.5)
	proxy := shape.MakeDistanceProxy(circle, 0)

	out := TimeOfImpact(TOIInput{
		ProxyA: proxy,
		ProxyB: proxy,
		SweepA: circleSweep(0, 0, 0),
		SweepB: circleSweep(0, 0, 0),
		TMax:   1,
	})

	if out.State != TOIOverlapped {
		t.Errorf("state = %v, want TOIOverlapped", out.State)
	}
	if out.T != 0 {
		t.Errorf("T = %v, want 0 for an already-overlapped pair", out.T)
	}
}
