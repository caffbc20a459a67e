// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

func box(x, y, half float32) shape.AABB {
	return shape.AABB{
		LowerBound: lin.V2{X: x - half, Y: y - half},
		UpperBound: lin.V2{X: x + half, Y: y + half},
	}
}

func TestDynamicTreeCreateDestroyProxy(t *testing.T) {
	tree := NewDynamicTree()
	id := tree.CreateProxy(box(0, 0, 0.5), "a")
	if got := tree.GetUserData(id); got != "a" {
		t.Errorf("GetUserData = %v, want a", got)
	}
	if !tree.ValidateStructure() || !tree.ValidateMetrics() {
		t.Error("tree invalid after single insert")
	}
	tree.DestroyProxy(id)
	if tree.GetHeight() != 0 {
		t.Errorf("GetHeight after destroying only proxy = %d, want 0", tree.GetHeight())
	}
}

func TestDynamicTreeGrowsPastInitialCapacity(t *testing.T) {
	tree := NewDynamicTree()
	ids := make([]int32, 0, 64)
	for i := 0; i < 64; i++ {
		x := float32(i)
		ids = append(ids, tree.CreateProxy(box(x, 0, 0.4), i))
	}
	if !tree.ValidateStructure() || !tree.ValidateMetrics() {
		t.Fatal("tree invalid after growing past its initial node pool")
	}
	for i, id := range ids {
		if got := tree.GetUserData(id); got != i {
			t.Errorf("proxy %d user data = %v, want %d", id, got, i)
		}
	}
}

func TestDynamicTreeQueryFindsOverlapping(t *testing.T) {
	tree := NewDynamicTree()
	near := tree.CreateProxy(box(0, 0, 0.5), "near")
	far := tree.CreateProxy(box(100, 100, 0.5), "far")

	var found []int32
	tree.Query(box(0, 0, 1), func(id int32) bool {
		found = append(found, id)
		return true
	})

	seenNear, seenFar := false, false
	for _, id := range found {
		if id == near {
			seenNear = true
		}
		if id == far {
			seenFar = true
		}
	}
	if !seenNear {
		t.Error("query missed the overlapping proxy")
	}
	if seenFar {
		t.Error("query visited a proxy far outside the query AABB")
	}
}

func TestDynamicTreeMoveProxyReinsertsWhenOutgrown(t *testing.T) {
	tree := NewDynamicTree()
	id := tree.CreateProxy(box(0, 0, 0.5), "a")
	fatBefore := tree.GetFatAABB(id)

	moved := tree.MoveProxy(id, box(0, 0, 0.5), lin.V2Zero)
	if moved {
		t.Error("MoveProxy reinserted even though the tight AABB still fits the fat one")
	}

	moved = tree.MoveProxy(id, box(50, 50, 0.5), lin.V2{X: 10, Y: 10})
	if !moved {
		t.Error("MoveProxy did not reinsert after the proxy left its fat AABB")
	}
	if tree.GetFatAABB(id) == fatBefore {
		t.Error("fat AABB unchanged after a reinserting MoveProxy")
	}
}

func TestDynamicTreeRayCastVisitsHitProxyOnce(t *testing.T) {
	tree := NewDynamicTree()
	tree.CreateProxy(box(5, 0, 0.5), "wall")

	var hits int
	input := shape.RayCastInput{P1: lin.V2{X: -10, Y: 0}, P2: lin.V2{X: 10, Y: 0}, MaxFraction: 1}
	tree.RayCast(input, func(in shape.RayCastInput, proxyID int32) float32 {
		hits++
		return in.MaxFraction
	})
	if hits != 1 {
		t.Errorf("RayCast visited the proxy %d times, want 1", hits)
	}
}

func TestDynamicTreeShiftOrigin(t *testing.T) {
	tree := NewDynamicTree()
	id := tree.CreateProxy(box(10, 10, 0.5), "a")
	tree.ShiftOrigin(lin.V2{X: 10, Y: 10})
	got := tree.GetFatAABB(id)
	if got.LowerBound.X > 0.5 || got.LowerBound.Y > 0.5 {
		t.Errorf("fat AABB after ShiftOrigin = %+v, want centered near origin", got)
	}
}
