// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

type pairIDs struct{ a, b int32 }

// BroadPhase wraps a DynamicTree with a move buffer and a pair buffer,
// turning fixture movement into candidate overlapping pairs.
type BroadPhase struct {
	tree       *DynamicTree
	moveBuffer []int32
	pairBuffer []pairIDs
	queryProxy int32
}

// NewBroadPhase returns an empty broad-phase.
func NewBroadPhase() *BroadPhase {
	return &BroadPhase{tree: NewDynamicTree()}
}

// CreateProxy inserts a proxy and queues it for the next UpdatePairs.
func (bp *BroadPhase) CreateProxy(aabb shape.AABB, userData interface{}) int32 {
	id := bp.tree.CreateProxy(aabb, userData)
	bp.moveBuffer = append(bp.moveBuffer, id)
	return id
}

// DestroyProxy removes a proxy from the tree.
func (bp *BroadPhase) DestroyProxy(id int32) {
	bp.tree.DestroyProxy(id)
}

// MoveProxy updates a proxy's AABB, queuing it for the next UpdatePairs
// if the tree had to reinsert it.
func (bp *BroadPhase) MoveProxy(id int32, aabb shape.AABB, displacement lin.V2) {
	if bp.tree.MoveProxy(id, aabb, displacement) {
		bp.moveBuffer = append(bp.moveBuffer, id)
	}
}

// TouchProxy forces a proxy to be revisited by the next UpdatePairs
// without changing its AABB.
func (bp *BroadPhase) TouchProxy(id int32) {
	bp.tree.TouchProxy(id)
	bp.moveBuffer = append(bp.moveBuffer, id)
}

// GetFatAABB returns the proxy's fattened AABB.
func (bp *BroadPhase) GetFatAABB(id int32) shape.AABB { return bp.tree.GetFatAABB(id) }

// GetUserData returns the user data attached to a proxy.
func (bp *BroadPhase) GetUserData(id int32) interface{} { return bp.tree.GetUserData(id) }

// TestOverlap reports whether two proxies' fat AABBs currently overlap.
func (bp *BroadPhase) TestOverlap(idA, idB int32) bool {
	return bp.tree.GetFatAABB(idA).Overlaps(bp.tree.GetFatAABB(idB))
}

// Query visits every proxy whose fat AABB overlaps aabb.
func (bp *BroadPhase) Query(aabb shape.AABB, callback func(proxyID int32) bool) {
	bp.tree.Query(aabb, callback)
}

// RayCast casts a ray through the tree.
func (bp *BroadPhase) RayCast(input shape.RayCastInput, callback RayCastCallback) {
	bp.tree.RayCast(input, callback)
}

// PairListener receives each candidate pair discovered by UpdatePairs.
// A pair may be reported more than once (when a proxy is queued more
// than once in the move buffer); listeners must tolerate that.
type PairListener interface {
	AddPair(userDataA, userDataB interface{})
}

// UpdatePairs queries the tree around every proxy queued in the move
// buffer, builds the pair buffer, and reports every buffered pair through
// listener before clearing the move buffer and moved flags. A pair of two
// moving proxies is buffered from one side only, but the buffer is not
// otherwise deduplicated.
func (bp *BroadPhase) UpdatePairs(listener PairListener) {
	bp.pairBuffer = bp.pairBuffer[:0]

	for _, a := range bp.moveBuffer {
		bp.queryProxy = a
		fatAABB := bp.tree.GetFatAABB(a)
		bp.tree.Query(fatAABB, func(b int32) bool {
			if b == bp.queryProxy {
				return true
			}
			if bp.tree.WasMoved(b) && b > bp.queryProxy {
				// the symmetric pair will be (or was) found from b's own query.
				return true
			}
			lo, hi := bp.queryProxy, b
			if lo > hi {
				lo, hi = hi, lo
			}
			bp.pairBuffer = append(bp.pairBuffer, pairIDs{lo, hi})
			return true
		})
	}

	for _, p := range bp.pairBuffer {
		listener.AddPair(bp.tree.GetUserData(p.a), bp.tree.GetUserData(p.b))
	}

	for _, id := range bp.moveBuffer {
		bp.tree.ClearMoved(id)
	}
	bp.moveBuffer = bp.moveBuffer[:0]
}

// ShiftOrigin recenters the underlying tree.
func (bp *BroadPhase) ShiftOrigin(newOrigin lin.V2) { bp.tree.ShiftOrigin(newOrigin) }
