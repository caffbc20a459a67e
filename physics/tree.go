// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"github.com/kinetix2d/kinetix/math/lin"
	"github.com/kinetix2d/kinetix/shape"
)

const nullNode = -1

// treeNode is one node of the DynamicTree's node pool. parent aliases
// next when the node is on the free list; height -1 marks a free node.
type treeNode struct {
	aabb     shape.AABB
	userData interface{}
	parent   int32 // also "next" while free
	child1   int32
	child2   int32
	height   int32
	moved    bool
}

func (n *treeNode) isLeaf() bool { return n.child1 == nullNode }

// DynamicTree is a self-balancing AABB binary tree used as the
// broad-phase index: proxy storage plus ray/AABB queries.
type DynamicTree struct {
	root         int32
	nodes        []treeNode
	nodeCount    int32
	nodeCapacity int32
	freeList     int32
	insertionCount int32
}

// NewDynamicTree returns an empty tree with a small initial node pool.
func NewDynamicTree() *DynamicTree {
	t := &DynamicTree{root: nullNode, nodeCapacity: 16}
	t.nodes = make([]treeNode, t.nodeCapacity)
	for i := int32(0); i < t.nodeCapacity-1; i++ {
		t.nodes[i].parent = i + 1
		t.nodes[i].height = -1
	}
	t.nodes[t.nodeCapacity-1].parent = nullNode
	t.nodes[t.nodeCapacity-1].height = -1
	t.freeList = 0
	return t
}

func (t *DynamicTree) allocateNode() int32 {
	if t.freeList == nullNode {
		oldCapacity := t.nodeCapacity
		t.nodeCapacity *= 2
		grown := make([]treeNode, t.nodeCapacity)
		copy(grown, t.nodes)
		t.nodes = grown
		for i := oldCapacity; i < t.nodeCapacity-1; i++ {
			t.nodes[i].parent = i + 1
			t.nodes[i].height = -1
		}
		t.nodes[t.nodeCapacity-1].parent = nullNode
		t.nodes[t.nodeCapacity-1].height = -1
		t.freeList = oldCapacity
	}
	id := t.freeList
	t.freeList = t.nodes[id].parent
	t.nodes[id] = treeNode{parent: nullNode, child1: nullNode, child2: nullNode, height: 0}
	t.nodeCount++
	return id
}

func (t *DynamicTree) freeNode(id int32) {
	t.nodes[id].parent = t.freeList
	t.nodes[id].height = -1
	t.freeList = id
	t.nodeCount--
}

// CreateProxy inserts a fattened AABB for userData and returns its
// proxy id.
func (t *DynamicTree) CreateProxy(aabb shape.AABB, userData interface{}) int32 {
	id := t.allocateNode()
	t.nodes[id].aabb = aabb.Extend(aabbExtension)
	t.nodes[id].userData = userData
	t.nodes[id].height = 0
	t.nodes[id].moved = true
	t.insertLeaf(id)
	return id
}

// DestroyProxy removes the proxy with the given id.
func (t *DynamicTree) DestroyProxy(id int32) {
	t.removeLeaf(id)
	t.freeNode(id)
}

// MoveProxy updates the proxy's fat AABB for a new tight AABB, extended
// in the direction of displacement. Returns true if reinsertion
// occurred (the old fat AABB no longer contained the new tight AABB).
func (t *DynamicTree) MoveProxy(id int32, aabb shape.AABB, displacement lin.V2) bool {
	if t.nodes[id].aabb.Contains(aabb) {
		// still fits: only reinsert if the fat box has become absurdly
		// larger than the tight one (not modeled here, matching the common
		// simplification of always accepting a containing fat AABB).
		return false
	}
	t.removeLeaf(id)

	fat := aabb.Extend(aabbExtension)
	d := displacement.Scale(aabbMultiplier)
	if d.X < 0 {
		fat.LowerBound.X += d.X
	} else {
		fat.UpperBound.X += d.X
	}
	if d.Y < 0 {
		fat.LowerBound.Y += d.Y
	} else {
		fat.UpperBound.Y += d.Y
	}
	t.nodes[id].aabb = fat
	t.nodes[id].moved = true
	t.insertLeaf(id)
	return true
}

// TouchProxy marks a proxy as moved without changing its AABB, so it
// is revisited by the next UpdatePairs.
func (t *DynamicTree) TouchProxy(id int32) { t.nodes[id].moved = true }

// GetFatAABB returns the proxy's current fattened AABB.
func (t *DynamicTree) GetFatAABB(id int32) shape.AABB { return t.nodes[id].aabb }

// GetUserData returns the user data attached to a proxy.
func (t *DynamicTree) GetUserData(id int32) interface{} { return t.nodes[id].userData }

// WasMoved reports whether the proxy has moved since the last ClearMoved.
func (t *DynamicTree) WasMoved(id int32) bool { return t.nodes[id].moved }

// ClearMoved clears the proxy's moved flag.
func (t *DynamicTree) ClearMoved(id int32) { t.nodes[id].moved = false }

func (t *DynamicTree) insertLeaf(leaf int32) {
	t.insertionCount++
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combined := t.nodes[index].aabb.Union(leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2 * combinedArea
		inheritanceCost := 2 * (combinedArea - area)

		cost1 := t.childInsertionCost(child1, leafAABB, inheritanceCost)
		cost2 := t.childInsertionCost(child2, leafAABB, inheritanceCost)

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index
	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = leafAABB.Union(t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
	} else {
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
		t.root = newParent
	}

	index = t.nodes[leaf].parent
	for index != nullNode {
		index = t.balance(index)
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		t.nodes[index].height = 1 + maxi(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = t.nodes[child1].aabb.Union(t.nodes[child2].aabb)
		index = t.nodes[index].parent
	}
}

func (t *DynamicTree) childInsertionCost(child int32, leafAABB shape.AABB, inheritanceCost float32) float32 {
	combined := t.nodes[child].aabb.Union(leafAABB)
	if t.nodes[child].isLeaf() {
		return combined.Perimeter() + inheritanceCost
	}
	oldArea := t.nodes[child].aabb.Perimeter()
	newArea := combined.Perimeter()
	return (newArea - oldArea) + inheritanceCost
}

func (t *DynamicTree) removeLeaf(leaf int32) {
	if leaf == t.root {
		t.root = nullNode
		return
	}
	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling int32
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)

		index := grandParent
		for index != nullNode {
			index = t.balance(index)
			child1 := t.nodes[index].child1
			child2 := t.nodes[index].child2
			t.nodes[index].aabb = t.nodes[child1].aabb.Union(t.nodes[child2].aabb)
			t.nodes[index].height = 1 + maxi(t.nodes[child1].height, t.nodes[child2].height)
			index = t.nodes[index].parent
		}
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}

// balance performs a single rotation at iA if its children's heights
// differ by more than one, returning the new subtree root.
func (t *DynamicTree) balance(iA int32) int32 {
	a := &t.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}
	iB := a.child1
	iC := a.child2
	b := &t.nodes[iB]
	c := &t.nodes[iC]

	balance := c.height - b.height
	if balance > 1 {
		return t.rotate(iA, iC, iB)
	}
	if balance < -1 {
		return t.rotate(iA, iB, iC)
	}
	return iA
}

// rotate promotes iC (iHeavy) above iA, demoting iA to a child of iC
// alongside whichever of iC's children yields the better grouping.
func (t *DynamicTree) rotate(iA, iHeavy, iLight int32) int32 {
	a := &t.nodes[iA]
	heavy := &t.nodes[iHeavy]
	f := heavy.child1
	g := heavy.child2

	heavy.child1 = iA
	heavy.parent = a.parent
	a.parent = iHeavy

	if heavy.parent != nullNode {
		if t.nodes[heavy.parent].child1 == iA {
			t.nodes[heavy.parent].child1 = iHeavy
		} else {
			t.nodes[heavy.parent].child2 = iHeavy
		}
	} else {
		t.root = iHeavy
	}

	if t.nodes[f].height > t.nodes[g].height {
		heavy.child2 = f
		a.child1 = iLight
		a.child2 = g
		t.nodes[g].parent = iA
		a.aabb = t.nodes[iLight].aabb.Union(t.nodes[g].aabb)
		heavy.aabb = a.aabb.Union(t.nodes[f].aabb)
		a.height = 1 + maxi(t.nodes[iLight].height, t.nodes[g].height)
		heavy.height = 1 + maxi(a.height, t.nodes[f].height)
	} else {
		heavy.child2 = g
		a.child1 = iLight
		a.child2 = f
		t.nodes[f].parent = iA
		a.aabb = t.nodes[iLight].aabb.Union(t.nodes[f].aabb)
		heavy.aabb = a.aabb.Union(t.nodes[g].aabb)
		a.height = 1 + maxi(t.nodes[iLight].height, t.nodes[f].height)
		heavy.height = 1 + maxi(a.height, t.nodes[g].height)
	}
	return iHeavy
}

func maxi(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Query visits every leaf whose fat AABB overlaps aabb, stopping early
// if callback returns false.
func (t *DynamicTree) Query(aabb shape.AABB, callback func(proxyID int32) bool) {
	if t.root == nullNode {
		return
	}
	stack := []int32{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		node := &t.nodes[id]
		if !node.aabb.Overlaps(aabb) {
			continue
		}
		if node.isLeaf() {
			if !callback(id) {
				return
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

// RayCastCallback is invoked for every leaf whose fat AABB the segment
// crosses. Returning 0 terminates the cast, a negative value skips the
// current proxy, and a positive value becomes the new maxFraction clip.
type RayCastCallback func(input shape.RayCastInput, proxyID int32) float32

// RayCast walks the tree, narrowing the segment's maxFraction as
// callback clips it.
func (t *DynamicTree) RayCast(input shape.RayCastInput, callback RayCastCallback) {
	p1 := input.P1
	p2 := input.P2
	if p1.Aeq(p2) {
		return
	}
	r := p2.Sub(p1).Unit()
	v := lin.CrossSV(1, r)
	absV := v.Abs()

	maxFraction := input.MaxFraction
	t1 := p1
	t2 := p1.Add(p2.Sub(p1).Scale(maxFraction))
	segmentAABB := shape.AABB{LowerBound: t1.Min(t2), UpperBound: t1.Max(t2)}

	if t.root == nullNode {
		return
	}
	stack := []int32{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		node := &t.nodes[id]
		if !node.aabb.Overlaps(segmentAABB) {
			continue
		}

		c := node.aabb.Center()
		h := lin.V2{X: 0.5 * (node.aabb.UpperBound.X - node.aabb.LowerBound.X), Y: 0.5 * (node.aabb.UpperBound.Y - node.aabb.LowerBound.Y)}
		separation := lin.Abs(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0 {
			continue
		}

		if node.isLeaf() {
			subInput := shape.RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}
			f := callback(subInput, id)
			if f == 0 {
				return
			}
			if f > 0 {
				maxFraction = f
				t2 = p1.Add(p2.Sub(p1).Scale(maxFraction))
				segmentAABB = shape.AABB{LowerBound: t1.Min(t2), UpperBound: t1.Max(t2)}
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

// GetHeight returns the height of the tree (0 for an empty or single-node tree).
func (t *DynamicTree) GetHeight() int {
	if t.root == nullNode {
		return 0
	}
	return int(t.nodes[t.root].height)
}

// GetMaxBalance returns the worst per-node child-height imbalance in
// the tree, a diagnostic of how well the SAH rebalancing is keeping up.
func (t *DynamicTree) GetMaxBalance() int {
	maxBalance := int32(0)
	for i := int32(0); i < t.nodeCapacity; i++ {
		node := &t.nodes[i]
		if node.height <= 1 || node.isLeaf() {
			continue
		}
		balance := t.nodes[node.child1].height - t.nodes[node.child2].height
		if balance < 0 {
			balance = -balance
		}
		if balance > maxBalance {
			maxBalance = balance
		}
	}
	return int(maxBalance)
}

// GetAreaRatio returns the ratio of the summed perimeters of every
// allocated node (leaves included) to the root's perimeter, a
// diagnostic of tree quality
// (lower is tighter).
func (t *DynamicTree) GetAreaRatio() float32 {
	if t.root == nullNode {
		return 0
	}
	rootArea := t.nodes[t.root].aabb.Perimeter()
	var totalArea float32
	for i := int32(0); i < t.nodeCapacity; i++ {
		node := &t.nodes[i]
		if node.height < 0 {
			continue
		}
		totalArea += node.aabb.Perimeter()
	}
	return totalArea / rootArea
}

// ValidateStructure checks parent/child consistency across the tree
// (debug use).
func (t *DynamicTree) ValidateStructure() bool {
	if t.root == nullNode {
		return true
	}
	return t.validateStructureAt(t.root)
}

func (t *DynamicTree) validateStructureAt(index int32) bool {
	node := &t.nodes[index]
	if node.isLeaf() {
		return node.child1 == nullNode && node.child2 == nullNode
	}
	child1 := node.child1
	child2 := node.child2
	if t.nodes[child1].parent != index || t.nodes[child2].parent != index {
		return false
	}
	return t.validateStructureAt(child1) && t.validateStructureAt(child2)
}

// ValidateMetrics checks that each internal node's height and AABB
// match what its children imply (debug use).
func (t *DynamicTree) ValidateMetrics() bool {
	if t.root == nullNode {
		return true
	}
	return t.validateMetricsAt(t.root)
}

func (t *DynamicTree) validateMetricsAt(index int32) bool {
	node := &t.nodes[index]
	if node.isLeaf() {
		return true
	}
	child1 := node.child1
	child2 := node.child2
	height := 1 + maxi(t.nodes[child1].height, t.nodes[child2].height)
	if height != node.height {
		return false
	}
	aabb := t.nodes[child1].aabb.Union(t.nodes[child2].aabb)
	if aabb.LowerBound != node.aabb.LowerBound || aabb.UpperBound != node.aabb.UpperBound {
		return false
	}
	return t.validateMetricsAt(child1) && t.validateMetricsAt(child2)
}

// ShiftOrigin recenters every node's AABB by -newOrigin, used when a
// host application periodically re-origins a far-traveled world.
func (t *DynamicTree) ShiftOrigin(newOrigin lin.V2) {
	for i := range t.nodes {
		n := &t.nodes[i]
		n.aabb.LowerBound = n.aabb.LowerBound.Sub(newOrigin)
		n.aabb.UpperBound = n.aabb.UpperBound.Sub(newOrigin)
	}
}
