// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// ContactManager owns the broad-phase and the live set of Contacts,
// turning candidate pairs reported by BroadPhase.UpdatePairs into
// created/destroyed/updated Contact objects.
type ContactManager struct {
	broadPhase *BroadPhase
	contacts   []*Contact
	listener   ContactListener
}

// NewContactManager returns a manager wrapping a fresh BroadPhase.
func NewContactManager(listener ContactListener) *ContactManager {
	return &ContactManager{broadPhase: NewBroadPhase(), listener: listener}
}

// AddPair implements PairListener, called once per candidate pair
// discovered by BroadPhase.UpdatePairs. Duplicate pairs, pairs already
// tracked as a Contact, pairs on the same body, filtered-out pairs and
// joint-disabled pairs are all rejected without creating a Contact.
func (cm *ContactManager) AddPair(userDataA, userDataB interface{}) {
	pa := userDataA.(*Proxy)
	pb := userDataB.(*Proxy)
	fa, fb := pa.Fixture, pb.Fixture
	bodyA, bodyB := fa.Body, fb.Body
	if bodyA == bodyB {
		return
	}

	for _, edge := range bodyB.contactEdges {
		if edge.Other != bodyA {
			continue
		}
		c := edge.Contact
		if (c.FixtureA == fa && c.FixtureB == fb && c.ChildIndexA == pa.ChildIndex && c.ChildIndexB == pb.ChildIndex) ||
			(c.FixtureA == fb && c.FixtureB == fa && c.ChildIndexA == pb.ChildIndex && c.ChildIndexB == pa.ChildIndex) {
			return // already tracked
		}
	}

	if !bodyA.ShouldCollide(bodyB) {
		return
	}
	if !fa.Filter.ShouldCollide(fb.Filter) {
		return
	}

	c := newContact(fa, pa.ChildIndex, fb, pb.ChildIndex)
	c.edgeA = &ContactEdge{Other: c.FixtureB.Body, Contact: c}
	c.edgeB = &ContactEdge{Other: c.FixtureA.Body, Contact: c}
	c.FixtureA.Body.contactEdges = append(c.FixtureA.Body.contactEdges, c.edgeA)
	c.FixtureB.Body.contactEdges = append(c.FixtureB.Body.contactEdges, c.edgeB)
	cm.contacts = append(cm.contacts, c)

	c.FixtureA.Body.SetAwake(true)
	c.FixtureB.Body.SetAwake(true)
}

// FindNewPairs drains the broad-phase move buffer into new Contacts.
func (cm *ContactManager) FindNewPairs() { cm.broadPhase.UpdatePairs(cm) }

// Collide updates every non-sleeping contact's manifold, destroying
// any contact whose fixtures no longer overlap at the broad-phase
// level or whose bodies should no longer collide.
func (cm *ContactManager) Collide() {
	kept := cm.contacts[:0]
	for _, c := range cm.contacts {
		bodyA, bodyB := c.FixtureA.Body, c.FixtureB.Body
		if !bodyA.IsAwake() && !bodyB.IsAwake() {
			kept = append(kept, c)
			continue
		}
		if !bodyA.ShouldCollide(bodyB) {
			cm.destroy(c)
			continue
		}
		overlap := false
		for _, pa := range c.FixtureA.Proxies {
			if pa.ChildIndex != c.ChildIndexA {
				continue
			}
			for _, pb := range c.FixtureB.Proxies {
				if pb.ChildIndex != c.ChildIndexB {
					continue
				}
				overlap = cm.broadPhase.TestOverlap(pa.treeID, pb.treeID)
			}
		}
		if !overlap {
			cm.destroy(c)
			continue
		}
		c.Update(cm.listener)
		kept = append(kept, c)
	}
	cm.contacts = kept
}

// destroy fires EndContact if needed, unlinks the contact from both
// bodies' edge lists, and drops it.
func (cm *ContactManager) destroy(c *Contact) {
	if c.IsTouching() {
		cm.listener.EndContact(c)
	}
	unlink := func(edges []*ContactEdge, e *ContactEdge) []*ContactEdge {
		for i, o := range edges {
			if o == e {
				return append(edges[:i], edges[i+1:]...)
			}
		}
		return edges
	}
	c.FixtureA.Body.contactEdges = unlink(c.FixtureA.Body.contactEdges, c.edgeA)
	c.FixtureB.Body.contactEdges = unlink(c.FixtureB.Body.contactEdges, c.edgeB)
	for i, o := range cm.contacts {
		if o == c {
			// copy rather than shift in place: Collide may be ranging over
			// the old backing array.
			cm.contacts = append(cm.contacts[:i:i], cm.contacts[i+1:]...)
			break
		}
	}
}

// Contacts returns the live contact set. Owned by the manager; callers
// must not retain or mutate the slice.
func (cm *ContactManager) Contacts() []*Contact { return cm.contacts }

// BroadPhase returns the manager's underlying broad-phase index.
func (cm *ContactManager) BroadPhase() *BroadPhase { return cm.broadPhase }
