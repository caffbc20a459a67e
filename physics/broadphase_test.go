// Copyright © 2024 Kinetix Authors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "testing"

type recordingPairListener struct {
	pairs [][2]interface{}
}

func (l *recordingPairListener) AddPair(a, b interface{}) {
	l.pairs = append(l.pairs, [2]interface{}{a, b})
}

func TestBroadPhaseUpdatePairsReportsOverlap(t *testing.T) {
	bp := NewBroadPhase()
	bp.CreateProxy(box(0, 0, 0.5), "a")
	bp.CreateProxy(box(0.5, 0, 0.5), "b")

	listener := &recordingPairListener{}
	bp.UpdatePairs(listener)

	if len(listener.pairs) != 1 {
		t.Fatalf("pairs reported = %d, want 1", len(listener.pairs))
	}
	pair := listener.pairs[0]
	if !(pair[0] == "a" && pair[1] == "b" || pair[0] == "b" && pair[1] == "a") {
		t.Errorf("pair = %v, want {a,b} in either order", pair)
	}
}

func TestBroadPhaseUpdatePairsSkipsFarProxies(t *testing.T) {
	bp := NewBroadPhase()
	bp.CreateProxy(box(0, 0, 0.5), "a")
	bp.CreateProxy(box(100, 100, 0.5), "b")

	listener := &recordingPairListener{}
	bp.UpdatePairs(listener)

	if len(listener.pairs) != 0 {
		t.Errorf("pairs reported = %d, want 0 for far-apart proxies", len(listener.pairs))
	}
}

func TestBroadPhaseUpdatePairsDrainsMoveBuffer(t *testing.T) {
	bp := NewBroadPhase()
	bp.CreateProxy(box(0, 0, 0.5), "a")
	bp.CreateProxy(box(0.5, 0, 0.5), "b")

	bp.UpdatePairs(&recordingPairListener{})

	// the move buffer is now empty: a second call with no further
	// movement should report nothing.
	listener := &recordingPairListener{}
	bp.UpdatePairs(listener)
	if len(listener.pairs) != 0 {
		t.Errorf("pairs reported on second UpdatePairs = %d, want 0", len(listener.pairs))
	}
}
