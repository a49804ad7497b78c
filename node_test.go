// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import "testing"

func TestEdgeRoundTrip(t *testing.T) {
	e := MakeEdge(42, false)
	if e.Index() != 42 || e.Complemented() {
		t.Fatalf("got index=%d complemented=%v, want 42/false", e.Index(), e.Complemented())
	}
	c := e.Not()
	if c.Index() != 42 || !c.Complemented() {
		t.Fatalf("Not() changed the index or failed to flip the complement bit")
	}
	if c.Not() != e {
		t.Fatalf("Not() is not its own inverse")
	}
}

func TestPackInternalRoundTrip(t *testing.T) {
	low := MakeEdge(1, false)
	high := MakeEdge(1, true)
	w1, w2 := packInternal(7, low, high)
	n := Node{word1: w1, word2: w2}
	if n.isLeaf() || n.isMapNode() {
		t.Fatalf("internal node misclassified as leaf/map")
	}
	if n.variable() != 7 {
		t.Fatalf("variable() = %d, want 7", n.variable())
	}
	if n.low() != low || n.high() != high {
		t.Fatalf("low/high did not round-trip: got %v/%v, want %v/%v", n.low(), n.high(), low, high)
	}
}

func TestPackMapNodeRoundTrip(t *testing.T) {
	next := MakeEdge(5, false)
	value := MakeEdge(9, true)
	w1, w2 := packMapNode(3, next, value)
	n := Node{word1: w1, word2: w2}
	if !n.isMapNode() || n.isLeaf() {
		t.Fatalf("map node misclassified")
	}
	if n.mapNext() != next || n.mapValue() != value {
		t.Fatalf("mapNext/mapValue did not round-trip")
	}
	if !n.sameMapNode(3, next, value) {
		t.Fatalf("sameMapNode rejected its own fields")
	}
	if n.sameTriple(3, next, value) {
		t.Fatalf("sameTriple must not match a map node, even with identical fields")
	}
}
