// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import "testing"

func TestTriOffsetIsInjective(t *testing.T) {
	const count = 6
	seen := make(map[int]bool)
	for x := 0; x < count; x++ {
		for y := x + 1; y < count; y++ {
			off := triOffset(x, y, count)
			if seen[off] {
				t.Fatalf("triOffset(%d,%d,%d) = %d collides with an earlier pair", x, y, count, off)
			}
			seen[off] = true
		}
	}
}

func TestInteractionMatrixTestIsSymmetric(t *testing.T) {
	im := NewInteractionMatrix(4)
	im.set(1, 3)
	if !im.Test(1, 3) || !im.Test(3, 1) {
		t.Fatalf("Test should be symmetric regardless of argument order")
	}
	if im.Test(0, 1) || im.Test(2, 2) {
		t.Fatalf("unset or self pairs must report false")
	}
}

func TestBuildInteractionMatrix(t *testing.T) {
	ut, f, tt := newTestTable(t, 1024)
	lv := NewLevels()
	ctx := NewRegionCtx()
	for i := 0; i < 3; i++ {
		if _, err := lv.NewLevel(ut, ctx, f, tt); err != nil {
			t.Fatalf("NewLevel(%d): %v", i, err)
		}
	}

	// f = node(0, f-leaf, node(1, f-leaf, t-leaf)) — support {0,1}
	n1, _, err := ut.LookupOrInsert(1, f, tt, ctx)
	if err != nil {
		t.Fatalf("LookupOrInsert n1: %v", err)
	}
	n0, _, err := ut.LookupOrInsert(0, f, MakeEdge(n1, false), ctx)
	if err != nil {
		t.Fatalf("LookupOrInsert n0: %v", err)
	}

	// g = node(2, f-leaf, t-leaf) — support {2}, disjoint from f.
	n2, _, err := ut.LookupOrInsert(2, f, tt, ctx)
	if err != nil {
		t.Fatalf("LookupOrInsert n2: %v", err)
	}

	roots := []uint64{n0, n2}
	im := BuildInteractionMatrix(ut, lv, roots, 2)

	if !im.Test(0, 1) {
		t.Fatalf("variables 0 and 1 co-appear under f's root and must interact")
	}
	if im.Test(0, 2) || im.Test(1, 2) {
		t.Fatalf("variable 2 belongs to a disjoint root and must not interact with 0 or 1")
	}
}

// TestBuildInteractionMatrixSharedSubgraph covers two roots that share
// a common child: root A = node(0, F, shared), root B = node(1, F,
// shared), where shared = node(2, F, T). Both A and B must record
// variable 2 in their own support even though the second root to be
// traversed reaches `shared` only via a node the first root already
// walked — a global-visited bitmap shared across the DFS itself (as
// opposed to only gating which roots get traversed) would make the
// second root skip `shared` entirely and miss its interaction with 2.
func TestBuildInteractionMatrixSharedSubgraph(t *testing.T) {
	ut, f, tt := newTestTable(t, 1024)
	lv := NewLevels()
	ctx := NewRegionCtx()
	for i := 0; i < 3; i++ {
		if _, err := lv.NewLevel(ut, ctx, f, tt); err != nil {
			t.Fatalf("NewLevel(%d): %v", i, err)
		}
	}

	shared, _, err := ut.LookupOrInsert(2, f, tt, ctx)
	if err != nil {
		t.Fatalf("LookupOrInsert shared: %v", err)
	}
	sharedEdge := MakeEdge(shared, false)

	a, _, err := ut.LookupOrInsert(0, f, sharedEdge, ctx)
	if err != nil {
		t.Fatalf("LookupOrInsert a: %v", err)
	}
	b, _, err := ut.LookupOrInsert(1, f, sharedEdge, ctx)
	if err != nil {
		t.Fatalf("LookupOrInsert b: %v", err)
	}

	roots := []uint64{a, b}
	im := BuildInteractionMatrix(ut, lv, roots, 2)

	if !im.Test(0, 2) {
		t.Fatalf("root a's support must include variable 2 via the shared child")
	}
	if !im.Test(1, 2) {
		t.Fatalf("root b's support must include variable 2 via the shared child, even though root a reached it first")
	}
	if im.Test(0, 1) {
		t.Fatalf("variables 0 and 1 never co-occur in a single root's support and must not interact")
	}
}
