// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

// InteractionMatrix records, for every pair of variables (x, y) with
// x < y, whether they co-appear in the support of some externally
// referenced root. VSwap and sifting use it to prune swaps that cannot
// possibly shrink the graph: if the variable being moved never
// interacts with the variable at the landing level, exchanging them is
// a no-op on size.
//
// Storage is a packed upper-triangular bitset: count*(count-1)/2 bits,
// indexed by (x, y) with x < y mapped to a triangular offset.
type InteractionMatrix struct {
	bits  *AtomicBitmap
	count int
}

// triOffset maps (x, y), x < y, to its position in the packed
// upper-triangular storage: row x starts after rows 0..x-1, each of
// length (count - 1 - row).
func triOffset(x, y, count int) int {
	return x*count - x*(x+1)/2 + (y - x - 1)
}

// NewInteractionMatrix allocates an empty matrix for `count` variables.
func NewInteractionMatrix(count int) *InteractionMatrix {
	size := 0
	if count > 1 {
		size = count * (count - 1) / 2
	}
	return &InteractionMatrix{bits: NewAtomicBitmap(size), count: count}
}

// Test reports whether x and y interact; the pair is sorted internally
// so callers need not order their arguments, and x == y is always false
// (a variable does not "interact" with itself).
func (im *InteractionMatrix) Test(x, y uint32) bool {
	if x == y {
		return false
	}
	a, b := int(x), int(y)
	if a > b {
		a, b = b, a
	}
	return im.bits.Get(triOffset(a, b, im.count))
}

func (im *InteractionMatrix) set(x, y int) {
	if x == y {
		return
	}
	a, b := x, y
	if a > b {
		a, b = b, a
	}
	im.bits.Set(triOffset(a, b, im.count))
}

// BuildInteractionMatrix runs the parallel, stop-the-world
// initialization: for every root whose global-visited bit is clear
// (so the same root index is never traversed twice), depth-first
// traverse its DAG recording the set of variables encountered in a
// per-root support bitmap, using a local-visited bitmap that is
// cleared before each root's traversal; after each traversal,
// repeatedly take the least variable still set in the support bitmap
// and mark it as interacting with every other variable still set,
// then clear it, until the support bitmap is empty.
//
// The global bitmap and the local bitmap serve different purposes and
// must not be conflated: global only gates which root indices get
// traversed at all (so a root appearing twice in roots is not
// double-counted), while local bounds a single DFS so it terminates
// on a DAG. A subgraph shared by two roots must be walked again under
// the second root — with its own fresh local bitmap — so that root's
// support bitmap still picks up every variable in it; marking nodes
// globally-visited during the walk itself (as opposed to only
// gating the root) would make the second root's support incomplete,
// understating which variables interact.
//
// roots is the set of externally-referenced node indices (the pre-scan
// VSwap/sifting uses to mark_external); workers controls how many
// goroutines share the root list. Each goroutine gets its own local
// bitmap, reused (and cleared) across the roots it processes in
// sequence — it is never shared across concurrently-processed roots.
func BuildInteractionMatrix(ut *Table, levels *Levels, roots []uint64, workers int) *InteractionMatrix {
	count := levels.Count()
	im := NewInteractionMatrix(count)
	globalVisited := NewAtomicBitmap(ut.Capacity())

	parallelChunks(len(roots), workers, func(lo, hi int) {
		support := NewBitmap(count)
		local := NewBitmap(ut.Capacity())
		for _, r := range roots[lo:hi] {
			if r == invalidIndex {
				continue
			}
			if globalVisited.TestAndSet(int(r)) {
				continue
			}
			support.ClearAll()
			local.ClearAll()
			findSupport(ut, r, local, support)
			interactUpdate(im, support)
		}
	})
	return im
}

// findSupport depth-first walks the DAG rooted at index, recording
// every variable it passes through in support. visited is local to
// this one traversal: callers must supply a bitmap cleared before each
// root and never shared across concurrently-processed roots, only
// used to stop this single DFS from revisiting a node twice.
func findSupport(ut *Table, index uint64, visited *Bitmap, support *Bitmap) {
	if index == invalidIndex {
		return
	}
	if visited.Get(int(index)) {
		return
	}
	visited.Set(int(index))
	n := ut.Node(index)
	if n.isLeaf() {
		return
	}
	support.Set(int(n.variable()))
	findSupport(ut, n.low().Index(), visited, support)
	findSupport(ut, n.high().Index(), visited, support)
}

// interactUpdate drains a per-tree support bitmap into the shared
// matrix: repeatedly take the least set variable, mark it interacting
// with every other variable still set, then clear it.
func interactUpdate(im *InteractionMatrix, support *Bitmap) {
	for i := support.First(0); i >= 0; i = support.First(0) {
		support.Clear(i)
		for j := support.First(0); j >= 0; j = support.Next(j) {
			im.set(i, j)
		}
	}
}
