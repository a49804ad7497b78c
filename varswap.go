// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"sync"
	"sync/atomic"
)

// VSwap exchanges the meaning of two adjacent levels ℓ and ℓ+1 in
// place, mutating every affected node in the unique table rather than
// rebuilding the graph. It runs as a three-phase pass over the whole
// table (unhash, trivial rewrite, exchange), internally parallel over
// the index space but stop-the-world with respect to every other BDD
// operation: callers must invoke it from inside ut.StopTheWorld.
type VSwap struct {
	ut      *Table
	levels  *Levels
	mrc     *MRC
	workers int
}

// NewVSwap builds a VSwap driver bound to a table, level registry and
// (optionally nil) MRC instance. With an MRC, VSwap keeps its node and
// reference counts up to date and reclaims the nodes a swap leaves
// dead; with a nil MRC that bookkeeping is skipped, which is fine for a
// bare VSwap(level) call outside of sifting.
func NewVSwap(ut *Table, levels *Levels, mrc *MRC, workers int) *VSwap {
	return &VSwap{ut: ut, levels: levels, mrc: mrc, workers: workers}
}

// varswapMark is VSwap's own scratch bitmap for phase-1/phase-2 hand-off;
// it is allocated fresh for each call and discarded afterward, never
// shared with the table's GC mark bitmap.
type varswapMark struct {
	bits *AtomicBitmap
}

// Swap exchanges the two adjacent levels `level` and `level+1`. It
// returns VarswapNotInitialised if the registry has fewer than
// level+2 levels, and otherwise runs phases 0–2, rolling back to the
// pre-swap state and returning VarswapRollback if phase 2 cannot
// complete (table full while creating a replacement node).
func (vs *VSwap) Swap(level int) VarswapResult {
	if vs.levels.Count() < level+2 {
		return VarswapNotInitialised
	}
	varLo := vs.levels.LevelToVariable(level)
	varHi := vs.levels.LevelToVariable(level + 1)

	mark := &varswapMark{bits: NewAtomicBitmap(vs.ut.Capacity())}

	vs.phase0(varLo, varHi)
	marked := vs.phase1(varLo, varHi, mark, false)

	if marked > 0 {
		res := vs.phase2(varLo, varHi, mark)
		if !res.Ok() {
			// recovery: redo phases 0+1 (unmarking) to restore pre-swap
			// state, then report rollback.
			vs.phase0(varLo, varHi)
			mark2 := &varswapMark{bits: NewAtomicBitmap(vs.ut.Capacity())}
			again := vs.phase1(varLo, varHi, mark2, true)
			if again > 0 {
				res2 := vs.phase2(varLo, varHi, mark2)
				if !res2.Ok() {
					return VarswapP2RehashAndCreateFail
				}
			}
			return VarswapRollback
		}
		vs.reclaimDead()
	}

	vs.levels.swapAdjacent(level)
	return VarswapSuccess
}

// phase0 clears the chain hash of every live internal node whose
// variable is lo or hi, leaving its data untouched. Parallel over the
// index space via parallelChunks.
func (vs *VSwap) phase0(lo, hi uint32) {
	size := vs.ut.Capacity()
	parallelChunks(size, vs.workers, func(first, end int) {
		if first < 2 {
			first = 2
		}
		for i := first; i < end; i++ {
			if !vs.ut.Occupied(uint64(i)) {
				continue
			}
			n := vs.ut.Node(uint64(i))
			if n.isLeaf() {
				continue
			}
			nvar := n.variable()
			if nvar != lo && nvar != hi {
				continue
			}
			if n.isMapNode() {
				vs.ut.ClearBucketHash(uint64(i), nvar, n.mapNext(), n.mapValue())
			} else {
				vs.ut.ClearBucketHash(uint64(i), nvar, n.low(), n.high())
			}
		}
	})
}

// phase1 re-scans every slot and classifies nodes touched by the swap:
//   - variable hi            -> becomes lo; rehash.
//   - variable lo, no child
//     depends on hi          -> becomes hi; rehash.
//   - variable lo, depends
//     on lo or hi            -> marked for phase 2; left unhashed.
//   - map-chain node at lo   -> becomes hi if the chain's successor
//     variable is > hi, otherwise marked.
//
// recovering is true when phase1 is re-run to unwind a failed phase 2:
// in that pass, a node still carrying the phase-1 mark is unmarked and
// rehashed at lo rather than re-marked.
func (vs *VSwap) phase1(lo, hi uint32, mark *varswapMark, recovering bool) int64 {
	size := vs.ut.Capacity()
	var marked int64
	parallelChunks(size, vs.workers, func(first, end int) {
		local := int64(0)
		if first < 2 {
			first = 2
		}
		for i := first; i < end; i++ {
			idx := uint64(i)
			if !vs.ut.Occupied(idx) {
				continue
			}
			n := vs.ut.Node(idx)
			if n.isLeaf() {
				continue
			}
			nvar := n.variable()

			if nvar == hi {
				vs.retagVariable(idx, lo)
				vs.ut.RehashBucket(idx)
				if vs.mrc != nil {
					vs.mrc.DecVarNodes(hi)
					vs.mrc.IncVarNodes(lo)
				}
				continue
			}
			if nvar != lo {
				continue
			}

			if recovering && mark.bits.Get(i) {
				mark.bits.Clear(i)
				vs.ut.RehashBucket(idx)
				continue
			}

			if n.isMapNode() {
				next := n.mapNext()
				if next.Index() == invalidIndex {
					vs.retagVariable(idx, hi)
					vs.ut.RehashBucket(idx)
					if vs.mrc != nil {
						vs.mrc.DecVarNodes(lo)
						vs.mrc.IncVarNodes(hi)
					}
					continue
				}
				succ := vs.ut.Node(next.Index())
				if succ.isLeaf() || succ.variable() > hi {
					vs.retagVariable(idx, hi)
					vs.ut.RehashBucket(idx)
					if vs.mrc != nil {
						vs.mrc.DecVarNodes(lo)
						vs.mrc.IncVarNodes(hi)
					}
				} else {
					mark.bits.Set(i)
					local++
				}
				continue
			}

			dependsOnSwap := false
			if li := n.low().Index(); li != invalidIndex {
				ln := vs.ut.Node(li)
				if !ln.isLeaf() && (ln.variable() == lo || ln.variable() == hi) {
					dependsOnSwap = true
				}
			}
			if !dependsOnSwap {
				if hi2 := n.high().Index(); hi2 != invalidIndex {
					hn := vs.ut.Node(hi2)
					if !hn.isLeaf() && (hn.variable() == lo || hn.variable() == hi) {
						dependsOnSwap = true
					}
				}
			}

			if dependsOnSwap {
				mark.bits.Set(i)
				local++
			} else {
				vs.retagVariable(idx, hi)
				vs.ut.RehashBucket(idx)
				if vs.mrc != nil {
					vs.mrc.DecVarNodes(lo)
					vs.mrc.IncVarNodes(hi)
				}
			}
		}
		if local != 0 {
			atomic.AddInt64(&marked, local)
		}
	})
	return marked
}

// phase2 rebuilds every node marked by phase1: for cofactors f0, f1 at
// lo and grand-cofactors at hi, it creates two replacement nodes at hi
// and overwrites the marked node in place as (lo, g0, g1).
func (vs *VSwap) phase2(lo, hi uint32, mark *varswapMark) VarswapResult {
	size := vs.ut.Capacity()
	var resultMu sync.Mutex
	result := VarswapSuccess

	setFail := func(r VarswapResult) {
		resultMu.Lock()
		if result == VarswapSuccess {
			result = r
		}
		resultMu.Unlock()
	}
	getFail := func() VarswapResult {
		resultMu.Lock()
		r := result
		resultMu.Unlock()
		return r
	}

	parallelChunks(size, vs.workers, func(first, end int) {
		ctx := NewRegionCtx()
		if first < 2 {
			first = 2
		}
		for i := first; i < end; i++ {
			if getFail() != VarswapSuccess {
				return
			}
			idx := uint64(i)
			if !vs.ut.Occupied(idx) || !mark.bits.Get(i) {
				continue
			}
			n := vs.ut.Node(idx)
			if n.isLeaf() {
				continue
			}

			if n.isMapNode() {
				next := n.mapNext()
				value := n.mapValue()
				nn := vs.ut.Node(next.Index())
				f00 := nn.mapNext()
				f01 := nn.mapValue()
				g0, created, err := vs.ut.LookupOrInsertMap(hi, f00, value, ctx)
				if err != nil {
					setFail(VarswapP2CreateFail)
					return
				}
				if vs.mrc != nil {
					if created {
						vs.mrc.IncVarNodes(hi)
						vs.countAdd(f00)
						vs.countAdd(value)
					}
					vs.countAdd(MakeEdge(g0, false))
					vs.countAdd(f01)
					vs.countDrop(next)
					vs.countDrop(value)
				}
				vs.overwriteMapNode(idx, lo, MakeEdge(g0, false), f01)
				vs.ut.RehashBucket(idx)
				continue
			}

			f0, f1 := n.low(), n.high()
			f00, f01 := vs.cofactorAt(f0, lo)
			f10, f11 := vs.cofactorAt(f1, lo)

			// a replacement whose two children are equal collapses to
			// that child instead of becoming a node.
			g0, g1 := f00, f01
			created0, created1 := false, false
			if f00 != f10 {
				g0idx, c, err0 := vs.ut.LookupOrInsert(hi, f00, f10, ctx)
				if err0 != nil {
					setFail(VarswapP2CreateFail)
					return
				}
				g0, created0 = MakeEdge(g0idx, false), c
			}
			if f01 != f11 {
				g1idx, c, err1 := vs.ut.LookupOrInsert(hi, f01, f11, ctx)
				if err1 != nil {
					setFail(VarswapP2CreateFail)
					return
				}
				g1, created1 = MakeEdge(g1idx, false), c
			}
			if vs.mrc != nil {
				if created0 {
					vs.mrc.IncVarNodes(hi)
					vs.countAdd(f00)
					vs.countAdd(f10)
				}
				if created1 {
					vs.mrc.IncVarNodes(hi)
					vs.countAdd(f01)
					vs.countAdd(f11)
				}
				vs.countAdd(g0)
				vs.countAdd(g1)
				vs.countDrop(f0)
				vs.countDrop(f1)
			}
			vs.overwriteInternal(idx, lo, g0, g1)
			vs.ut.RehashBucket(idx)
		}
	})
	return getFail()
}

// cofactorAt splits edge e on variable `at`: if e points to a node
// whose own variable is `at`, its low/high children are the two
// cofactors; otherwise e doesn't depend on `at` and both cofactors are
// e itself.
func (vs *VSwap) cofactorAt(e Edge, at uint32) (Edge, Edge) {
	idx := e.Index()
	if idx == invalidIndex {
		return e, e
	}
	n := vs.ut.Node(idx)
	if n.isLeaf() || n.variable() != at {
		return e, e
	}
	low, high := n.low(), n.high()
	if e.Complemented() {
		low, high = low.Not(), high.Not()
	}
	return low, high
}

// retagVariable overwrites a node's variable field in place without
// touching its edges; used by phase 1's trivial (no-new-node) rewrite.
func (vs *VSwap) retagVariable(idx uint64, to uint32) {
	n := vs.ut.Node(idx)
	if n.isMapNode() {
		vs.overwriteMapNode(idx, to, n.mapNext(), n.mapValue())
		return
	}
	vs.overwriteInternal(idx, to, n.low(), n.high())
}

// overwriteInternal rewrites slot idx as an internal node
// (variable, low, high) in place. Only safe to call from within a
// stop-the-world VSwap phase: no concurrent reader may observe the
// half-written state.
func (vs *VSwap) overwriteInternal(idx uint64, variable uint32, low, high Edge) {
	w1, w2 := packInternal(variable, low, high)
	vs.ut.slots[idx].word1 = w1
	vs.ut.slots[idx].word2 = w2
}

// overwriteMapNode rewrites slot idx as a map-chain node in place.
func (vs *VSwap) overwriteMapNode(idx uint64, variable uint32, next, value Edge) {
	w1, w2 := packMapNode(variable, next, value)
	vs.ut.slots[idx].word1 = w1
	vs.ut.slots[idx].word2 = w2
}

// countAdd records a newly-established reference to e's target: the
// node gains one to its internal reference count, and — if it is
// itself internal — its variable gains one to its reference total.
// Called whenever phase 2 rewires a node to point at a new child.
func (vs *VSwap) countAdd(e Edge) {
	idx := e.Index()
	if idx == invalidIndex {
		return
	}
	vs.mrc.IncNode(idx)
	n := vs.ut.Node(idx)
	if !n.isLeaf() {
		vs.mrc.IncVar(n.variable())
	}
}

// countDrop records the loss of a reference to e's target, the
// counterpart to countAdd. It only updates counters: reclaiming a
// node whose count reaches zero is deferred to reclaimDead, run once
// after every phase-2 rewrite in a swap has settled, so the parallel
// phase-2 workers never race to unlink the same slot.
func (vs *VSwap) countDrop(e Edge) {
	idx := e.Index()
	if idx == invalidIndex {
		return
	}
	n := vs.ut.Node(idx)
	if !n.isLeaf() {
		vs.mrc.DecVar(n.variable())
	}
	vs.mrc.DecNode(idx)
}

// reclaimDead sweeps the table once for internal or map-chain nodes
// the just-completed swap left with no internal reference and no
// external root either, then frees each one, cascading the reference
// drop into its own children so that a whole dead subgraph created by
// a single swap is reclaimed before the next swap runs. Run
// single-threaded, after phase 2 has fully settled every counter, so
// no node is ever examined mid-update.
func (vs *VSwap) reclaimDead() {
	if vs.mrc == nil {
		return
	}
	size := vs.ut.Capacity()
	queue := make([]uint64, 0)
	for i := 2; i < size; i++ {
		idx := uint64(i)
		if vs.ut.Occupied(idx) && vs.mrc.IsDead(idx) {
			queue = append(queue, idx)
		}
	}
	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if newlyDead := vs.free(idx); len(newlyDead) > 0 {
			queue = append(queue, newlyDead...)
		}
	}
}

// free unlinks and clears a single dead slot and drops the reference
// each of its children held on its behalf, reporting which of them
// (if any) lost their own last reference as a result, so the caller
// can queue them for freeing in turn.
func (vs *VSwap) free(idx uint64) []uint64 {
	if !vs.ut.Occupied(idx) || !vs.mrc.IsDead(idx) {
		return nil
	}
	n := vs.ut.Node(idx)
	if n.isLeaf() {
		return nil
	}
	v := n.variable()
	var c0, c1 Edge
	if n.isMapNode() {
		c0, c1 = n.mapNext(), n.mapValue()
	} else {
		c0, c1 = n.low(), n.high()
	}
	vs.ut.ClearBucketHash(idx, v, c0, c1)
	vs.ut.ClearBucketData(idx, nil)
	vs.mrc.DecVarNodes(v)

	var dead []uint64
	for _, c := range [2]Edge{c0, c1} {
		ci := c.Index()
		if ci == invalidIndex {
			continue
		}
		cn := vs.ut.Node(ci)
		if !cn.isLeaf() {
			vs.mrc.DecVar(cn.variable())
		}
		if vs.mrc.DecNodeZero(ci) && !cn.isLeaf() && !vs.mrc.IsExternal(ci) {
			dead = append(dead, ci)
		}
	}
	return dead
}
