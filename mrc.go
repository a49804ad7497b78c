// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import "sync/atomic"

// saturatingMax is the ceiling a u8-saturating counter clamps to.
// "Many" is all MRC ever needs to distinguish from an exact small count,
// since the only exact values that matter are 0 (dead) and 1 (isolated).
const saturatingMax = 255

// MRC (Manual Reference Counters) replaces stop-the-world mark-sweep
// during reordering with exact per-node and per-variable counters, so
// VSwap can tell which nodes die and which survive a swap without
// re-running garbage collection. Counters are u8-saturating: once a
// count reaches saturatingMax it sticks there, since "many" and
// "saturated" are observationally identical for MRC's purposes
// (is_dead and is_isolated only ever test for exactly 0 or exactly 1).
type MRC struct {
	refNodes   []uint32 // atomic per-node internal reference count (saturating at 255)
	refVars    []uint32 // atomic per-variable internal reference total (saturating at 255)
	varNNodes  []uint32 // atomic per-variable live-node count
	extRefBits *AtomicBitmap
	isolated   int32 // atomic count of variables with refVars == 1
	total      int32 // atomic running sum of varNNodes, the live internal-node count
}

// NewMRC allocates MRC state sized for `nodeCapacity` table slots and
// `varCount` registered variables. It is ephemeral scratch, allocated at
// the start of a reordering pass and discarded at the end.
func NewMRC(nodeCapacity, varCount int) *MRC {
	return &MRC{
		refNodes:   make([]uint32, nodeCapacity),
		refVars:    make([]uint32, varCount),
		varNNodes:  make([]uint32, varCount),
		extRefBits: NewAtomicBitmap(nodeCapacity),
	}
}

func saturatingInc(p *uint32) {
	for {
		old := atomic.LoadUint32(p)
		if old >= saturatingMax {
			return
		}
		if atomic.CompareAndSwapUint32(p, old, old+1) {
			return
		}
	}
}

func saturatingDec(p *uint32) {
	for {
		old := atomic.LoadUint32(p)
		if old == 0 || old == saturatingMax {
			// 0 has nothing to subtract; a saturated counter has lost its
			// exact value and must stay "many" rather than decrement.
			return
		}
		if atomic.CompareAndSwapUint32(p, old, old-1) {
			return
		}
	}
}

// IncNode increments index's internal reference count.
func (m *MRC) IncNode(index uint64) { saturatingInc(&m.refNodes[index]) }

// DecNode decrements index's internal reference count.
func (m *MRC) DecNode(index uint64) { saturatingDec(&m.refNodes[index]) }

// DecNodeZero decrements index's internal reference count and reports
// whether this particular call was the one that brought it from 1 to
// 0 — the CAS underneath saturatingDec guarantees at most one
// concurrent caller ever observes that transition, so the result can
// be used to grant exclusive rights to reclaim the node. A counter
// that has saturated never reports a zero transition, matching
// saturatingDec's "many stays many" behaviour.
func (m *MRC) DecNodeZero(index uint64) bool {
	for {
		old := atomic.LoadUint32(&m.refNodes[index])
		if old == 0 || old == saturatingMax {
			return false
		}
		if atomic.CompareAndSwapUint32(&m.refNodes[index], old, old-1) {
			return old == 1
		}
	}
}

// RefNode returns index's current internal reference count.
func (m *MRC) RefNode(index uint64) uint32 { return atomic.LoadUint32(&m.refNodes[index]) }

// IncVar increments variable's internal reference total, updating the
// isolated-variable count when it crosses the 1/2 boundary.
func (m *MRC) IncVar(v uint32) {
	old := atomic.LoadUint32(&m.refVars[v])
	saturatingInc(&m.refVars[v])
	if old == 0 {
		atomic.AddInt32(&m.isolated, 1)
	} else if old == 1 {
		atomic.AddInt32(&m.isolated, -1)
	}
}

// DecVar decrements variable's internal reference total, updating the
// isolated-variable count symmetrically with IncVar.
func (m *MRC) DecVar(v uint32) {
	old := atomic.LoadUint32(&m.refVars[v])
	saturatingDec(&m.refVars[v])
	if old == 1 {
		atomic.AddInt32(&m.isolated, -1)
	} else if old == 2 {
		atomic.AddInt32(&m.isolated, 1)
	}
}

// RefVar returns variable's current internal reference total.
func (m *MRC) RefVar(v uint32) uint32 { return atomic.LoadUint32(&m.refVars[v]) }

// IncVarNodes increments the live-node count for variable, used by
// VSwap's phases to keep per-variable node counts current as nodes
// change variable in place.
func (m *MRC) IncVarNodes(v uint32) {
	atomic.AddUint32(&m.varNNodes[v], 1)
	atomic.AddInt32(&m.total, 1)
}

// DecVarNodes decrements the live-node count for variable.
func (m *MRC) DecVarNodes(v uint32) {
	for {
		old := atomic.LoadUint32(&m.varNNodes[v])
		if old == 0 {
			return
		}
		if atomic.CompareAndSwapUint32(&m.varNNodes[v], old, old-1) {
			atomic.AddInt32(&m.total, -1)
			return
		}
	}
}

// VarNodes returns the current live-node count for variable.
func (m *MRC) VarNodes(v uint32) uint32 { return atomic.LoadUint32(&m.varNNodes[v]) }

// NNodes returns the total live internal-node count across every
// variable — the measure sifting uses in place of raw table
// occupancy, since VSwap leaves superseded nodes occupied until they
// are reclaimed (original_source/src/sylvan_reorder_int.c's
// mrc_nnodes_get).
func (m *MRC) NNodes() int { return int(atomic.LoadInt32(&m.total)) }

// IsIsolated reports whether variable's internal reference total is
// exactly 1 — it appears in exactly one other live node's children,
// which is the condition sifting's lower bound treats specially.
func (m *MRC) IsIsolated(v uint32) bool { return atomic.LoadUint32(&m.refVars[v]) == 1 }

// IsolatedCount returns the number of variables currently isolated.
func (m *MRC) IsolatedCount() int { return int(atomic.LoadInt32(&m.isolated)) }

// IsDead reports whether index has no internal references and no
// external reference either — the condition under which a node may be
// reclaimed.
func (m *MRC) IsDead(index uint64) bool {
	return m.RefNode(index) == 0 && !m.extRefBits.Get(int(index))
}

// MarkExternal sets index's external-reference bit, used during the
// pre-reordering pass over the external root set (every BDD a caller
// holds a live reference to).
func (m *MRC) MarkExternal(index uint64) { m.extRefBits.Set(int(index)) }

// IsExternal reports whether index's external-reference bit is set.
func (m *MRC) IsExternal(index uint64) bool { return m.extRefBits.Get(int(index)) }

// VarRefInit initializes the MRC by walking every live node in `live`
// once: for each internal node, its two children each gain +1 to
// ref_nodes and to ref_vars[child.var], and the node's own variable
// gains +1 to var_nnodes. Leaves are skipped (they have no children and
// no variable).
func VarRefInit(m *MRC, ut *Table, live *IndexSet) {
	live.ForEach(func(i uint32) bool {
		n := ut.Node(uint64(i))
		if n.isLeaf() {
			return true
		}
		m.IncVarNodes(n.variable())
		for _, child := range [2]Edge{n.low(), n.high()} {
			ci := child.Index()
			cn := ut.Node(ci)
			m.IncNode(ci)
			if !cn.isLeaf() {
				m.IncVar(cn.variable())
			}
		}
		return true
	})
}
