// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"sort"
	"time"
)

// SiftBudget bounds a sifting pass: the numeric limits and termination
// hook that keep the search from running away on a pathological graph.
type SiftBudget struct {
	MaxSwap     int           // per-variable cap on VSwap calls
	MaxVar      int           // cap on how many variables get sifted at all
	MaxGrowth   float64       // abandon a direction once the lower bound reaches current size*MaxGrowth
	TimeLimit   time.Duration // 0 disables the wall-clock check
	Terminate   func() bool   // optional early-stop hook, nil to disable
	SizeCutoff  int           // variables whose level holds fewer nodes than this are skipped entirely
}

// Sifter runs Rudell-style sifting: each candidate variable is tried at
// every reachable level via VSwap, tracking the level that produced the
// smallest graph, then moved back there.
type Sifter struct {
	ut       *Table
	levels   *Levels
	mrc      *MRC
	interact *InteractionMatrix
	vswap    *VSwap
	budget   SiftBudget
	progress func(size int)

	startTime time.Time
	swapCount int
}

// NewSifter builds a sifting engine bound to already-initialized MRC
// and interaction-matrix state (built by the reordering controller
// immediately before calling Run). progress, if non-nil, is invoked
// with the new live size every time a swap brings it below the smallest
// size seen so far while sifting the current variable; pass
// nil to run sifting without a progress callback.
func NewSifter(ut *Table, levels *Levels, mrc *MRC, interact *InteractionMatrix, vswap *VSwap, budget SiftBudget, progress func(size int)) *Sifter {
	return &Sifter{ut: ut, levels: levels, mrc: mrc, interact: interact, vswap: vswap, budget: budget, progress: progress}
}

// Run sifts every eligible variable once, in heaviest-level-first
// order, and returns the total number of VSwap calls performed.
func (s *Sifter) Run() int {
	s.startTime = time.Now()
	s.swapCount = 0

	order := s.variableOrder()
	if s.budget.MaxVar > 0 && len(order) > s.budget.MaxVar {
		order = order[:s.budget.MaxVar]
	}
	for _, v := range order {
		if s.exceededBudget() {
			break
		}
		s.siftOne(v)
	}
	return s.swapCount
}

// variableOrder snapshots each level's current live-node count,
// discards levels below SizeCutoff, and sorts the remainder
// descending so the heaviest levels are sifted first.
func (s *Sifter) variableOrder() []uint32 {
	type levelCount struct {
		variable uint32
		nnodes   uint32
	}
	n := s.levels.Count()
	counts := make([]levelCount, 0, n)
	for level := 0; level < n; level++ {
		v := s.levels.LevelToVariable(level)
		nn := uint32(0)
		if s.mrc != nil {
			nn = s.mrc.VarNodes(v)
		}
		if int(nn) < s.budget.SizeCutoff {
			continue
		}
		counts = append(counts, levelCount{variable: v, nnodes: nn})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].nnodes > counts[j].nnodes })

	out := make([]uint32, len(counts))
	for i, c := range counts {
		out[i] = c.variable
	}
	return out
}

func (s *Sifter) exceededBudget() bool {
	if s.budget.TimeLimit > 0 && time.Since(s.startTime) > s.budget.TimeLimit {
		return true
	}
	if s.budget.Terminate != nil && s.budget.Terminate() {
		return true
	}
	return false
}

// siftOne performs bounded sifting for a single variable: it moves the
// variable down and up the order (direction depending on its starting
// level relative to the median), tracking the level at which the graph
// was smallest, then siftbacks to that level.
func (s *Sifter) siftOne(variable uint32) {
	startLevel := s.levels.VariableToLevel(variable)
	median := s.levels.Count() / 2
	currentSize := s.liveSize()
	bestSize := currentSize
	bestLevel := startLevel

	track := func(level int) {
		sz := s.liveSize()
		if sz < bestSize && s.progress != nil {
			s.progress(sz)
		}
		if sz <= bestSize {
			bestSize = sz
			bestLevel = level
		}
	}

	if startLevel < median {
		level := s.siftDirection(variable, startLevel, +1, &currentSize, track)
		s.siftDirection(variable, level, -1, &currentSize, track)
	} else {
		level := s.siftDirection(variable, startLevel, -1, &currentSize, track)
		s.siftDirection(variable, level, +1, &currentSize, track)
	}

	s.siftBack(variable, bestLevel)
}

// siftDirection repeatedly swaps `variable` one level in `dir`
// (+1 = toward higher levels, -1 = toward lower) while the interaction
// matrix and MRC lower bound stays under the max-growth cutoff, the
// per-variable swap budget remains, and no termination condition has
// fired. It returns the level the variable ends up at.
func (s *Sifter) siftDirection(variable uint32, level int, dir int, currentSize *int, track func(level int)) int {
	localSwaps := 0
	for {
		next := level + dir
		if next < 0 || next >= s.levels.Count() {
			break
		}
		if s.budget.MaxSwap > 0 && localSwaps >= s.budget.MaxSwap {
			break
		}
		if s.exceededBudget() {
			break
		}
		if !s.boundAllowsContinue(variable, level, dir, *currentSize) {
			break
		}

		swapLevel := level
		if dir < 0 {
			swapLevel = level - 1
		}
		res := s.vswap.Swap(swapLevel)
		s.swapCount++
		localSwaps++
		if !res.Ok() {
			break
		}
		level = next
		*currentSize = s.liveSize()
		track(level)
	}
	return level
}

// boundAllowsContinue computes the lower bound on graph size reachable
// by continuing to move `variable` in direction `dir` from `level`,
// using MRC per-variable node counts and the interaction matrix: start
// from current_size - isolated_count and, for every interacting
// variable along the remaining candidate range, subtract its
// (live-node-count - isolation) contribution. Continuing is allowed
// while current_size - potential_drop stays under
// current_size*MaxGrowth; the best size seen so far is not consulted.
func (s *Sifter) boundAllowsContinue(variable uint32, level, dir, currentSize int) bool {
	if s.mrc == nil || s.interact == nil {
		return true
	}
	bound := currentSize - s.mrc.IsolatedCount()
	next := level + dir
	for l := next; l >= 0 && l < s.levels.Count(); l += dir {
		v := s.levels.LevelToVariable(l)
		if !s.interact.Test(variable, v) {
			continue
		}
		contribution := int(s.mrc.VarNodes(v))
		if s.mrc.IsIsolated(v) {
			contribution--
		}
		bound -= contribution
	}
	if s.budget.MaxGrowth <= 0 {
		return true
	}
	return float64(bound) < float64(currentSize)*s.budget.MaxGrowth
}

// siftBack moves `variable` back to `target` level via adjacent swaps,
// used once a direction pair has finished to restore the
// smallest-seen position.
func (s *Sifter) siftBack(variable uint32, target int) {
	for {
		cur := s.levels.VariableToLevel(variable)
		if cur == target {
			return
		}
		if cur < target {
			s.vswap.Swap(cur)
			s.swapCount++
		} else {
			s.vswap.Swap(cur - 1)
			s.swapCount++
		}
	}
}

// liveSize returns the graph size sifting is trying to minimize. It is
// read from MRC's per-variable live-node totals rather than raw table
// occupancy: VSwap leaves superseded nodes occupied until reclaimDead
// sweeps them, so occ.Count() alone cannot tell a swap that shrank the
// graph from one that didn't. With no MRC (a bare Sifter outside of a
// reordering pass) occupancy is the only measure available.
func (s *Sifter) liveSize() int {
	if s.mrc != nil {
		return s.mrc.NNodes() + 2
	}
	return s.ut.occ.Count()
}
