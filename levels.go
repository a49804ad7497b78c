// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

// Levels is the level↔variable permutation registry. Variables are
// identified by the order they were registered in (new_level is
// append-only); levels are positions in the current variable order,
// which reordering is free to permute. A registered level's
// representative node is the Boolean function "this variable, as-is":
// node(variable, false-leaf, true-leaf).
type Levels struct {
	table           []Edge   // table[level] = representative edge for that level
	levelToVariable []uint32 // permutation: level -> variable
	variableToLevel []uint32 // inverse permutation: variable -> level
}

// NewLevels returns an empty level registry.
func NewLevels() *Levels {
	return &Levels{}
}

// Count returns the number of registered levels.
func (lv *Levels) Count() int { return len(lv.table) }

// NewLevel appends a new level at the identity position (its variable
// equals its level, count before the call), builds the representative
// node node(variable, false, true) in ut, and returns its edge.
func (lv *Levels) NewLevel(ut *Table, ctx *RegionCtx, falseLeaf, trueLeaf Edge) (Edge, error) {
	variable := uint32(len(lv.table))
	idx, _, err := ut.LookupOrInsert(variable, falseLeaf, trueLeaf, ctx)
	if err != nil {
		return 0, err
	}
	e := MakeEdge(idx, false)
	lv.table = append(lv.table, e)
	lv.levelToVariable = append(lv.levelToVariable, variable)
	lv.variableToLevel = append(lv.variableToLevel, variable)
	return e, nil
}

// Ithlevel returns the current representative edge for a level (subject
// to reordering: the edge returned for a given level can change after a
// swap touches it). Out-of-range levels return the zero Edge.
func (lv *Levels) Ithlevel(level int) Edge {
	if level < 0 || level >= len(lv.table) {
		return 0
	}
	return lv.table[level]
}

// LevelToVariable returns the variable currently occupying a level.
// Lookups beyond Count return the identity (level itself), matching the
// registry's append-only growth.
func (lv *Levels) LevelToVariable(level int) uint32 {
	if level < 0 {
		return 0
	}
	if level >= len(lv.levelToVariable) {
		return uint32(level)
	}
	return lv.levelToVariable[level]
}

// VariableToLevel returns the level a variable currently occupies.
// Lookups beyond Count return the identity.
func (lv *Levels) VariableToLevel(variable uint32) int {
	if int(variable) >= len(lv.variableToLevel) {
		return int(variable)
	}
	return int(lv.variableToLevel[variable])
}

// swapAdjacent exchanges the registry bookkeeping for levels l and l+1
// after VSwap has exchanged their meaning in the unique table: the
// variable that was at level l is now at l+1 and vice versa, and
// table[l]/table[l+1] must be refreshed to whatever representative
// edges VSwap produced (if any custom representative bookkeeping is
// needed — by default the identity representative node(var,F,T) doesn't
// move, only its level label does).
func (lv *Levels) swapAdjacent(level int) {
	v0 := lv.levelToVariable[level]
	v1 := lv.levelToVariable[level+1]
	lv.levelToVariable[level], lv.levelToVariable[level+1] = v1, v0
	lv.variableToLevel[v0], lv.variableToLevel[v1] = level+1, level
	lv.table[level], lv.table[level+1] = lv.table[level+1], lv.table[level]
}

// Permute realises perm (a permutation of variables, indexed by target
// level) via a sequence of adjacent VSwaps driven by a caller-supplied
// swapper, bubbling each variable toward its target position. It
// returns on the first VSwap failure, leaving the registry in whatever
// state that swap's rollback produced.
//
// swapper must perform VSwap(level) — swapping the variables currently
// at levels `level` and `level+1` — and report the outcome; Permute
// itself only decides which adjacent swaps to issue and does not touch
// the unique table directly.
func (lv *Levels) Permute(perm []uint32, swapper func(level int) VarswapResult) VarswapResult {
	n := len(lv.table)
	if len(perm) != n {
		return VarswapRollback
	}
	// bubble each target variable into place, left to right: find where
	// perm[level] currently sits and walk it down via adjacent swaps.
	for level := 0; level < n; level++ {
		target := perm[level]
		cur := lv.VariableToLevel(target)
		for cur > level {
			res := swapper(cur - 1)
			if !res.Ok() {
				return res
			}
			cur--
		}
	}
	return VarswapSuccess
}

// MarkRepresentatives marks every level's representative node index in
// marked, so the garbage-collection sweep that runs during reordering
// never reclaims a variable's identity function.
func (lv *Levels) MarkRepresentatives(marked *AtomicBitmap) {
	for _, e := range lv.table {
		marked.Set(int(e.Index()))
	}
}
