// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

// constant reports the node's value as a terminal, if it is one: edges
// equal to the engine's false/true leaves are 0 and 1 respectively. Any
// other edge is not a constant.
func (e *Engine) constant(edge Edge) (val int, ok bool) {
	switch edge {
	case e.falseLeaf:
		return 0, true
	case e.trueLeaf:
		return 1, true
	default:
		return 0, false
	}
}

func (e *Engine) edgeOf(val int) Edge {
	if val == 0 {
		return e.falseLeaf
	}
	return e.trueLeaf
}

// cofactors returns the variable of edge's node and its low/high
// children, with edge's complement bit pushed into both. For a leaf it
// returns edge as both cofactors and leaf == true; callers that need
// the "don't care yet" case for an operand below the current level use
// the operand itself instead of calling cofactors.
func (e *Engine) cofactors(edge Edge) (variable uint32, low, high Edge, leaf bool) {
	idx := edge.Index()
	n := e.ut.Node(idx)
	if n.isLeaf() {
		return 0, edge, edge, true
	}
	low, high = n.low(), n.high()
	if edge.Complemented() {
		low, high = low.Not(), high.Not()
	}
	return n.variable(), low, high, false
}

func (e *Engine) levelOf(edge Edge) int {
	idx := edge.Index()
	n := e.ut.Node(idx)
	if n.isLeaf() {
		return e.levels.Count() // leaves sort after every real variable
	}
	return e.levels.VariableToLevel(n.variable())
}

// Apply computes the pointwise combination of a and b under a binary
// operator, memoizing every sub-result in the engine's operation cache.
func (e *Engine) Apply(op Operator, a, b Edge) (Edge, error) {
	ctx := NewRegionCtx()
	return e.apply(op, a, b, ctx)
}

func (e *Engine) apply(op Operator, a, b Edge, ctx *RegionCtx) (Edge, error) {
	av, aok := e.constant(a)
	bv, bok := e.constant(b)
	if aok && bok {
		return e.edgeOf(opres[op][av][bv]), nil
	}
	if hit, ok := e.cache.Get(op, a, b, Edge(0)); ok {
		return hit, nil
	}

	la, lb := e.levelOf(a), e.levelOf(b)
	level := la
	if lb < level {
		level = lb
	}
	variable := e.levels.LevelToVariable(level)

	var aLow, aHigh, bLow, bHigh Edge
	if la == level {
		_, aLow, aHigh, _ = e.cofactors(a)
	} else {
		aLow, aHigh = a, a
	}
	if lb == level {
		_, bLow, bHigh, _ = e.cofactors(b)
	} else {
		bLow, bHigh = b, b
	}

	low, err := e.apply(op, aLow, bLow, ctx)
	if err != nil {
		return Edge(0), err
	}
	high, err := e.apply(op, aHigh, bHigh, ctx)
	if err != nil {
		return Edge(0), err
	}

	res, err := e.mkNode(variable, low, high, ctx)
	if err != nil {
		return Edge(0), err
	}
	e.cache.Put(op, a, b, Edge(0), res)
	return res, nil
}

// mkNode builds the reduced node (variable, low, high), collapsing it to
// low when the two cofactors coincide, matching the standard BDD
// reduction rule. LookupOrInsert canonicalizes the (variable, low, high)
// triple exactly as given; complement bits are not normalized, so a
// function and its negation built through Apply can be two distinct
// nodes rather than one node and a complemented edge.
func (e *Engine) mkNode(variable uint32, low, high Edge, ctx *RegionCtx) (Edge, error) {
	if low == high {
		return low, nil
	}
	idx, _, err := e.ut.LookupOrInsert(variable, low, high, ctx)
	if err != nil {
		return Edge(0), err
	}
	return MakeEdge(idx, false), nil
}

// Ite computes if-then-else(f, g, h) = (f /\ g) \/ (not f /\ h) in a
// single recursive descent rather than three Apply calls, following the
// three-operand min-level recursion the teacher's ite uses.
func (e *Engine) Ite(f, g, h Edge) (Edge, error) {
	ctx := NewRegionCtx()
	return e.ite(f, g, h, ctx)
}

func (e *Engine) ite(f, g, h Edge, ctx *RegionCtx) (Edge, error) {
	if f == e.trueLeaf {
		return g, nil
	}
	if f == e.falseLeaf {
		return h, nil
	}
	if g == h {
		return g, nil
	}
	if g == e.trueLeaf && h == e.falseLeaf {
		return f, nil
	}
	if g == e.falseLeaf && h == e.trueLeaf {
		return f.Not(), nil
	}

	if hit, ok := e.cache.Get(opIte, f, g, h); ok {
		return hit, nil
	}

	lf, lg, lh := e.levelOf(f), e.levelOf(g), e.levelOf(h)
	level := lf
	if lg < level {
		level = lg
	}
	if lh < level {
		level = lh
	}
	variable := e.levels.LevelToVariable(level)

	fLow, fHigh := f, f
	if lf == level {
		_, fLow, fHigh, _ = e.cofactors(f)
	}
	gLow, gHigh := g, g
	if lg == level {
		_, gLow, gHigh, _ = e.cofactors(g)
	}
	hLow, hHigh := h, h
	if lh == level {
		_, hLow, hHigh, _ = e.cofactors(h)
	}

	low, err := e.ite(fLow, gLow, hLow, ctx)
	if err != nil {
		return Edge(0), err
	}
	high, err := e.ite(fHigh, gHigh, hHigh, ctx)
	if err != nil {
		return Edge(0), err
	}

	res, err := e.mkNode(variable, low, high, ctx)
	if err != nil {
		return Edge(0), err
	}
	e.cache.Put(opIte, f, g, h, res)
	return res, nil
}

// opIte is a cache-key tag distinct from every real Operator value, used
// to keep Ite's memo entries out of Apply's (op, a, b) keyspace.
const opIte = Operator(opnot + 2)

// VarSet is an increasing list of variables to quantify over, built once
// and reused across Exist calls (the teacher's Makeset equivalent).
type VarSet struct {
	present []bool // indexed by variable
	top     int    // highest variable + 1, or 0 if empty
}

// NewVarSet builds a VarSet from an explicit variable list.
func NewVarSet(vars ...uint32) *VarSet {
	top := 0
	for _, v := range vars {
		if int(v)+1 > top {
			top = int(v) + 1
		}
	}
	vs := &VarSet{present: make([]bool, top), top: top}
	for _, v := range vars {
		vs.present[v] = true
	}
	return vs
}

func (vs *VarSet) has(v uint32) bool {
	return int(v) < vs.top && vs.present[v]
}

// Exist computes the existential quantification of edge over every
// variable in vs: exist(v, f) = f[v:=0] \/ f[v:=1], applied bottom-up in
// a single traversal, memoized separately from Apply's cache since its
// key shape (node, varset) differs from (op, a, b).
func (e *Engine) Exist(edge Edge, vs *VarSet) (Edge, error) {
	if vs == nil || vs.top == 0 {
		return edge, nil
	}
	ctx := NewRegionCtx()
	return e.exist(edge, vs, ctx)
}

func (e *Engine) exist(edge Edge, vs *VarSet, ctx *RegionCtx) (Edge, error) {
	if _, ok := e.constant(edge); ok {
		return edge, nil
	}
	variable, low, high, leaf := e.cofactors(edge)
	if leaf {
		return edge, nil
	}
	if int(variable) >= vs.top {
		return edge, nil
	}

	quantKey := MakeEdge(uint64(vs.top), false)
	if hit, ok := e.cache.Get(opExist, edge, quantKey, Edge(0)); ok {
		return hit, nil
	}

	lowR, err := e.exist(low, vs, ctx)
	if err != nil {
		return Edge(0), err
	}
	highR, err := e.exist(high, vs, ctx)
	if err != nil {
		return Edge(0), err
	}

	var res Edge
	if vs.has(variable) {
		res, err = e.apply(OPor, lowR, highR, ctx)
	} else {
		res, err = e.mkNode(variable, lowR, highR, ctx)
	}
	if err != nil {
		return Edge(0), err
	}
	e.cache.Put(opExist, edge, quantKey, Edge(0), res)
	return res, nil
}

// opExist is a cache-key tag distinct from every real Operator value
// (opnot is the highest), used only to separate Exist's memo entries from
// Apply's and Ite's within the shared cache.
const opExist = Operator(opnot + 1)
