// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

// False and True return the two terminal edges. They never allocate and
// never need a RegionCtx.
func (e *Engine) False() Edge { return e.falseLeaf }
func (e *Engine) True() Edge  { return e.trueLeaf }

// Ithvar returns the BDD that is true exactly when variable v is true,
// registering v in the level registry if this is the first time it is
// mentioned (a fresh variable is always appended at the bottom level).
func (e *Engine) Ithvar(v uint32) (Edge, error) {
	e.ensureLevel(v)
	ctx := NewRegionCtx()
	idx, _, err := e.ut.LookupOrInsert(v, e.falseLeaf, e.trueLeaf, ctx)
	if err != nil {
		return Edge(0), err
	}
	return MakeEdge(idx, false), nil
}

// NIthvar returns the negation of Ithvar(v).
func (e *Engine) NIthvar(v uint32) (Edge, error) {
	edge, err := e.Ithvar(v)
	if err != nil {
		return Edge(0), err
	}
	return edge.Not(), nil
}

// ensureLevel grows the level registry so variable v has an assigned
// level, appending new variables at the bottom in the order they are
// first mentioned (the teacher's bdd_ithvar does the same: an unseen
// variable is simply the next one handed out).
func (e *Engine) ensureLevel(v uint32) {
	for uint32(e.levels.Count()) <= v {
		_, _ = e.levels.NewLevel(e.ut, NewRegionCtx(), e.falseLeaf, e.trueLeaf)
	}
}

// Not returns the negation of e — just the complement bit, a structural
// operation that never touches the table or cache.
func (en *Engine) Not(e Edge) Edge { return e.Not() }

// And, Or, Imp, Biimp are thin Apply wrappers, kept because the end-to-end
// scenarios build test formulas out of them directly rather than always
// spelling out Apply(..., OPand) at the call site.
func (en *Engine) And(a, b Edge) (Edge, error)   { return en.Apply(OPand, a, b) }
func (en *Engine) Or(a, b Edge) (Edge, error)    { return en.Apply(OPor, a, b) }
func (en *Engine) Imp(a, b Edge) (Edge, error)   { return en.Apply(OPimp, a, b) }
func (en *Engine) Biimp(a, b Edge) (Edge, error) { return en.Apply(OPbiimp, a, b) }
func (en *Engine) Xor(a, b Edge) (Edge, error)   { return en.Apply(OPxor, a, b) }
