// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package synth builds one BDD per AIG output, driving the minimal
// kernel's Ithvar/Not/And in a recursive, memoized post-order traversal
// of the And-Inverter Graph's gates.
package synth

import (
	"fmt"

	"github.com/dalzilio/parudd"
	"github.com/dalzilio/parudd/internal/aig"
)

// Builder turns an aig.Graph into BDDs, one per literal ever requested,
// memoizing each AND gate's result the first time it is built so that a
// gate shared by several outputs is only synthesized once.
type Builder struct {
	engine *parudd.Engine
	graph  *aig.Graph
	gates  []parudd.Edge // memo table, indexed like graph.Gates; invalid entries detected via built
	built  []bool
}

// NewBuilder returns a Builder that creates variables and gate nodes on
// engine as needed.
func NewBuilder(engine *parudd.Engine, graph *aig.Graph) *Builder {
	return &Builder{
		engine: engine,
		graph:  graph,
		gates:  make([]parudd.Edge, len(graph.Gates)),
		built:  make([]bool, len(graph.Gates)),
	}
}

// Outputs synthesizes the BDD for every AIG output literal, registering
// each as an external reference on the engine (so garbage collection and
// reordering treat it as a root) and returning them in output order.
func (b *Builder) Outputs() ([]parudd.Edge, error) {
	out := make([]parudd.Edge, len(b.graph.Outputs))
	for i, lit := range b.graph.Outputs {
		edge, err := b.literal(lit)
		if err != nil {
			return nil, fmt.Errorf("synth: output %d: %w", i, err)
		}
		b.engine.Ref(edge)
		out[i] = edge
	}
	return out, nil
}

// literal resolves an AIG literal (variable*2 | polarity) to a BDD edge,
// recursively building whichever AND gate or primary variable it names.
func (b *Builder) literal(lit uint64) (parudd.Edge, error) {
	v := lit / 2
	var edge parudd.Edge
	if v == 0 {
		edge = b.engine.False()
	} else if a, ok := b.graph.IsAndGate(v); ok {
		gate, err := b.gate(a)
		if err != nil {
			return parudd.Edge(0), err
		}
		edge = gate
	} else {
		ithvar, err := b.engine.Ithvar(uint32(v))
		if err != nil {
			return parudd.Edge(0), err
		}
		edge = ithvar
	}
	if lit&1 != 0 {
		edge = b.engine.Not(edge)
	}
	return edge, nil
}

// gate builds (and memoizes) the BDD for AND-gate index a, recursing
// into whichever of its two operands are themselves gates.
func (b *Builder) gate(a int) (parudd.Edge, error) {
	if b.built[a] {
		return b.gates[a], nil
	}
	g := b.graph.Gates[a]

	left, err := b.literal(g.LFT)
	if err != nil {
		return parudd.Edge(0), err
	}
	right, err := b.literal(g.RGT)
	if err != nil {
		return parudd.Edge(0), err
	}
	res, err := b.engine.And(left, right)
	if err != nil {
		return parudd.Edge(0), err
	}
	b.gates[a] = res
	b.built[a] = true
	return res, nil
}
