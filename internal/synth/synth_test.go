// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package synth

import (
	"strings"
	"testing"

	"github.com/dalzilio/parudd"
	"github.com/dalzilio/parudd/internal/aig"
)

// out = var1 AND var2.
const simpleAnd = `aag 3 2 0 1 1
2
4
6
6 2 4
`

// out = (NOT var1) AND var2 — exercises literal's polarity bit.
const negatedAnd = `aag 3 2 0 1 1
2
4
6
6 3 4
`

// out = var1 AND var2 AND var3, built through two chained gates
// (var4 = var1 AND var2, var5 = var4 AND var3) so NewBuilder's memo
// table is exercised on a multi-gate graph.
const chainedAnd = `aag 5 3 0 1 2
2
4
6
10
8 2 4
10 8 6
`

func TestBuilderOutputsMatchDirectApply(t *testing.T) {
	g, err := aig.Parse(strings.NewReader(simpleAnd))
	if err != nil {
		t.Fatalf("aig.Parse: %v", err)
	}
	e, err := parudd.NewEngine(parudd.WithTableSize(1 << 10))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	outs, err := NewBuilder(e, g).Outputs()
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if len(outs) != 1 {
		t.Fatalf("len(outs) = %d, want 1", len(outs))
	}

	x1, err := e.Ithvar(1)
	if err != nil {
		t.Fatalf("Ithvar(1): %v", err)
	}
	x2, err := e.Ithvar(2)
	if err != nil {
		t.Fatalf("Ithvar(2): %v", err)
	}
	want, err := e.And(x1, x2)
	if err != nil {
		t.Fatalf("And: %v", err)
	}
	if outs[0] != want {
		t.Fatalf("synthesized output does not match Apply's canonical edge for var1 AND var2")
	}
}

func TestBuilderHonoursNegatedLiterals(t *testing.T) {
	g, err := aig.Parse(strings.NewReader(negatedAnd))
	if err != nil {
		t.Fatalf("aig.Parse: %v", err)
	}
	e, err := parudd.NewEngine(parudd.WithTableSize(1 << 10))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	outs, err := NewBuilder(e, g).Outputs()
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}

	notX1, err := e.NIthvar(1)
	if err != nil {
		t.Fatalf("NIthvar(1): %v", err)
	}
	x2, err := e.Ithvar(2)
	if err != nil {
		t.Fatalf("Ithvar(2): %v", err)
	}
	want, err := e.And(notX1, x2)
	if err != nil {
		t.Fatalf("And: %v", err)
	}
	if outs[0] != want {
		t.Fatalf("synthesized output does not honour the negated literal on var1")
	}
}

func TestBuilderBuildsChainedGates(t *testing.T) {
	g, err := aig.Parse(strings.NewReader(chainedAnd))
	if err != nil {
		t.Fatalf("aig.Parse: %v", err)
	}
	e, err := parudd.NewEngine(parudd.WithTableSize(1 << 10))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	outs, err := NewBuilder(e, g).Outputs()
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}

	x1, err := e.Ithvar(1)
	if err != nil {
		t.Fatalf("Ithvar(1): %v", err)
	}
	x2, err := e.Ithvar(2)
	if err != nil {
		t.Fatalf("Ithvar(2): %v", err)
	}
	x3, err := e.Ithvar(3)
	if err != nil {
		t.Fatalf("Ithvar(3): %v", err)
	}
	x1x2, err := e.And(x1, x2)
	if err != nil {
		t.Fatalf("And(x1,x2): %v", err)
	}
	want, err := e.And(x1x2, x3)
	if err != nil {
		t.Fatalf("And(x1x2,x3): %v", err)
	}
	if outs[0] != want {
		t.Fatalf("chained AND gate did not synthesize to the expected canonical edge")
	}
}
