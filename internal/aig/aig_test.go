// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package aig

import (
	"strings"
	"testing"
)

// a AND b, no latches, short header (b/c/j/f all omitted).
const twoInputAnd = `aag 3 2 0 1 1
2
4
6
6 2 4
i0 a
i1 controllable_b
o0 out
`

func TestParseTwoInputAnd(t *testing.T) {
	g, err := Parse(strings.NewReader(twoInputAnd))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Header.M != 3 || g.Header.I != 2 || g.Header.L != 0 || g.Header.O != 1 || g.Header.A != 1 {
		t.Fatalf("header = %+v, want M=3 I=2 L=0 O=1 A=1", g.Header)
	}
	if len(g.Inputs) != 2 || g.Inputs[0] != 2 || g.Inputs[1] != 4 {
		t.Fatalf("Inputs = %v, want [2 4]", g.Inputs)
	}
	if len(g.Outputs) != 1 || g.Outputs[0] != 6 {
		t.Fatalf("Outputs = %v, want [6]", g.Outputs)
	}
	if len(g.Gates) != 1 || g.Gates[0] != (Gate{LHS: 6, LFT: 2, RGT: 4}) {
		t.Fatalf("Gates = %v, want a single (6 = 2 & 4)", g.Gates)
	}

	idx, ok := g.IsAndGate(3)
	if !ok || idx != 0 {
		t.Fatalf("IsAndGate(3) = (%d,%v), want (0,true)", idx, ok)
	}
	if _, ok := g.IsAndGate(1); ok {
		t.Fatalf("variable 1 (a primary input) must not be an AND gate")
	}

	if !g.Controllable[2] {
		t.Fatalf("input b (variable 2) was labelled controllable_b and should be marked Controllable")
	}
	if !g.Uncontrollable[1] {
		t.Fatalf("input a (variable 1) carries a plain label and should be marked Uncontrollable")
	}
}

// Same graph, but with all four optional header fields present.
const twoInputAndFullHeader = `aag 3 2 0 1 1 0 0 0 0
2
4
6
6 2 4
`

func TestParseFullHeaderFields(t *testing.T) {
	g, err := Parse(strings.NewReader(twoInputAndFullHeader))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Header.B != 0 || g.Header.C != 0 || g.Header.J != 0 || g.Header.F != 0 {
		t.Fatalf("header = %+v, want all optional fields 0", g.Header)
	}
	if len(g.Gates) != 1 {
		t.Fatalf("body parsing must resume correctly after a full nine-field header")
	}
}

func TestParseRejectsMultipleOutputs(t *testing.T) {
	const bad = "aag 1 1 0 2 0\n2\n2\n2\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatalf("Parse should reject a header with O != 1")
	}
}

func TestParseRejectsExtendedFormat(t *testing.T) {
	const bad = "aag 1 1 0 1 0 1\n2\n2\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatalf("Parse should reject a non-zero b/c/j/f field")
	}
}

func TestParseRejectsMalformedHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("not-an-aag-file\n")); err == nil {
		t.Fatalf("Parse should reject a header missing the \"aag\" tag")
	}
}
