// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package aig reads the ASCII AIGER ("aag") format used to describe
// And-Inverter Graphs for synthesis benchmarks: a header line, followed
// by input/latch/output literals and a list of two-input AND gates, with
// an optional tail of symbol-table label lines.
package aig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header holds the nine counts on an aag file's first line. Only the
// single-output, property-free subset is supported: b, c, j and f must
// all be zero and o must be exactly 1, matching the synthesis examples
// this parser targets.
type Header struct {
	M uint64 // maximum variable index
	I uint64 // number of inputs
	L uint64 // number of latches
	O uint64 // number of outputs
	A uint64 // number of AND gates
	B uint64 // bad state properties, must be 0
	C uint64 // invariant constraints, must be 0
	J uint64 // justice properties, must be 0
	F uint64 // fairness constraints, must be 0
}

// Gate is one two-input AND gate: lhs = lft & rgt, each literal encoding
// a variable (literal/2) and a polarity (literal&1, 1 means negated).
type Gate struct {
	LHS, LFT, RGT uint64
}

// Graph is a fully parsed AIG: the header, the input/latch/output
// literal lists, the AND gates, and a lookup from a variable index to
// the gate that defines it (-1 if the variable is a primary input or
// latch instead).
type Graph struct {
	Header  Header
	Inputs  []uint64
	Latches []uint64
	LNext   []uint64 // latches[i]'s next-state literal
	Outputs []uint64
	Gates   []Gate
	Lookup  []int // indexed by variable, -1 if not an AND gate

	// Controllable/Uncontrollable record, by variable index, whether an
	// optional label line named an input "controllable_*"; populated only
	// if the file carries a symbol table.
	Controllable   []bool
	Uncontrollable []bool
}

// IsAndGate reports whether variable v is defined by an AND gate, and
// returns its index into Gates if so.
func (g *Graph) IsAndGate(v uint64) (int, bool) {
	if int(v) >= len(g.Lookup) {
		return 0, false
	}
	idx := g.Lookup[v]
	return idx, idx >= 0
}

// Parse reads one aag file from r, including any trailing "i"/"l"/"o"
// symbol-table label lines used to tag controllable inputs.
func Parse(r io.Reader) (*Graph, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	g := &Graph{}
	if err := readHeaderLine(br, &g.Header); err != nil {
		return nil, err
	}
	if g.Header.O != 1 {
		return nil, fmt.Errorf("aig: expecting exactly 1 output, got %d", g.Header.O)
	}
	if g.Header.B != 0 || g.Header.C != 0 || g.Header.J != 0 || g.Header.F != 0 {
		return nil, fmt.Errorf("aig: no support for the extended format (b/c/j/f must be 0)")
	}

	p := &parser{s: bufio.NewScanner(br)}
	p.s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	p.s.Split(bufio.ScanWords)

	g.Inputs = make([]uint64, g.Header.I)
	for i := range g.Inputs {
		lit, err := p.readUint()
		if err != nil {
			return nil, err
		}
		g.Inputs[i] = lit
	}

	g.Latches = make([]uint64, g.Header.L)
	g.LNext = make([]uint64, g.Header.L)
	for i := range g.Latches {
		lit, err := p.readUint()
		if err != nil {
			return nil, err
		}
		next, err := p.readUint()
		if err != nil {
			return nil, err
		}
		g.Latches[i] = lit
		g.LNext[i] = next
	}

	g.Outputs = make([]uint64, g.Header.O)
	for i := range g.Outputs {
		lit, err := p.readUint()
		if err != nil {
			return nil, err
		}
		g.Outputs[i] = lit
	}

	g.Gates = make([]Gate, g.Header.A)
	g.Lookup = make([]int, g.Header.M+1)
	for i := range g.Lookup {
		g.Lookup[i] = -1
	}
	for a := range g.Gates {
		lhs, err := p.readUint()
		if err != nil {
			return nil, err
		}
		lft, err := p.readUint()
		if err != nil {
			return nil, err
		}
		rgt, err := p.readUint()
		if err != nil {
			return nil, err
		}
		g.Gates[a] = Gate{LHS: lhs, LFT: lft, RGT: rgt}
		g.Lookup[lhs/2] = a
	}

	g.Controllable = make([]bool, g.Header.M+1)
	g.Uncontrollable = make([]bool, g.Header.M+1)
	p.readLabels(g)

	return g, nil
}

// readLabels consumes the optional "i<pos> <name>" / "l<pos> <name>" /
// "o<pos> <name>" symbol-table tail, flagging inputs whose name starts
// with "controllable_" and recording the rest as uncontrollable.
func (p *parser) readLabels(g *Graph) {
	for p.s.Scan() {
		tok := p.s.Text()
		if tok == "" {
			continue
		}
		kind := tok[0]
		if kind != 'i' && kind != 'l' && kind != 'o' {
			continue
		}
		pos, err := strconv.ParseUint(tok[1:], 10, 64)
		if err != nil {
			continue
		}
		if !p.s.Scan() {
			return
		}
		name := p.s.Text()
		if kind == 'i' && int(pos) < len(g.Inputs) {
			v := g.Inputs[pos] / 2
			if strings.HasPrefix(name, "controllable_") {
				g.Controllable[v] = true
			} else {
				g.Uncontrollable[v] = true
			}
		}
	}
}

type parser struct {
	s *bufio.Scanner
}

func (p *parser) readUint() (uint64, error) {
	if !p.s.Scan() {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseUint(p.s.Text(), 10, 64)
}

// readHeaderLine parses the aag header, which must be read as a single
// line: the b/c/j/f fields are optional, and whitespace-splitting the
// whole file (as the body's word-scanner does) would make a short
// header line indistinguishable from one that omits only some of them.
func readHeaderLine(br *bufio.Reader, h *Header) error {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) < 6 || fields[0] != "aag" {
		return fmt.Errorf("aig: malformed header line %q", strings.TrimSpace(line))
	}
	nums := make([]uint64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return fmt.Errorf("aig: bad header field %q: %w", f, err)
		}
		nums = append(nums, n)
	}
	h.M, h.I, h.L, h.O, h.A = nums[0], nums[1], nums[2], nums[3], nums[4]
	rest := nums[5:]
	for i, dst := range []*uint64{&h.B, &h.C, &h.J, &h.F} {
		if i < len(rest) {
			*dst = rest[i]
		}
	}
	return nil
}
