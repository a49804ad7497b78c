// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import "testing"

func TestNodeHashDeterministic(t *testing.T) {
	low := MakeEdge(7, false)
	high := MakeEdge(9, true)
	h1 := nodeHash(3, low, high)
	h2 := nodeHash(3, low, high)
	if h1 != h2 {
		t.Fatalf("nodeHash is not deterministic: %x vs %x", h1, h2)
	}
}

func TestNodeHashDistinguishesComplementBit(t *testing.T) {
	low := MakeEdge(7, false)
	high := MakeEdge(9, false)
	a := nodeHash(3, low, high)
	b := nodeHash(3, low, high.Not())
	if a == b {
		t.Fatalf("nodeHash must distinguish a complemented child from an uncomplemented one")
	}
}

func TestNodeHashDistinguishesVariable(t *testing.T) {
	low := MakeEdge(7, false)
	high := MakeEdge(9, false)
	a := nodeHash(3, low, high)
	b := nodeHash(4, low, high)
	if a == b {
		t.Fatalf("nodeHash must distinguish nodes with different variables")
	}
}

func TestLeafHashDistinguishesTypeTag(t *testing.T) {
	a := leafHash(42, 0)
	b := leafHash(42, 1)
	if a == b {
		t.Fatalf("leafHash must distinguish leaves with the same payload but different type tags")
	}
}

func TestBucketOfMasksToRange(t *testing.T) {
	const numBuckets = 1024
	for _, h := range []uint64{0, 1, 0xFFFFFFFFFFFFFFFF, 123456789} {
		b := bucketOf(h, numBuckets)
		if b < 0 || b >= numBuckets {
			t.Fatalf("bucketOf(%x, %d) = %d, out of range", h, numBuckets, b)
		}
	}
}

func TestFingerprintOfMasksTo24Bits(t *testing.T) {
	fp := fingerprintOf(^uint64(0))
	if fp > uint32(fpMask) {
		t.Fatalf("fingerprintOf must never exceed fpMask, got %x", fp)
	}
}
