// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hashSeed plays the role of the spec's "FNV_offset" seed: a fixed
// constant folded into every digest so that two engines built with the
// same capacity hash identically, which the concurrency tests rely on
// (spec.md §8 property 1).
const hashSeed uint64 = 0xcbf29ce484222325 // FNV offset basis, reused as a fixed salt

// nodeHash digests the canonical triple (variable, low, high) the same
// way regardless of which caller computed it, which is what lets two
// concurrent LookupOrInsert calls for the same triple land in the same
// bucket. Sixteen bytes are fed to xxhash (two 8-byte words, mirroring
// the spec's "16-byte tabulation hash"); the top 24 bits of the digest
// become the node's stored fingerprint for fast chain pre-checks.
func nodeHash(variable uint32, low, high Edge) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], (uint64(variable)<<40)|low.Index()|boolBit(low.Complemented(), 40))
	binary.LittleEndian.PutUint64(buf[8:16], high.Index()|boolBit(high.Complemented(), 40))
	return xxhash.Sum64(buf[:]) ^ hashSeed
}

// leafHash digests a leaf's (payload, typeTag) pair.
func leafHash(payload uint64, typeTag uint8) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], payload)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(typeTag))
	return xxhash.Sum64(buf[:]) ^ hashSeed
}

func boolBit(b bool, shift uint) uint64 {
	if b {
		return uint64(1) << shift
	}
	return 0
}

// fingerprintOf extracts the 24-bit tag stored alongside a digest.
func fingerprintOf(h uint64) uint32 {
	return uint32(h>>40) & uint32(fpMask)
}

// bucketOf reduces a digest to a bucket index in [0, numBuckets).
// numBuckets must be a power of two; masking is used instead of modulo.
func bucketOf(h uint64, numBuckets int) int {
	return int(h & uint64(numBuckets-1))
}
