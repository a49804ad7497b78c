// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// cacheLineSize is the assumed cache-line width used to pad small
// allocations; large allocations are handed to the kernel via mmap, which
// is already page (and therefore cache-line) aligned.
const cacheLineSize = 64

// mmapThreshold is the size, in bytes, above which AlignedAlloc backs the
// allocation with an anonymous mmap region rather than a Go slice. Below
// it, the overhead of a syscall is not worth the alignment guarantee for
// what are typically short-lived scratch bitmaps.
const mmapThreshold = 1 << 20 // 1 MiB

// AlignedRegion is a large, contiguous, cache-line aligned allocation
// suitable for backing the unique table's node/bucket arrays or
// reordering scratch space. Regions above mmapThreshold are backed by an
// anonymous mmap mapping (github.com/edsrzf/mmap-go) so the OS can back
// them with huge pages and the allocation is page aligned regardless of
// the Go runtime's own allocator placement; smaller regions are ordinary
// cache-line padded slices.
type AlignedRegion struct {
	mm    mmap.MMap // nil for small, slice-backed regions
	bytes []byte
}

// AlignedAlloc reserves n bytes of zeroed, cache-line aligned memory.
func AlignedAlloc(n int) (*AlignedRegion, error) {
	if n <= 0 {
		n = cacheLineSize
	}
	if n < mmapThreshold {
		// round the size up to whole cache lines, over-allocate by one
		// line, and start the region at the first cache-line boundary
		// inside the backing array.
		padded := ((n + cacheLineSize - 1) / cacheLineSize) * cacheLineSize
		buf := make([]byte, padded+cacheLineSize)
		off := int(uintptr(unsafe.Pointer(&buf[0])) & (cacheLineSize - 1))
		if off != 0 {
			off = cacheLineSize - off
		}
		return &AlignedRegion{bytes: buf[off : off+padded : off+padded]}, nil
	}
	padded := ((n + cacheLineSize - 1) / cacheLineSize) * cacheLineSize
	m, err := mmap.MapRegion(nil, padded, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, ErrMemory
	}
	return &AlignedRegion{mm: m, bytes: []byte(m)}, nil
}

// Bytes returns the underlying byte slice.
func (r *AlignedRegion) Bytes() []byte { return r.bytes }

// Free releases the region. It is a no-op for slice-backed regions (the
// Go garbage collector reclaims them); mmap-backed regions are unmapped
// immediately, since they are not tracked by the Go heap.
func (r *AlignedRegion) Free() error {
	if r.mm != nil {
		return r.mm.Unmap()
	}
	return nil
}
