// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import "github.com/RoaringBitmap/roaring/v2"

// IndexSet is a set of 32-bit node indices, used by the reordering
// controller to snapshot which table slots are live before a sifting
// pass, and by the interaction matrix to iterate over them. It is a thin
// wrapper over a compressed roaring bitmap — the natural container for a
// set that start dense (most of the table is live right after a GC) but
// can also be extremely sparse (a freshly resized table).
type IndexSet struct {
	bm *roaring.Bitmap
}

// NewIndexSet returns an empty index set.
func NewIndexSet() *IndexSet {
	return &IndexSet{bm: roaring.New()}
}

// Add records index i as live.
func (s *IndexSet) Add(i uint32) { s.bm.Add(i) }

// Remove drops index i.
func (s *IndexSet) Remove(i uint32) { s.bm.Remove(i) }

// Contains reports whether i is in the set.
func (s *IndexSet) Contains(i uint32) bool { return s.bm.Contains(i) }

// Len returns the number of indices in the set.
func (s *IndexSet) Len() int { return int(s.bm.GetCardinality()) }

// Clear empties the set.
func (s *IndexSet) Clear() { s.bm.Clear() }

// ForEach calls f once per index in ascending order, stopping early if f
// returns false.
func (s *IndexSet) ForEach(f func(i uint32) bool) {
	it := s.bm.Iterator()
	for it.HasNext() {
		if !f(it.Next()) {
			return
		}
	}
}

// SnapshotOccupied builds an index set from every slot index at or above
// 2 whose occupancy bit is set, i.e. every live node currently in the
// table — this is step 2 of reduce_heap ("snapshot live-node indices into
// the Compressed Index Set").
func SnapshotOccupied(occ *AtomicBitmap) *IndexSet {
	s := NewIndexSet()
	for i := occ.First(2); i >= 0; i = occ.Next(i) {
		s.Add(uint32(i))
	}
	return s
}
