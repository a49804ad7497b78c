// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// blockSize is the default fork-join granularity for VSwap's phases and
// the interaction matrix's support-set pass: each task processes a
// contiguous run of this many indices before the scheduler hands out the
// next chunk.
const blockSize = 4096

// parallelChunks splits [0, n) into contiguous chunks of blockSize
// indices (of ceil(n/workers) indices instead when workers > 1 and
// n/workers exceeds blockSize) and runs fn(lo, hi) for each chunk in its
// own goroutine via errgroup, waiting for every
// chunk to finish before returning. It is the divide-and-conquer
// primitive VSwap's phases, RehashAll and the interaction matrix's
// parallel support-set construction all build on, replacing the
// SPAWN/CALL/SYNC task macros of a Lace-style work-stealing scheduler
// with Go's native goroutines and an errgroup barrier.
func parallelChunks(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	chunk := blockSize
	if workers > 1 && n/workers > chunk {
		chunk = (n + workers - 1) / workers
	}
	if chunk < 1 {
		chunk = 1
	}

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// parallelChunksCtx is parallelChunks' cancellable counterpart: fn may
// return an error (e.g. a phase detects a condition that requires
// aborting the whole VSwap), which cancels the context passed to every
// other in-flight chunk and is returned once all goroutines unwind.
func parallelChunksCtx(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	chunk := blockSize
	if workers > 1 && n/workers > chunk {
		chunk = (n + workers - 1) / workers
	}
	if chunk < 1 {
		chunk = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		g.Go(func() error {
			return fn(gctx, lo, hi)
		})
	}
	return g.Wait()
}
