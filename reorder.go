// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"runtime"
	"time"
)

// reorderSizeRatio and reorderCallLimit mirror the constants the
// original reordering database used to pace how aggressively
// maybe_reduce_heap re-triggers: the size threshold grows by this
// ratio after every pass, and MaybeReduceHeap stops starting passes
// once reorderCallLimit passes have run.
const (
	reorderSizeRatio = 1.6
	reorderCallLimit = 20
)

// hookFunc is a reordering lifecycle callback; progress hooks receive
// the size observed after a sifting iteration that shrank the graph.
type hookFunc func()
type progressHookFunc func(size int)
type terminationHookFunc func() bool

// Engine is the single process-wide object that owns the unique
// table, the level registry, the operation cache, and the reordering
// controller's hook lists. Constructing one by hand (rather than
// through a package-level singleton) is fine: injection is not
// required, just supported.
type Engine struct {
	config *Config
	ut     *Table
	levels *Levels
	cache  *Cache

	falseLeaf Edge
	trueLeaf  Edge

	externalRefs *AtomicBitmap

	// ephemeral, allocated fresh for each reordering pass and nil
	// otherwise
	mrc      *MRC
	interact *InteractionMatrix

	sizeThreshold int
	callCount     int

	preHooks  []hookFunc
	postHooks []hookFunc
	progHooks []progressHookFunc
	termHooks []terminationHookFunc
}

// NewEngine builds an Engine with fresh Table/Levels/Cache state sized
// per opts, and registers the two Boolean terminal leaves.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	tableSize := 1
	for tableSize < cfg.TableSize {
		tableSize <<= 1
	}
	ut, err := NewTable(tableSize)
	if err != nil {
		return nil, err
	}
	cache, err := NewCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	falseIdx, _, err := ut.LookupOrInsertCustom(0, leafTypeBool, NewRegionCtx())
	if err != nil {
		return nil, err
	}
	e := &Engine{
		config:        cfg,
		ut:            ut,
		levels:        NewLevels(),
		cache:         cache,
		falseLeaf:     MakeEdge(falseIdx, false),
		externalRefs:  NewAtomicBitmap(ut.Capacity()),
		sizeThreshold: cfg.SizeThreshold,
	}
	e.trueLeaf = e.falseLeaf.Not()
	return e, nil
}

// leafTypeBool is the built-in type tag for the Boolean/MTBDD terminal
// (spec.md reserves tag 0 for it).
const leafTypeBool uint8 = 0

// Ref registers index as an externally-held root: it survives garbage
// collection and reordering and is included in interaction-matrix
// construction.
func (e *Engine) Ref(edge Edge) { e.externalRefs.Set(int(edge.Index())) }

// Unref releases a previously-Ref'd root.
func (e *Engine) Unref(edge Edge) { e.externalRefs.Clear(int(edge.Index())) }

// HookPreReorder registers a callback run before every reordering pass.
// Hooks within a category run LIFO, most-recently-registered first.
func (e *Engine) HookPreReorder(f hookFunc) { e.preHooks = append(e.preHooks, f) }

// HookPostReorder registers a callback run after every reordering pass.
func (e *Engine) HookPostReorder(f hookFunc) { e.postHooks = append(e.postHooks, f) }

// HookProgress registers a callback invoked whenever a sifting
// iteration reduces the graph size.
func (e *Engine) HookProgress(f progressHookFunc) { e.progHooks = append(e.progHooks, f) }

// HookTermination registers a callback queried to decide whether to
// stop sifting early; any registered hook returning true ends the pass.
func (e *Engine) HookTermination(f terminationHookFunc) { e.termHooks = append(e.termHooks, f) }

func (e *Engine) runPreHooks() {
	for i := len(e.preHooks) - 1; i >= 0; i-- {
		e.preHooks[i]()
	}
}

func (e *Engine) runPostHooks() {
	for i := len(e.postHooks) - 1; i >= 0; i-- {
		e.postHooks[i]()
	}
}

func (e *Engine) runProgressHooks(size int) {
	for i := len(e.progHooks) - 1; i >= 0; i-- {
		e.progHooks[i](size)
	}
}

func (e *Engine) terminationRequested() bool {
	for i := len(e.termHooks) - 1; i >= 0; i-- {
		if e.termHooks[i]() {
			return true
		}
	}
	return false
}

// MaybeReduceHeap calls ReduceHeap if live_nodes >= size_threshold and
// fewer than reorderCallLimit reordering passes have run so far.
func (e *Engine) MaybeReduceHeap() VarswapResult {
	live := e.ut.occ.Count()
	if live >= e.sizeThreshold && e.callCount < reorderCallLimit {
		return e.ReduceHeap(e.config.ReorderType)
	}
	return VarswapSuccess
}

// ReduceHeap runs one full reordering pass (stop-the-world): clear the
// cache, snapshot live nodes, allocate and initialize MRC and the
// interaction matrix, run hooks around the chosen sifting algorithm,
// then free the ephemeral state and recompute the size threshold.
func (e *Engine) ReduceHeap(kind ReorderType) VarswapResult {
	var outcome VarswapResult = VarswapSuccess
	e.ut.StopTheWorld(func() {
		e.callCount++
		e.cache.Clear()

		live := SnapshotOccupied(e.ut.occ)

		varCount := e.levels.Count()
		e.mrc = NewMRC(e.ut.Capacity(), varCount)
		live.ForEach(func(i uint32) bool {
			if e.externalRefs.Get(int(i)) {
				e.mrc.MarkExternal(uint64(i))
			}
			return true
		})
		e.levels.MarkRepresentatives(e.mrc.extRefBits)
		VarRefInit(e.mrc, e.ut, live)

		roots := make([]uint64, 0)
		live.ForEach(func(i uint32) bool {
			if e.externalRefs.Get(int(i)) {
				roots = append(roots, uint64(i))
			}
			return true
		})
		e.interact = BuildInteractionMatrix(e.ut, e.levels, roots, e.workers())

		e.runPreHooks()
		e.entry().WithField("live", live.Len()).Debug("reordering pass starting")

		vswap := NewVSwap(e.ut, e.levels, e.mrc, e.workers())
		budget := e.siftBudget(kind)
		sifter := NewSifter(e.ut, e.levels, e.mrc, e.interact, vswap, budget, e.runProgressHooks)
		swaps := sifter.Run()

		e.runPostHooks()

		afterSize := e.ut.occ.Count()
		e.entry().WithField("swaps", swaps).WithField("live", afterSize).Debug("reordering pass done")
		e.mrc = nil
		e.interact = nil

		newThreshold := int(float64(afterSize+1) * reorderSizeRatio)
		if e.callCount < reorderCallLimit || newThreshold > e.sizeThreshold {
			e.sizeThreshold = newThreshold
		} else {
			e.sizeThreshold += reorderCallLimit
		}
	})
	return outcome
}

// workers returns the configured worker count, translating the
// "use GOMAXPROCS" sentinel (0) the way the rest of the engine expects.
func (e *Engine) workers() int {
	if e.config.Workers > 0 {
		return e.config.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// siftBudget derives a SiftBudget from the engine's configuration;
// BoundedSift applies a tighter per-variable cap than a full Sift,
// matching the spec's two reordering-type entry points.
func (e *Engine) siftBudget(kind ReorderType) SiftBudget {
	b := SiftBudget{
		MaxSwap:    e.config.MaxSwap,
		MaxVar:     e.config.MaxVar,
		MaxGrowth:  e.config.MaxGrowth,
		Terminate:  e.terminationRequested,
		SizeCutoff: 0,
	}
	if e.config.TimeLimitMs > 0 {
		b.TimeLimit = time.Duration(e.config.TimeLimitMs) * time.Millisecond
	}
	if kind == BoundedSift {
		if b.MaxSwap == 0 || b.MaxSwap > defaultMaxSwap/10 {
			b.MaxSwap = defaultMaxSwap / 10
		}
		if b.MaxVar == 0 || b.MaxVar > defaultMaxVar/10 {
			b.MaxVar = defaultMaxVar / 10
		}
	}
	return b
}
