// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import "testing"

func TestDefaultConfig(t *testing.T) {
	c := defaultConfig()
	if c.Workers != defaultWorkers {
		t.Fatalf("Workers = %d, want %d", c.Workers, defaultWorkers)
	}
	if c.TableSize != defaultTableSize {
		t.Fatalf("TableSize = %d, want %d", c.TableSize, defaultTableSize)
	}
	if c.ReorderType != Sift {
		t.Fatalf("ReorderType = %v, want Sift", c.ReorderType)
	}
	if c.MaxGrowth != defaultMaxGrowth {
		t.Fatalf("MaxGrowth = %v, want %v", c.MaxGrowth, defaultMaxGrowth)
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	c := defaultConfig()
	for _, opt := range []Option{
		WithWorkers(4),
		WithVerbose(true),
		WithTableSize(1 << 10),
		WithMaxTableSize(1 << 20),
		WithCacheSize(500),
		WithReorderType(BoundedSift),
		WithMaxSwap(10),
		WithMaxVar(3),
		WithMaxGrowth(2.0),
		WithSizeThreshold(128),
		WithTimeLimit(1500),
	} {
		opt(c)
	}

	switch {
	case c.Workers != 4:
		t.Fatalf("Workers = %d, want 4", c.Workers)
	case !c.Verbose:
		t.Fatalf("Verbose should be true")
	case c.TableSize != 1<<10:
		t.Fatalf("TableSize = %d, want %d", c.TableSize, 1<<10)
	case c.MaxTableSize != 1<<20:
		t.Fatalf("MaxTableSize = %d, want %d", c.MaxTableSize, 1<<20)
	case c.CacheSize != 500:
		t.Fatalf("CacheSize = %d, want 500", c.CacheSize)
	case c.ReorderType != BoundedSift:
		t.Fatalf("ReorderType = %v, want BoundedSift", c.ReorderType)
	case c.MaxSwap != 10:
		t.Fatalf("MaxSwap = %d, want 10", c.MaxSwap)
	case c.MaxVar != 3:
		t.Fatalf("MaxVar = %d, want 3", c.MaxVar)
	case c.MaxGrowth != 2.0:
		t.Fatalf("MaxGrowth = %v, want 2.0", c.MaxGrowth)
	case c.SizeThreshold != 128:
		t.Fatalf("SizeThreshold = %d, want 128", c.SizeThreshold)
	case c.TimeLimitMs != 1500:
		t.Fatalf("TimeLimitMs = %d, want 1500", c.TimeLimitMs)
	}
}

func TestOptionsIgnoreNonPositiveOverrides(t *testing.T) {
	c := defaultConfig()
	WithWorkers(-1)(c) // negative is rejected; 0 (GOMAXPROCS) is valid and accepted
	if c.Workers != defaultWorkers {
		t.Fatalf("WithWorkers(-1) should leave Workers untouched, got %d", c.Workers)
	}

	WithTableSize(0)(c)
	if c.TableSize != defaultTableSize {
		t.Fatalf("WithTableSize(0) should leave TableSize untouched, got %d", c.TableSize)
	}

	WithMaxGrowth(1.0)(c)
	if c.MaxGrowth != defaultMaxGrowth {
		t.Fatalf("WithMaxGrowth(1.0) should be rejected (must be > 1.0), got %v", c.MaxGrowth)
	}
}
