// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheGetPutClear(t *testing.T) {
	c, err := NewCache(16)
	require.NoError(t, err)

	a, b, c2 := MakeEdge(1, false), MakeEdge(2, true), MakeEdge(3, false)
	_, ok := c.Get(OPand, a, b, c2)
	require.False(t, ok, "fresh cache should miss")

	want := MakeEdge(4, false)
	c.Put(OPand, a, b, c2, want)
	got, ok := c.Get(OPand, a, b, c2)
	require.True(t, ok)
	require.Equal(t, want, got)

	// a different operator on the same operands is a distinct entry.
	_, ok = c.Get(OPor, a, b, c2)
	require.False(t, ok)

	require.Equal(t, 1, c.Len())
	c.Clear()
	require.Equal(t, 0, c.Len())
	_, ok = c.Get(OPand, a, b, c2)
	require.False(t, ok, "Clear should evict every entry")
}

func TestCacheDefaultsOnNonPositiveSize(t *testing.T) {
	c, err := NewCache(0)
	require.NoError(t, err)
	require.NotNil(t, c)
}
