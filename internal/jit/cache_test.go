package jit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryCacheStoreAndLookup(t *testing.T) {
	cache := NewEntryCache()
	key := CacheKey{FunctionIndex: 1, LoopIndex: 0}
	_, ok := cache.Lookup(key)
	require.False(t, ok)

	prog := &Program{FunctionIndex: 1, LoopIndex: 0}
	cache.Store(key, prog)
	got, ok := cache.Lookup(key)
	require.True(t, ok)
	require.Same(t, prog, got)
}

func TestEntryCacheBlocklistEvictsAndBlocks(t *testing.T) {
	cache := NewEntryCache()
	key := CacheKey{FunctionIndex: 2, LoopIndex: 1}
	cache.Store(key, &Program{})
	cache.Blocklist(key)

	_, ok := cache.Lookup(key)
	require.False(t, ok)
	require.True(t, cache.IsBlocklisted(key))
}

func TestEntryCacheInvalidateAllThenSweep(t *testing.T) {
	cache := NewEntryCache()
	key := CacheKey{FunctionIndex: 3, LoopIndex: 0}
	cache.Store(key, &Program{})

	_, ok := cache.Lookup(key)
	require.True(t, ok)

	cache.InvalidateAll()
	_, ok = cache.Lookup(key)
	require.False(t, ok, "pending-invalidate entries must not be served")

	dropped := cache.Sweep()
	require.Equal(t, 1, dropped)
}

func TestFailureHistoryWrapsAtCapacity(t *testing.T) {
	h := newFailureHistory(2)
	h.record(CacheKey{FunctionIndex: 1}, TranslationResult{Status: StatusUnhandledOpcode})
	h.record(CacheKey{FunctionIndex: 2}, TranslationResult{Status: StatusInvalidInput})
	h.record(CacheKey{FunctionIndex: 3}, TranslationResult{Status: StatusOutOfMemory})

	recent := h.Recent()
	require.Len(t, recent, 2)
	require.Equal(t, StatusInvalidInput, recent[0].Status)
	require.Equal(t, StatusOutOfMemory, recent[1].Status)
}
