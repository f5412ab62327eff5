package jit

import (
	"testing"

	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/stretchr/testify/require"
)

func TestQueueTierUpSkipsWithoutBackend(t *testing.T) {
	c := buildAddLoopChunk(t)
	ctrl := NewController(true, nil, New(true, StageI32Only), 8)
	decision, prog := ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionSkip, decision)
	require.Nil(t, prog)
}

func TestQueueTierUpSkipsLoopIndexOutOfBounds(t *testing.T) {
	c := buildAddLoopChunk(t)
	ctrl := NewController(true, InterpBackend{}, New(true, StageI32Only), 8)
	decision, _ := ctrl.QueueTierUp(-1, 5, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionSkip, decision)
}

func TestQueueTierUpTranslatesThenCacheHits(t *testing.T) {
	c := buildAddLoopChunk(t)
	ctrl := NewController(true, InterpBackend{}, New(true, StageI32Only), 8)

	decision, prog := ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionTranslate, decision)
	require.NotNil(t, prog)

	decision, prog2 := ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionCacheHit, decision)
	require.Same(t, prog, prog2)
}

func TestQueueTierUpBlocklistsOnRepeatedFailure(t *testing.T) {
	c := chunk.New("test.orus")
	c.Write(byte(chunk.OP_PRINT), 1, 1)
	c.Write(0, 1, 1)
	c.Write(1, 1, 1)

	ctrl := NewController(true, InterpBackend{}, New(true, StageStrings), 8)
	decision, _ := ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionSkip, decision)
	key := CacheKey{FunctionIndex: -1, LoopIndex: 0}
	require.True(t, ctrl.Cache.IsBlocklisted(key))
	require.Len(t, ctrl.Failures.Recent(), 1)
	require.EqualValues(t, 1, ctrl.CompilationCount)
	require.EqualValues(t, 0, ctrl.TranslationSuccessCount)

	fallback, ok := ctrl.Cache.entries[key]
	require.True(t, ok, "a fallback entry should be installed so the attempt leaves a trace")
	require.Len(t, fallback.program.Instructions, 1)
	require.Equal(t, IRReturn, fallback.program.Instructions[0].Op)

	decision, _ = ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionSkip, decision)
	require.Len(t, ctrl.Failures.Recent(), 1, "blocklisted loop should not be retranslated")
	require.EqualValues(t, 1, ctrl.CompilationCount, "blocklisted loop should not re-attempt translation")
}

func TestQueueTierUpTracksInvocationAndCacheCounters(t *testing.T) {
	c := buildAddLoopChunk(t)
	ctrl := NewController(true, InterpBackend{}, New(true, StageI32Only), 8)

	decision, _ := ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionTranslate, decision)
	require.EqualValues(t, 1, ctrl.CacheMisses)
	require.EqualValues(t, 0, ctrl.CacheHits)
	require.EqualValues(t, 1, ctrl.InvocationCount)
	require.EqualValues(t, 1, ctrl.CompilationCount)
	require.EqualValues(t, 1, ctrl.TranslationSuccessCount)

	decision, _ = ctrl.QueueTierUp(-1, 0, nil, c, 1, 0, len(c.Code), nil)
	require.Equal(t, DecisionCacheHit, decision)
	require.EqualValues(t, 1, ctrl.CacheMisses)
	require.EqualValues(t, 1, ctrl.CacheHits)
	require.EqualValues(t, 2, ctrl.InvocationCount)
	require.EqualValues(t, 1, ctrl.CompilationCount, "cache hit should not re-translate")
}
