package profiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopBackEdgeCountsAccumulate(t *testing.T) {
	p := New(FlagLoopHits)
	key := LoopKey{FunctionIndex: 1, LoopIndex: 0}
	require.EqualValues(t, 1, p.RecordLoopBackEdge(key))
	require.EqualValues(t, 2, p.RecordLoopBackEdge(key))
	require.EqualValues(t, 2, p.LoopHitCount(key))
}

func TestDisabledFlagIsNoOp(t *testing.T) {
	p := New(0)
	key := LoopKey{FunctionIndex: 1, LoopIndex: 0}
	p.RecordLoopBackEdge(key)
	require.EqualValues(t, 0, p.LoopHitCount(key))
}

func TestHotPathsFiltersByThresholdAndSortsDescending(t *testing.T) {
	p := New(FlagLoopHits)
	hot := LoopKey{FunctionIndex: 2, LoopIndex: 0}
	cold := LoopKey{FunctionIndex: 3, LoopIndex: 0}
	for i := 0; i < 20; i++ {
		p.RecordLoopBackEdge(hot)
	}
	p.RecordLoopBackEdge(cold)

	samples := p.HotPaths(10)
	require.Len(t, samples, 1)
	require.Equal(t, hot.FunctionIndex, samples[0].FunctionIndex)
}

func TestFunctionEntryAndInstructionCounters(t *testing.T) {
	p := New(FlagFunctionEntries | FlagInstructionCounts)
	p.RecordFunctionEntry(5)
	p.RecordFunctionEntry(5)
	p.RecordInstruction(0x10)
	require.EqualValues(t, 2, p.FunctionEntryCount(5))
	require.EqualValues(t, 1, p.InstructionCount(0x10))
}
