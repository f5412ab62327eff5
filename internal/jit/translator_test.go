package jit

import (
	"testing"

	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
	"github.com/stretchr/testify/require"
)

func buildAddLoopChunk(t *testing.T) *chunk.Chunk {
	t.Helper()
	c := chunk.New("test.orus")
	idx, err := c.AddConstant(value.I32(1))
	require.NoError(t, err)
	// r0 <- const[idx]; r1 <- r1 + r0
	c.Write(byte(chunk.OP_LOAD_CONST), 1, 1)
	c.Write(0, 1, 1)
	c.Write(byte(idx>>8), 1, 1)
	c.Write(byte(idx), 1, 1)
	c.Write(byte(chunk.OP_ADD_I32), 2, 1)
	c.Write(1, 2, 1)
	c.Write(1, 2, 1)
	c.Write(0, 2, 1)
	return c
}

func TestTranslateLoopLowersSupportedOpcodes(t *testing.T) {
	c := buildAddLoopChunk(t)
	tr := New(true, StageI32Only)
	result := tr.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusOK, result.Status)
	require.NotNil(t, result.Program)
	require.Equal(t, IRLoadConst, result.Program.Instructions[0].Op)
	require.Equal(t, IRAdd, result.Program.Instructions[1].Op)
	require.Equal(t, IRReturn, result.Program.Instructions[len(result.Program.Instructions)-1].Op)
}

func TestTranslateLoopRejectsWhenDisabled(t *testing.T) {
	c := buildAddLoopChunk(t)
	tr := New(false, StageStrings)
	result := tr.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusRolloutDisabled, result.Status)
}

func TestTranslateLoopRejectsUnhandledOpcode(t *testing.T) {
	c := chunk.New("test.orus")
	c.Write(byte(chunk.OP_PRINT), 1, 1)
	c.Write(0, 1, 1)
	c.Write(1, 1, 1)
	tr := New(true, StageStrings)
	result := tr.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusUnhandledOpcode, result.Status)
}

func TestTranslateLoopGatesFloatBehindRolloutStage(t *testing.T) {
	c := chunk.New("test.orus")
	c.Write(byte(chunk.OP_ADD_F64), 1, 1)
	c.Write(2, 1, 1)
	c.Write(0, 1, 1)
	c.Write(1, 1, 1)

	narrow := New(true, StageI32Only)
	result := narrow.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusUnsupportedValueKind, result.Status)

	wide := New(true, StageFloats)
	result = wide.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusOK, result.Status)
}

func TestTranslateLoopInsertsPeriodicSafepoints(t *testing.T) {
	c := chunk.New("test.orus")
	for i := 0; i < safepointInterval+2; i++ {
		c.Write(byte(chunk.OP_MOVE), 1, 1)
		c.Write(0, 1, 1)
		c.Write(0, 1, 1)
	}
	tr := New(true, StageStrings)
	result := tr.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusOK, result.Status)

	safepoints := 0
	for _, instr := range result.Program.Instructions {
		if instr.Op == IRSafepoint {
			safepoints++
		}
	}
	require.GreaterOrEqual(t, safepoints, 1)
}

func TestTranslateLoopResolvesForwardJumpToIRIndex(t *testing.T) {
	c := chunk.New("test.orus")
	// r0 <- r0 + r1; JUMP_IF_FALSE r0 -> past the increment; r2 <- r2 + r0
	c.Write(byte(chunk.OP_ADD_I32), 1, 1)
	c.Write(0, 1, 1)
	c.Write(0, 1, 1)
	c.Write(1, 1, 1)
	jumpAt := len(c.Code)
	c.Write(byte(chunk.OP_JUMP_IF_FALSE), 2, 1)
	c.Write(0, 2, 1)
	c.Write(0xFF, 2, 1)
	c.Write(0xFF, 2, 1)
	c.Write(byte(chunk.OP_ADD_I32), 3, 1)
	c.Write(2, 3, 1)
	c.Write(2, 3, 1)
	c.Write(0, 3, 1)
	end := len(c.Code)

	dist := end - (jumpAt + 4)
	c.Code[jumpAt+2] = byte(dist >> 8)
	c.Code[jumpAt+3] = byte(dist)

	tr := New(true, StageI32Only)
	result := tr.TranslateLoop(c, 0, 0, 0, end, nil)
	require.Equal(t, StatusOK, result.Status)

	jumpIdx := -1
	for i, instr := range result.Program.Instructions {
		if instr.Op == IRJumpIfFalse {
			jumpIdx = i
		}
	}
	require.NotEqual(t, -1, jumpIdx)
	returnIdx := len(result.Program.Instructions) - 1
	require.Equal(t, IRReturn, result.Program.Instructions[returnIdx].Op)
	require.Equal(t, int64(returnIdx-jumpIdx), result.Program.Instructions[jumpIdx].Immediate,
		"jump past the translated region's last real instruction should land on the trailing RETURN")
}

func TestTranslateLoopRecordsValueKindOnInstructions(t *testing.T) {
	c := buildAddLoopChunk(t)
	tr := New(true, StageI32Only)
	result := tr.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusOK, result.Status)
	require.Equal(t, KindI32, result.Program.Instructions[0].Kind)
	require.Equal(t, KindI32, result.Program.Instructions[1].Kind)
	require.True(t, result.Program.CheckRollout(StageI32Only))

	withFloat := &Program{Instructions: []IRInstr{{Op: IRAdd, Kind: KindFloat}}}
	require.False(t, withFloat.CheckRollout(StageI32Only))
	require.True(t, withFloat.CheckRollout(StageFloats))
}

func TestInterpBackendRunsTranslatedAdd(t *testing.T) {
	c := buildAddLoopChunk(t)
	tr := New(true, StageI32Only)
	result := tr.TranslateLoop(c, 0, 0, 0, len(c.Code), nil)
	require.Equal(t, StatusOK, result.Status)

	registers := make([]uint64, 4)
	registers[1] = 41
	backend := InterpBackend{}
	err := backend.Run(result.Program, registers)
	require.NoError(t, err)
	require.EqualValues(t, 42, registers[1])
}
