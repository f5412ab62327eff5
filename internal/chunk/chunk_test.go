package chunk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

func TestAddConstantDedupsStringsByContent(t *testing.T) {
	c := New("test.nx")
	a, err := c.AddConstant(value.Str(ptr("hello")))
	require.NoError(t, err)
	b, err := c.AddConstant(value.Str(ptr("hello")))
	require.NoError(t, err)
	require.Equal(t, a, b, "identical string content must share one pool slot")

	d, err := c.AddConstant(value.Str(ptr("world")))
	require.NoError(t, err)
	require.NotEqual(t, a, d)
}

func TestAddConstantRejectsOverflow(t *testing.T) {
	c := New("test.nx")
	for i := 0; i < 1<<16; i++ {
		_, err := c.AddConstant(value.I32(int32(i)))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(value.I32(1))
	require.Error(t, err)
	var tooMany *TooManyConstants
	require.ErrorAs(t, err, &tooMany)
}

func TestDisassembleDoesNotPanicOnTypedArithmetic(t *testing.T) {
	c := New("test.nx")
	idx, err := c.AddConstant(value.I32(41))
	require.NoError(t, err)

	c.Write(byte(OP_LOAD_CONST), 1, 1)
	c.Write(0, 1, 1)
	c.Write(byte(idx>>8), 1, 1)
	c.Write(byte(idx), 1, 1)

	c.Write(byte(OP_ADD_I32), 1, 5)
	c.Write(0, 1, 5)
	c.Write(0, 1, 5)
	c.Write(0, 1, 5)

	c.Write(byte(OP_RETURN), 1, 9)
	c.Write(0, 1, 9)

	var buf bytes.Buffer
	c.Disassemble(&buf, "test")
	require.Contains(t, buf.String(), "LOAD_CONST")
	require.Contains(t, buf.String(), "ADD_I32")
	require.Contains(t, buf.String(), "RETURN")
}

func TestJumpInstructionReportsTarget(t *testing.T) {
	c := New("test.nx")
	c.Write(byte(OP_JUMP_IF_FALSE), 2, 1)
	c.Write(0, 2, 1) // cond register
	c.Write(0, 2, 1)
	c.Write(5, 2, 1) // +5

	var buf bytes.Buffer
	c.Disassemble(&buf, "test")
	require.Contains(t, buf.String(), "-> 9")
}

func ptr(s string) *string { return &s }
