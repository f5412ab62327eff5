package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualityIsPerVariant(t *testing.T) {
	require.True(t, I32(1).Equal(I32(1)))
	require.False(t, I32(1).Equal(I64(1)), "cross-kind comparison must not unify without an explicit cast")
	require.False(t, U32(1).Equal(I32(1)))
}

func TestStringEqualityByContent(t *testing.T) {
	a, b := "hi", "hi"
	require.True(t, Str(&a).Equal(Str(&b)), "interned or not, equal content must compare equal")
}

func TestArrayEquality(t *testing.T) {
	a := NewArray([]Value{I32(1), I32(2)}, false)
	b := NewArray([]Value{I32(1), I32(2)}, true)
	require.True(t, a.Equal(b), "Fixed is not part of value identity")

	c := NewArray([]Value{I32(1), I32(3)}, false)
	require.False(t, a.Equal(c))
}

func TestStructFieldOrderTracksInsertion(t *testing.T) {
	s := NewStruct("Point", nil)
	st := s.AsStruct()
	st.Set("x", I32(1))
	st.Set("y", I32(2))
	require.Equal(t, []string{"x", "y"}, st.Order)
}

func TestFunctionHandleRoundTrip(t *testing.T) {
	v := FunctionHandle(7)
	require.Equal(t, 7, v.AsFunctionIndex())
	require.Equal(t, KindFunction, v.Kind)
}
