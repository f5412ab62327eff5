package register

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateIsBumpPointer(t *testing.T) {
	a := New("main")
	r0, err := a.Allocate()
	require.NoError(t, err)
	r1, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, byte(0), r0)
	require.Equal(t, byte(1), r1)
}

func TestFreeRequiresLIFOOrder(t *testing.T) {
	a := New("main")
	r0, _ := a.Allocate()
	r1, _ := a.Allocate()
	err := a.Free(r0)
	require.Error(t, err, "freeing a non-top register must fail")
	require.NoError(t, a.Free(r1))
	require.NoError(t, a.Free(r0))
}

func TestOutOfRegistersAt256(t *testing.T) {
	a := New("main")
	for i := 0; i < MaxRegisters; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	_, err := a.Allocate()
	require.Error(t, err)
	var oor *OutOfRegisters
	require.ErrorAs(t, err, &oor)
}

func TestPersistentRegisterSurvivesFree(t *testing.T) {
	a := New("main")
	r, _ := a.Allocate()
	a.MarkPersistent(r)
	require.NoError(t, a.Free(r), "freeing a persistent register must be a no-op, not an error")
	require.Equal(t, 1, a.HighWater())
}

func TestSnapshotRestoreUndoesAllocations(t *testing.T) {
	a := New("main")
	_, _ = a.Allocate()
	snap := a.Snapshot()

	_, _ = a.Allocate()
	_, _ = a.Allocate()
	require.Equal(t, 3, a.HighWater())

	a.Restore(snap)
	require.Equal(t, 1, a.HighWater())
}

func TestScopesEndReturnsDeclaredLocalsInReverseOrder(t *testing.T) {
	s := NewScopes()
	s.Begin()
	s.Declare("a", 0)
	s.Declare("b", 1)
	popped := s.End()
	require.Equal(t, []string{"b", "a"}, []string{popped[0].Name, popped[1].Name})
}

func TestMarkCapturedPromotesToPersistent(t *testing.T) {
	s := NewScopes()
	s.Begin()
	s.Declare("x", 2)
	s.MarkCaptured("x")
	local, ok := s.Resolve("x")
	require.True(t, ok)
	require.True(t, local.Persistent)
}
