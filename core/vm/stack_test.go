package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	st := newstack()
	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	require.Equal(t, 2, st.len())

	top := st.pop()
	require.Equal(t, uint64(2), top.Uint64())
	require.Equal(t, uint64(1), st.peek().Uint64())
}

func TestStackDupSwap(t *testing.T) {
	st := newstack()
	st.push(uint256.NewInt(10))
	st.push(uint256.NewInt(20))

	st.dup(2)
	require.Equal(t, 3, st.len())
	require.Equal(t, uint64(10), st.peek().Uint64())

	st.swap(3)
	require.Equal(t, uint64(10), st.Back(2).Uint64())
	require.Equal(t, uint64(10), st.peek().Uint64())
	require.Equal(t, uint64(20), st.Back(1).Uint64())
}

func TestStackBounds(t *testing.T) {
	st := newstack()
	require.IsType(t, &ErrStackUnderflow{}, st.require(1, 0))

	for i := 0; i < 1024; i++ {
		st.push(uint256.NewInt(uint64(i)))
	}
	require.NoError(t, st.require(1, 0))
	require.IsType(t, &ErrStackOverflow{}, st.require(0, 1))
}
