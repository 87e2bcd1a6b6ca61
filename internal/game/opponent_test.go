package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPicker always returns the same offset (clamped to n-1).
type fixedPicker int

func (f fixedPicker) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func TestOpponent_TakesWinBeforeBlock(t *testing.T) {
	// X threatens 2, O can win at 5.
	idx, err := NewOpponent(fixedPicker(0)).Move(board(t, "XX_OO____"), O)
	require.NoError(t, err)
	assert.Equal(t, 5, idx)
}

func TestOpponent_Blocks(t *testing.T) {
	idx, err := NewOpponent(fixedPicker(0)).Move(board(t, "XX_O_____"), O)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestOpponent_TakesCenter(t *testing.T) {
	for _, s := range []string{"X________", "_X_______", "X_______O"} {
		idx, err := NewOpponent(fixedPicker(0)).Move(board(t, s), O)
		require.NoError(t, err)
		assert.Equal(t, 4, idx, s)
	}
}

func TestOpponent_FallbackFollowsCornerThenEdgeOrder(t *testing.T) {
	// Center taken, no threats: empty cells in order are 2, 6, 8, 1, 3, 5, 7.
	b := board(t, "X___O____")
	want := []int{2, 6, 8, 1, 3, 5, 7}
	for off, cell := range want {
		idx, err := NewOpponent(fixedPicker(off)).Move(b, O)
		require.NoError(t, err)
		assert.Equal(t, cell, idx)
	}
}

func TestOpponent_FallbackOnlyPicksEmptyCells(t *testing.T) {
	b := board(t, "X___O____")
	opp := NewOpponent(nil)
	for i := 0; i < 50; i++ {
		idx, err := opp.Move(b, O)
		require.NoError(t, err)
		assert.Contains(t, []int{2, 6, 8, 1, 3, 5, 7}, idx)
	}
}

func TestOpponent_NoLegalMove(t *testing.T) {
	_, err := NewOpponent(nil).Move(board(t, "XOXXOOOXX"), O)
	require.ErrorIs(t, err, ErrNoLegalMove)
}

func TestOpponent_WinsAsX(t *testing.T) {
	idx, err := NewOpponent(nil).Move(board(t, "X_OX_O___"), X)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)
}
