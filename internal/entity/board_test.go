package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoard_InRange(t *testing.T) {
	t.Run("Accepts every board position", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// Then: cells 0 through 8 are in range
		for cell := 0; cell < BoardSize; cell++ {
			assert.True(t, board.InRange(cell), "cell %d", cell)
		}
	})

	t.Run("Rejects negative and oversized indexes", func(t *testing.T) {
		var board Board

		assert.False(t, board.InRange(-1))
		assert.False(t, board.InRange(9))
		assert.False(t, board.InRange(20))
	})
}

func TestBoard_IsFull(t *testing.T) {
	t.Run("Empty board is not full", func(t *testing.T) {
		var board Board

		assert.False(t, board.IsFull())
		assert.Equal(t, 0, board.Filled())
	})

	t.Run("Board without empty cells is full", func(t *testing.T) {
		// Given: a board with every cell occupied
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
			PlayerO, PlayerX, PlayerO,
		}

		// Then: it is full
		assert.True(t, board.IsFull())
		assert.Equal(t, BoardSize, board.Filled())
	})
}

func TestOutcome(t *testing.T) {
	assert.True(t, InProgress().IsInProgress())
	assert.False(t, InProgress().IsFinished())

	assert.True(t, Won(PlayerX).IsFinished())
	assert.Equal(t, PlayerX, Won(PlayerX).Winner)
	assert.True(t, Drawn().IsFinished())

	// abandoned matches end without a result on the board
	assert.False(t, Abandoned().IsFinished())
	assert.False(t, Abandoned().IsInProgress())
}
