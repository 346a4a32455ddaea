package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

func TestEvaluate(t *testing.T) {
	t.Run("Returns Won(X) when X owns a row", func(t *testing.T) {
		// Given: a board where X has the top row
		board := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerO, entity.PlayerO, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: X is the winner
		assert.Equal(t, entity.Won(entity.PlayerX), outcome)
	})

	t.Run("Returns Won(O) when O owns a diagonal", func(t *testing.T) {
		board := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerO,
			entity.EmptyCell, entity.PlayerO, entity.EmptyCell,
			entity.PlayerO, entity.EmptyCell, entity.PlayerX,
		}

		assert.Equal(t, entity.Won(entity.PlayerO), Evaluate(board))
	})

	t.Run("Win on the last cell is a win, not a draw", func(t *testing.T) {
		// Given: a full board where X completed the left column with the final move
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
			entity.PlayerX, entity.PlayerX, entity.PlayerO,
		}

		// Then: the win takes precedence
		assert.Equal(t, entity.Won(entity.PlayerX), Evaluate(board))
	})

	t.Run("Returns Drawn for a full board without a line", func(t *testing.T) {
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
		}

		assert.Equal(t, entity.Drawn(), Evaluate(board))
	})

	t.Run("Returns InProgress for an empty board", func(t *testing.T) {
		assert.Equal(t, entity.InProgress(), Evaluate(entity.Board{}))
	})
}

// TestEvaluate_AllBoards walks every assignment of X, O and empty to the nine
// cells and checks Evaluate against a direct reading of the rules.
func TestEvaluate_AllBoards(t *testing.T) {
	marks := []entity.Symbol{entity.EmptyCell, entity.PlayerX, entity.PlayerO}

	total := 1
	for i := 0; i < entity.BoardSize; i++ {
		total *= len(marks)
	}

	for n := 0; n < total; n++ {
		var board entity.Board
		code := n
		for i := range board {
			board[i] = marks[code%len(marks)]
			code /= len(marks)
		}

		uniform := func(mark entity.Symbol) bool {
			for _, combo := range WinCombos {
				if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
					return true
				}
			}
			return false
		}

		full := true
		for _, cell := range board {
			if cell == entity.EmptyCell {
				full = false
			}
		}

		outcome := Evaluate(board)

		switch {
		case uniform(entity.PlayerX):
			require.Equal(t, entity.Won(entity.PlayerX), outcome, "board %v", board)
		case uniform(entity.PlayerO):
			require.Equal(t, entity.Won(entity.PlayerO), outcome, "board %v", board)
		case full:
			require.Equal(t, entity.Drawn(), outcome, "board %v", board)
		default:
			require.Equal(t, entity.InProgress(), outcome, "board %v", board)
		}
	}
}

func TestOpponent(t *testing.T) {
	assert.Equal(t, entity.PlayerO, Opponent(entity.PlayerX))
	assert.Equal(t, entity.PlayerX, Opponent(entity.PlayerO))
}
