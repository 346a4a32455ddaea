package tictactoe

import "github.com/rocketscienceinc/tictactoe-sessions/internal/entity"

// WinCombos are the rows, columns and diagonals of the board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - classifies a board as won, drawn or still in progress.
func Evaluate(board entity.Board) entity.Outcome {
	for _, mark := range []entity.Symbol{entity.PlayerX, entity.PlayerO} {
		if HasWon(board, mark) {
			return entity.Won(mark)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return entity.InProgress()
	}

	return entity.Drawn()
}

// HasWon - reports whether mark owns any complete line.
func HasWon(board entity.Board, mark entity.Symbol) bool {
	if mark == entity.EmptyCell {
		return false
	}

	for _, combo := range WinCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			return true
		}
	}

	return false
}

// Opponent - returns the other mark.
func Opponent(mark entity.Symbol) entity.Symbol {
	if mark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
