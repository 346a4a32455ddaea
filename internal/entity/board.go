package entity

// Symbol is the mark a seat plays with. EmptyCell marks an unoccupied cell.
type Symbol string

const (
	PlayerX Symbol = "X"
	PlayerO Symbol = "O"

	EmptyCell Symbol = ""
)

// BoardSize is the number of cells on the 3x3 board.
const BoardSize = 9

// Board is the row-major 3x3 grid, cells 0 through 8.
type Board [BoardSize]Symbol

// InRange reports whether cell addresses a board position.
func (that Board) InRange(cell int) bool {
	return cell >= 0 && cell < len(that)
}

// IsFull reports whether no cell is empty.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Filled returns the number of occupied cells.
func (that Board) Filled() int {
	n := 0
	for _, cell := range that {
		if cell != EmptyCell {
			n++
		}
	}

	return n
}
