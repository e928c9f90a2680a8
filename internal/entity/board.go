package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const BoardSize = 3

// Position addresses a single cell by row and column.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WinLines lists the 8 winning triples: rows, then columns, then diagonals.
var WinLines = [8][3]Position{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is the 3x3 grid. The zero value is an empty board and a Board is safe to copy by value.
type Board struct {
	cells [BoardSize][BoardSize]Player
}

func (that *Board) CellAt(row, col int) (Player, error) {
	if !inRange(row, col) {
		return EmptyCell, fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfRange, row, col)
	}

	return that.cells[row][col], nil
}

func (that *Board) SetCell(row, col int, player Player) error {
	if !player.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}

	if !inRange(row, col) {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfRange, row, col)
	}

	if that.cells[row][col] != EmptyCell {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrCellOccupied, row, col)
	}

	that.cells[row][col] = player

	return nil
}

// EmptyCells returns the free cells in row-major order.
func (that *Board) EmptyCells() []Position {
	free := make([]Position, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that.cells[row][col] == EmptyCell {
				free = append(free, Position{Row: row, Col: col})
			}
		}
	}

	return free
}

func (that *Board) IsFull() bool {
	for row := range BoardSize {
		for col := range BoardSize {
			if that.cells[row][col] == EmptyCell {
				return false
			}
		}
	}

	return true
}

func (that *Board) Winner(player Player) bool {
	_, ok := that.WinningLine(player)
	return ok
}

// WinningLine returns the first line fully owned by player, in WinLines order.
func (that *Board) WinningLine(player Player) ([3]Position, bool) {
	if !player.IsValid() {
		return [3]Position{}, false
	}

	for _, line := range WinLines {
		if that.owns(line, player) {
			return line, true
		}
	}

	return [3]Position{}, false
}

// DetermineResult computes the result after mover placed a mark. A win is checked before a
// full board so that a move completing a line on the last free cell is a win, not a draw.
func (that *Board) DetermineResult(mover Player) Result {
	if that.Winner(mover) {
		return Win(mover)
	}

	if that.IsFull() {
		return Draw()
	}

	return InProgress()
}

func (that *Board) Clear() {
	that.cells = [BoardSize][BoardSize]Player{}
}

// Cells returns a copy of the grid.
func (that *Board) Cells() [BoardSize][BoardSize]Player {
	return that.cells
}

func (that *Board) owns(line [3]Position, player Player) bool {
	for _, pos := range line {
		if that.cells[pos.Row][pos.Col] != player {
			return false
		}
	}

	return true
}

func inRange(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}
