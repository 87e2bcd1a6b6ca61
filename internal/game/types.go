// internal/game/types.go
//
// Core type definitions for the tic-tac-toe engine.
// Defines:
//   - Mark: content of a single cell (empty, X or O).
//   - Board: the 3x3 grid stored row-major as 9 cells.
//   - Match: state for a single server-hosted game against the opponent.

package game

import "errors"

// Mark is the content of one board cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

// String renders a mark the way the page draws it ("" for empty).
func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Other returns the opposing symbol. Empty maps to Empty.
func (m Mark) Other() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board is a 3x3 grid, index = row*3 + col.
type Board [9]Mark

// Errors returned by engine operations.
var (
	// ErrIllegalMove is returned for out-of-range indices, occupied cells,
	// invalid marks, and moves on a finished board.
	ErrIllegalMove = errors.New("illegal move")

	// ErrNoLegalMove means the opponent was asked to move on a full board.
	ErrNoLegalMove = errors.New("no legal move")
)

// lines holds the 8 winning triples: rows, columns, diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Match holds the state of a single server-hosted game.
// The human always plays X and moves first; the opponent plays O.
type Match struct {
	ID     string // Unique match identifier.
	Board  Board  // Current grid.
	Turn   Mark   // Side to move; Empty once the match is over.
	Winner Mark   // Winning side, Empty for a draw or an unfinished match.
	Over   bool   // True once a line is complete or the board is full.
	Moves  int    // Plies played so far (both sides).
}
