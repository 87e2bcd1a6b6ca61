// internal/game/engine.go
//
// Board rules for tic-tac-toe.
// Responsibilities:
//   - Validate and apply a single ply (Apply).
//   - Detect a winner over the 8 fixed lines (Winner).
//   - Report terminal positions: a complete line or a full board (Terminal).
//
// Board is an array value, so every operation works on a copy and the
// caller's board is never modified.
package game

import "fmt"

// Apply places mark at index and returns the resulting board.
// The move is rejected with ErrIllegalMove when the index is outside 0..8,
// the cell is taken, the mark is not X or O, or the board is already terminal.
func (b Board) Apply(index int, mark Mark) (Board, error) {
	if mark != X && mark != O {
		return b, fmt.Errorf("%w: invalid mark %d", ErrIllegalMove, mark)
	}
	if index < 0 || index >= len(b) {
		return b, fmt.Errorf("%w: index %d out of range", ErrIllegalMove, index)
	}
	if b.Terminal() {
		return b, fmt.Errorf("%w: game over", ErrIllegalMove)
	}
	if b[index] != Empty {
		return b, fmt.Errorf("%w: cell %d occupied", ErrIllegalMove, index)
	}
	b[index] = mark
	return b, nil
}

// Winner returns the owner of the first complete line, or Empty.
// All 8 lines are inspected in fixed order.
func (b Board) Winner() Mark {
	for _, ln := range lines {
		m := b[ln[0]]
		if m != Empty && m == b[ln[1]] && m == b[ln[2]] {
			return m
		}
	}
	return Empty
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Terminal reports whether the game on this board is over (win or draw).
func (b Board) Terminal() bool {
	return b.Winner() != Empty || b.Full()
}

// Cells renders the board as 9 strings ("X", "O" or "").
func (b Board) Cells() []string {
	out := make([]string, len(b))
	for i, c := range b {
		out[i] = c.String()
	}
	return out
}
