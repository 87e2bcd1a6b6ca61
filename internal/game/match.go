// internal/game/match.go
//
// A Match is one server-hosted game between the human (X) and the Opponent (O).
// State transitions:
//   - playing (X to move) → X plies → opponent replies → playing (X to move) …
//   - any ply that completes a line or fills the board ends the match: won / lost / draw.
//
// A finished match rejects further moves.

package game

import (
	"fmt"

	"github.com/google/uuid"
)

// NewMatch returns an empty match with X to move.
func NewMatch() *Match {
	return &Match{
		ID:   uuid.NewString(),
		Turn: X,
	}
}

// Play applies the human's move at index, then lets opp answer for O when the
// match is still running. It returns the opponent's cell, or -1 when the
// opponent did not move.
func (m *Match) Play(index int, opp *Opponent) (int, error) {
	if m.Over {
		return -1, fmt.Errorf("%w: game over", ErrIllegalMove)
	}
	if m.Turn != X {
		return -1, fmt.Errorf("%w: not your turn", ErrIllegalMove)
	}
	if err := m.ply(index, X); err != nil {
		return -1, err
	}
	if m.Over {
		return -1, nil
	}

	reply, err := opp.Move(m.Board, O)
	if err != nil {
		return -1, err
	}
	if err := m.ply(reply, O); err != nil {
		return -1, err
	}
	return reply, nil
}

// ply applies one move and updates turn / terminal flags.
func (m *Match) ply(index int, mark Mark) error {
	next, err := m.Board.Apply(index, mark)
	if err != nil {
		return err
	}
	m.Board = next
	m.Moves++

	if w := next.Winner(); w != Empty {
		m.Winner, m.Over, m.Turn = w, true, Empty
		return nil
	}
	if next.Full() {
		m.Over, m.Turn = true, Empty
		return nil
	}
	m.Turn = mark.Other()
	return nil
}

// State reports the match from the human's point of view:
// "playing", "won", "lost" or "draw".
func (m *Match) State() string {
	if !m.Over {
		return "playing"
	}
	switch m.Winner {
	case X:
		return "won"
	case O:
		return "lost"
	default:
		return "draw"
	}
}
