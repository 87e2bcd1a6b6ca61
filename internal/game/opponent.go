package game

import "math/rand/v2"

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

// globalPicker uses the runtime's goroutine-safe source.
type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// fallbackOrder is the corner-then-edge order used when no rule fires.
var fallbackOrder = [8]int{0, 2, 6, 8, 1, 3, 5, 7}

const center = 4

// Opponent is the automated player. It is deliberately beatable: it follows a
// fixed rule chain instead of searching the game tree.
type Opponent struct {
	pick Picker
}

// NewOpponent returns an opponent drawing its fallback choice from pick.
// A nil pick uses the process-wide random source.
func NewOpponent(pick Picker) *Opponent {
	if pick == nil {
		pick = globalPicker{}
	}
	return &Opponent{pick: pick}
}

// Move selects the cell mark should play on b. Rules, first match wins:
//  1. complete a line holding two of mark and one empty cell
//  2. block a line holding two of the other side and one empty cell
//  3. take the center
//  4. a random empty cell among [0,2,6,8,1,3,5,7]
//
// ErrNoLegalMove is returned when the board is full.
func (o *Opponent) Move(b Board, mark Mark) (int, error) {
	if idx, ok := completing(b, mark); ok {
		return idx, nil
	}
	if idx, ok := completing(b, mark.Other()); ok {
		return idx, nil
	}
	if b[center] == Empty {
		return center, nil
	}

	choices := make([]int, 0, len(fallbackOrder))
	for _, i := range fallbackOrder {
		if b[i] == Empty {
			choices = append(choices, i)
		}
	}
	if len(choices) == 0 {
		return -1, ErrNoLegalMove
	}
	return choices[o.pick.IntN(len(choices))], nil
}

// completing returns the empty cell of the first line that holds exactly
// two of mark and one empty cell.
func completing(b Board, mark Mark) (int, bool) {
	for _, ln := range lines {
		owned, free := 0, -1
		for _, i := range ln {
			switch b[i] {
			case mark:
				owned++
			case Empty:
				free = i
			}
		}
		if owned == 2 && free >= 0 {
			return free, true
		}
	}
	return -1, false
}
