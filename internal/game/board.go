package game

import (
	"encoding/json"
	"fmt"
)

// Mark represents the mark of a player (X, O) or an empty cell.
type Mark string

const (
	Empty   Mark = ""
	PlayerX Mark = "X"
	PlayerO Mark = "O"
)

// BoardSize is the number of cells on the board.
const BoardSize = 9

// Lines holds every winning triple: rows, then columns, then diagonals.
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Opponent returns the other player's mark.
func (m Mark) Opponent() Mark {
	if m == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Valid reports whether m is one of the player marks.
func (m Mark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// MarshalJSON encodes an empty cell as null.
func (m Mark) MarshalJSON() ([]byte, error) {
	if m == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

func (m *Mark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch mark := Mark(s); mark {
	case Empty, PlayerX, PlayerO:
		*m = mark
		return nil
	default:
		return fmt.Errorf("unknown mark %q", s)
	}
}

// Board is the 3x3 grid flattened row by row. Position p is at row p/3, column p%3.
type Board [BoardSize]Mark

// Winner returns the mark filling the first complete line, or Empty.
func (b Board) Winner() Mark {
	for _, line := range Lines {
		a := b[line[0]]
		if a != Empty && a == b[line[1]] && a == b[line[2]] {
			return a
		}
	}
	return Empty
}

// Full reports whether no cell is empty.
func (b Board) Full() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// Outcome evaluates the board. The winner is Empty unless status is StatusWon.
func (b Board) Outcome() (Status, Mark) {
	if winner := b.Winner(); winner != Empty {
		return StatusWon, winner
	}
	if b.Full() {
		return StatusDraw, Empty
	}
	return StatusInProgress, Empty
}
