package game

import (
	"ctchen222/tictactoe-service/internal/apperror"
	"fmt"
	"time"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusWon, StatusDraw:
		return true
	}
	return false
}

// Terminal reports whether the game accepts no further moves.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusDraw
}

// FirstPlayer always opens a game.
const FirstPlayer = PlayerX

type Game struct {
	ID            int64     `json:"id"`
	Board         Board     `json:"board"`
	CurrentPlayer Mark      `json:"current_player"`
	Status        Status    `json:"status"`
	Winner        Mark      `json:"winner"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewGame returns a fresh, unsaved game created at now.
func NewGame(now time.Time) *Game {
	return &Game{
		Board:         Board{},
		CurrentPlayer: FirstPlayer,
		Status:        StatusInProgress,
		Winner:        Empty,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Apply places the current player's mark at position and returns the resulting
// game. The receiver is never modified, so a rejected move leaves no trace.
func (g Game) Apply(position int, now time.Time) (Game, error) {
	if position < 0 || position >= BoardSize {
		return g, fmt.Errorf("%w: got %d", apperror.ErrPositionOutOfRange, position)
	}
	if g.Status != StatusInProgress {
		return g, apperror.ErrGameCompleted
	}
	if g.Board[position] != Empty {
		return g, fmt.Errorf("%w: position %d", apperror.ErrCellOccupied, position)
	}

	next := g
	next.Board[position] = g.CurrentPlayer
	next.Status, next.Winner = next.Board.Outcome()

	// The mover stays current once the game is over.
	if next.Status == StatusInProgress {
		next.CurrentPlayer = g.CurrentPlayer.Opponent()
	}
	next.touch(now)
	return next, nil
}

// Reset reverts the game to its creation defaults. ID and CreatedAt are kept.
func (g *Game) Reset(now time.Time) {
	g.Board = Board{}
	g.CurrentPlayer = FirstPlayer
	g.Status = StatusInProgress
	g.Winner = Empty
	g.touch(now)
}

// touch advances UpdatedAt, keeping it strictly increasing.
func (g *Game) touch(now time.Time) {
	if !now.After(g.UpdatedAt) {
		now = g.UpdatedAt.Add(time.Microsecond)
	}
	g.UpdatedAt = now
}

// Check verifies the stored state is self-consistent.
func (g *Game) Check() error {
	if !g.CurrentPlayer.Valid() {
		return fmt.Errorf("invalid current player %q", g.CurrentPlayer)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("invalid status %q", g.Status)
	}
	status, winner := g.Board.Outcome()
	if status != g.Status || winner != g.Winner {
		return fmt.Errorf("status %s/%q does not match board (%s/%q)", g.Status, g.Winner, status, winner)
	}
	if g.UpdatedAt.Before(g.CreatedAt) {
		return fmt.Errorf("updated_at %s before created_at %s", g.UpdatedAt, g.CreatedAt)
	}
	return nil
}
