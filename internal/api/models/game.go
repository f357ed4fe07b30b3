package models

import (
	"ctchen222/tictactoe-service/internal/game"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// GameRecord is the row shape of the games table.
type GameRecord struct {
	ID            int64          `db:"id"`
	Board         string         `db:"board"`
	CurrentPlayer string         `db:"current_player"`
	Status        string         `db:"status"`
	Winner        sql.NullString `db:"winner"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// NewGameRecord converts a game into its row shape.
func NewGameRecord(g *game.Game) (*GameRecord, error) {
	board, err := json.Marshal(g.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return &GameRecord{
		ID:            g.ID,
		Board:         string(board),
		CurrentPlayer: string(g.CurrentPlayer),
		Status:        string(g.Status),
		Winner:        sql.NullString{String: string(g.Winner), Valid: g.Winner != game.Empty},
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}, nil
}

// Game converts the row back into a game and checks it is consistent.
func (r *GameRecord) Game() (*game.Game, error) {
	g := &game.Game{
		ID:            r.ID,
		CurrentPlayer: game.Mark(r.CurrentPlayer),
		Status:        game.Status(r.Status),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.Winner.Valid {
		g.Winner = game.Mark(r.Winner.String)
	}
	if err := json.Unmarshal([]byte(r.Board), &g.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board of game %d: %w", r.ID, err)
	}
	if err := g.Check(); err != nil {
		return nil, fmt.Errorf("corrupt game %d: %w", r.ID, err)
	}
	return g, nil
}

// GameIDRequest binds the game id from the request path.
type GameIDRequest struct {
	GameID int64 `uri:"id" json:"game_id" binding:"required,min=1" validate:"required,min=1"`
}

// MakeMoveRequest defines the structure for a move request.
type MakeMoveRequest struct {
	GameID   int64 `json:"game_id" validate:"required,min=1"`
	Position *int  `json:"position" binding:"required,cell" validate:"required,cell"`
}

// Stats summarises all stored games.
type Stats struct {
	Total      int       `json:"total"`
	XWins      int       `json:"x_wins"`
	OWins      int       `json:"o_wins"`
	Draws      int       `json:"draws"`
	InProgress int       `json:"in_progress"`
	Leader     game.Mark `json:"leader"`
}

// HealthResponse is returned by the healthcheck endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
