package repository

import (
	"context"
	"ctchen222/tictactoe-service/internal/api/models"
	"ctchen222/tictactoe-service/internal/apperror"
	"ctchen222/tictactoe-service/internal/game"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.game")

//go:generate mockgen -source=game_repository.go -destination=mocks/mock_game_repository.go -package=mocks

// GameRepository defines the interface for game data operations.
type GameRepository interface {
	Create(ctx context.Context, g *game.Game) (*game.Game, error)
	FindByID(ctx context.Context, id int64) (*game.Game, error)
	Update(ctx context.Context, g *game.Game) (*game.Game, error)
	List(ctx context.Context) ([]*game.Game, error)
}

type sqliteGameRepository struct {
	db *sqlx.DB
}

// NewGameRepository creates a new SQLite-based GameRepository.
func NewGameRepository(db *sqlx.DB) GameRepository {
	return &sqliteGameRepository{db: db}
}

const gameColumns = `id, board, current_player, status, winner, created_at, updated_at`

// Create inserts a new game and returns it with its assigned id.
func (r *sqliteGameRepository) Create(ctx context.Context, g *game.Game) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Create")
	defer span.End()

	record, err := models.NewGameRecord(g)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO games (board, current_player, status, winner, created_at, updated_at)
		VALUES (:board, :current_player, :status, :winner, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new game id: %w", err)
	}
	span.SetAttributes(attribute.Int64("game.id", id))

	created := *g
	created.ID = id
	return &created, nil
}

// FindByID retrieves a game by its id.
func (r *sqliteGameRepository) FindByID(ctx context.Context, id int64) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.Int64("game.id", id),
	))
	defer span.End()

	var record models.GameRecord
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ?`
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", apperror.ErrGameNotFound, id)
		}
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}
	return record.Game()
}

// Update overwrites the mutable state of an existing game. created_at is never written.
func (r *sqliteGameRepository) Update(ctx context.Context, g *game.Game) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Update", trace.WithAttributes(
		attribute.Int64("game.id", g.ID),
		attribute.String("game.status", string(g.Status)),
	))
	defer span.End()

	record, err := models.NewGameRecord(g)
	if err != nil {
		return nil, err
	}

	query := `UPDATE games
		SET board = :board, current_player = :current_player, status = :status, winner = :winner, updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id %d", apperror.ErrGameNotFound, g.ID)
	}

	return r.FindByID(ctx, g.ID)
}

// List returns every game, newest first.
func (r *sqliteGameRepository) List(ctx context.Context) ([]*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.List")
	defer span.End()

	var records []models.GameRecord
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games := make([]*game.Game, 0, len(records))
	for i := range records {
		g, err := records[i].Game()
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	span.SetAttributes(attribute.Int("games.count", len(games)))
	return games, nil
}
