package repository

import (
	"context"
	"ctchen222/tictactoe-service/internal/apperror"
	"ctchen222/tictactoe-service/internal/game"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// gameRow maps the games table for gorm. Timestamps come from the service clock.
type gameRow struct {
	ID            int64                          `gorm:"primaryKey"`
	Board         datatypes.JSONType[game.Board] `gorm:"not null"`
	CurrentPlayer string                         `gorm:"size:1;not null"`
	Status        string                         `gorm:"size:16;not null"`
	Winner        *string                        `gorm:"size:1"`
	CreatedAt     time.Time                      `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time                      `gorm:"not null;autoUpdateTime:false"`
}

func (gameRow) TableName() string { return "games" }

func newGameRow(g *game.Game) *gameRow {
	row := &gameRow{
		ID:            g.ID,
		Board:         datatypes.NewJSONType(g.Board),
		CurrentPlayer: string(g.CurrentPlayer),
		Status:        string(g.Status),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
	if g.Winner != game.Empty {
		winner := string(g.Winner)
		row.Winner = &winner
	}
	return row
}

func (r *gameRow) game() (*game.Game, error) {
	g := &game.Game{
		ID:            r.ID,
		Board:         r.Board.Data(),
		CurrentPlayer: game.Mark(r.CurrentPlayer),
		Status:        game.Status(r.Status),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.Winner != nil {
		g.Winner = game.Mark(*r.Winner)
	}
	if err := g.Check(); err != nil {
		return nil, fmt.Errorf("corrupt game %d: %w", r.ID, err)
	}
	return g, nil
}

type postgresGameRepository struct {
	db *gorm.DB
}

// NewPostgresGameRepository creates a gorm-backed GameRepository.
func NewPostgresGameRepository(db *gorm.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, g *game.Game) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "PostgresGameRepository.Create")
	defer span.End()

	row := newGameRow(g)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	span.SetAttributes(attribute.Int64("game.id", row.ID))
	return row.game()
}

func (r *postgresGameRepository) FindByID(ctx context.Context, id int64) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "PostgresGameRepository.FindByID", trace.WithAttributes(
		attribute.Int64("game.id", id),
	))
	defer span.End()

	var row gameRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", apperror.ErrGameNotFound, id)
		}
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}
	return row.game()
}

func (r *postgresGameRepository) Update(ctx context.Context, g *game.Game) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "PostgresGameRepository.Update", trace.WithAttributes(
		attribute.Int64("game.id", g.ID),
		attribute.String("game.status", string(g.Status)),
	))
	defer span.End()

	row := newGameRow(g)
	res := r.db.WithContext(ctx).
		Model(&gameRow{}).
		Where("id = ?", g.ID).
		Select("board", "current_player", "status", "winner", "updated_at").
		Updates(row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: id %d", apperror.ErrGameNotFound, g.ID)
	}
	return r.FindByID(ctx, g.ID)
}

func (r *postgresGameRepository) List(ctx context.Context) ([]*game.Game, error) {
	ctx, span := tracer.Start(ctx, "PostgresGameRepository.List")
	defer span.End()

	var rows []gameRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games := make([]*game.Game, 0, len(rows))
	for i := range rows {
		g, err := rows[i].game()
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	span.SetAttributes(attribute.Int("games.count", len(games)))
	return games, nil
}
