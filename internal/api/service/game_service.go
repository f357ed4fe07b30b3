package service

import (
	"context"
	"ctchen222/tictactoe-service/internal/api/models"
	"ctchen222/tictactoe-service/internal/api/repository"
	"ctchen222/tictactoe-service/internal/apperror"
	"ctchen222/tictactoe-service/internal/game"
	"ctchen222/tictactoe-service/internal/validator"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("service.game")
	meter  = otel.Meter("service.game")
)

// GameService defines the game lifecycle operations.
type GameService interface {
	CreateGame(ctx context.Context) (*game.Game, error)
	GetGame(ctx context.Context, id int64) (*game.Game, error)
	GetGames(ctx context.Context) ([]*game.Game, error)
	ResetGame(ctx context.Context, id int64) (*game.Game, error)
	MakeMove(ctx context.Context, req *models.MakeMoveRequest) (*game.Game, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type gameService struct {
	gameRepo repository.GameRepository
	now      func() time.Time

	gamesCreated  metric.Int64Counter
	movesMade     metric.Int64Counter
	gamesFinished metric.Int64Counter
}

// Option configures a GameService.
type Option func(*gameService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *gameService) {
		s.now = now
	}
}

// NewGameService creates a new GameService.
func NewGameService(gameRepo repository.GameRepository, opts ...Option) (GameService, error) {
	s := &gameService{
		gameRepo: gameRepo,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.gamesCreated, err = meter.Int64Counter("tictactoe.games.created",
		metric.WithDescription("Number of games created")); err != nil {
		return nil, fmt.Errorf("failed to create games.created counter: %w", err)
	}
	if s.movesMade, err = meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Number of accepted moves")); err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}
	if s.gamesFinished, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Number of games that reached a terminal state")); err != nil {
		return nil, fmt.Errorf("failed to create games.finished counter: %w", err)
	}
	return s, nil
}

// clock returns the current time at storage precision.
func (s *gameService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *gameService) CreateGame(ctx context.Context) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.CreateGame")
	defer span.End()

	created, err := s.gameRepo.Create(ctx, game.NewGame(s.clock()))
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to create game: %w", err))
	}

	span.SetAttributes(attribute.Int64("game.id", created.ID))
	s.gamesCreated.Add(ctx, 1)
	slog.InfoContext(ctx, "Game created", "game.id", created.ID)
	return created, nil
}

func (s *gameService) GetGame(ctx context.Context, id int64) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.GetGame", trace.WithAttributes(
		attribute.Int64("game.id", id),
	))
	defer span.End()

	if err := validator.GetValidator().Struct(&models.GameIDRequest{GameID: id}); err != nil {
		return nil, fail(span, apperror.Validation(err))
	}

	g, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return g, nil
}

func (s *gameService) GetGames(ctx context.Context) ([]*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.GetGames")
	defer span.End()

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list games: %w", err))
	}
	if games == nil {
		games = []*game.Game{}
	}

	span.SetAttributes(attribute.Int("games.count", len(games)))
	return games, nil
}

func (s *gameService) ResetGame(ctx context.Context, id int64) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.ResetGame", trace.WithAttributes(
		attribute.Int64("game.id", id),
	))
	defer span.End()

	if err := validator.GetValidator().Struct(&models.GameIDRequest{GameID: id}); err != nil {
		return nil, fail(span, apperror.Validation(err))
	}

	g, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}

	g.Reset(s.clock())
	updated, err := s.gameRepo.Update(ctx, g)
	if err != nil {
		return nil, fail(span, err)
	}

	slog.InfoContext(ctx, "Game reset", "game.id", id)
	return updated, nil
}

func (s *gameService) MakeMove(ctx context.Context, req *models.MakeMoveRequest) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.MakeMove")
	defer span.End()

	if req == nil {
		return nil, fail(span, apperror.Validation(errors.New("missing move request")))
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		// Out-of-range positions keep their dedicated error.
		if req.Position != nil && (*req.Position < 0 || *req.Position >= game.BoardSize) {
			return nil, fail(span, fmt.Errorf("%w: got %d", apperror.ErrPositionOutOfRange, *req.Position))
		}
		return nil, fail(span, apperror.Validation(err))
	}
	position := *req.Position
	span.SetAttributes(
		attribute.Int64("game.id", req.GameID),
		attribute.Int("move.position", position),
	)

	current, err := s.gameRepo.FindByID(ctx, req.GameID)
	if err != nil {
		return nil, fail(span, err)
	}

	next, err := current.Apply(position, s.clock())
	if err != nil {
		slog.DebugContext(ctx, "Move rejected", "game.id", req.GameID, "move.position", position, "error", err)
		return nil, fail(span, err)
	}

	updated, err := s.gameRepo.Update(ctx, &next)
	if err != nil {
		return nil, fail(span, err)
	}

	s.movesMade.Add(ctx, 1, metric.WithAttributes(attribute.String("move.player", string(current.CurrentPlayer))))
	if updated.Status.Terminal() {
		s.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("game.status", string(updated.Status))))
		slog.InfoContext(ctx, "Game finished",
			"game.id", updated.ID,
			"game.status", updated.Status,
			"game.winner", updated.Winner,
		)
	}
	span.SetAttributes(attribute.String("game.status", string(updated.Status)))
	return updated, nil
}

func (s *gameService) Stats(ctx context.Context) (*models.Stats, error) {
	ctx, span := tracer.Start(ctx, "GameService.Stats")
	defer span.End()

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list games: %w", err))
	}

	stats := &models.Stats{Total: len(games)}
	for _, g := range games {
		switch g.Status {
		case game.StatusWon:
			if g.Winner == game.PlayerX {
				stats.XWins++
			} else {
				stats.OWins++
			}
		case game.StatusDraw:
			stats.Draws++
		default:
			stats.InProgress++
		}
	}
	switch {
	case stats.XWins > stats.OWins:
		stats.Leader = game.PlayerX
	case stats.OWins > stats.XWins:
		stats.Leader = game.PlayerO
	}
	return stats, nil
}

// fail records err on the span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
