package repository

import (
	"context"
	"ctchen222/tictactoe-service/internal/game"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type cachedGameRepository struct {
	next GameRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCachedGameRepository wraps next with a Redis read-through, write-through cache.
// Cache failures are logged and never fail the call.
func NewCachedGameRepository(next GameRepository, rdb *redis.Client, ttl time.Duration) GameRepository {
	return &cachedGameRepository{next: next, rdb: rdb, ttl: ttl}
}

func gameKey(id int64) string {
	return fmt.Sprintf("game:%d", id)
}

func (r *cachedGameRepository) Create(ctx context.Context, g *game.Game) (*game.Game, error) {
	created, err := r.next.Create(ctx, g)
	if err != nil {
		return nil, err
	}
	r.store(ctx, created)
	return created, nil
}

func (r *cachedGameRepository) FindByID(ctx context.Context, id int64) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "CachedGameRepository.FindByID", trace.WithAttributes(
		attribute.Int64("game.id", id),
	))
	defer span.End()

	data, err := r.rdb.Get(ctx, gameKey(id)).Bytes()
	switch {
	case err == nil:
		var cached game.Game
		if err := json.Unmarshal(data, &cached); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
		slog.WarnContext(ctx, "Dropping undecodable cache entry", "game.id", id, "error", err)
		r.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "Game cache read failed", "game.id", id, "error", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	g, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, g)
	return g, nil
}

func (r *cachedGameRepository) Update(ctx context.Context, g *game.Game) (*game.Game, error) {
	updated, err := r.next.Update(ctx, g)
	if err != nil {
		// The row may be gone or in an unknown state; stop serving the cached copy.
		r.evict(ctx, g.ID)
		return nil, err
	}
	r.store(ctx, updated)
	return updated, nil
}

func (r *cachedGameRepository) List(ctx context.Context) ([]*game.Game, error) {
	return r.next.List(ctx)
}

func (r *cachedGameRepository) store(ctx context.Context, g *game.Game) {
	data, err := json.Marshal(g)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode game for cache", "game.id", g.ID, "error", err)
		return
	}
	if err := r.rdb.Set(ctx, gameKey(g.ID), data, r.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Game cache write failed", "game.id", g.ID, "error", err)
	}
}

func (r *cachedGameRepository) evict(ctx context.Context, id int64) {
	if err := r.rdb.Del(ctx, gameKey(id)).Err(); err != nil {
		slog.WarnContext(ctx, "Game cache eviction failed", "game.id", id, "error", err)
	}
}
