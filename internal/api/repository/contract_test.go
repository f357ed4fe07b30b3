package repository

import (
	"context"
	"ctchen222/tictactoe-service/internal/apperror"
	"ctchen222/tictactoe-service/internal/game"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// runGameRepositoryContract exercises the behaviour every GameRepository must share.
func runGameRepositoryContract(t *testing.T, newRepo func(t *testing.T) GameRepository) {
	t.Run("Create assigns an id and FindByID returns the game", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		// Given: a fresh game
		g := game.NewGame(baseTime)

		// When: it is created and read back
		created, err := repo.Create(ctx, g)
		require.NoError(t, err)
		found, err := repo.FindByID(ctx, created.ID)

		// Then: the stored state matches
		require.NoError(t, err)
		assert.Positive(t, created.ID)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, game.Board{}, found.Board)
		assert.Equal(t, game.PlayerX, found.CurrentPlayer)
		assert.Equal(t, game.StatusInProgress, found.Status)
		assert.Equal(t, game.Empty, found.Winner)
		assert.True(t, baseTime.Equal(found.CreatedAt), "created_at %s", found.CreatedAt)
		assert.True(t, baseTime.Equal(found.UpdatedAt), "updated_at %s", found.UpdatedAt)
	})

	t.Run("FindByID returns ErrGameNotFound for unknown ids", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByID(context.Background(), 987654)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Update persists a won game without touching created_at", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		created, err := repo.Create(ctx, game.NewGame(baseTime))
		require.NoError(t, err)

		// Given: the game after X completes the top row
		next := *created
		for i, p := range []int{0, 3, 1, 4, 2} {
			next, err = next.Apply(p, baseTime.Add(time.Duration(i+1)*time.Second))
			require.NoError(t, err)
		}
		next.CreatedAt = baseTime.Add(time.Hour) // must be ignored

		// When: it is updated
		updated, err := repo.Update(ctx, &next)

		// Then: the new state is stored and created_at is unchanged
		require.NoError(t, err)
		assert.Equal(t, game.StatusWon, updated.Status)
		assert.Equal(t, game.PlayerX, updated.Winner)
		assert.Equal(t, game.PlayerX, updated.CurrentPlayer)
		assert.Equal(t, game.Board{game.PlayerX, game.PlayerX, game.PlayerX, game.PlayerO, game.PlayerO}, updated.Board)
		assert.True(t, baseTime.Equal(updated.CreatedAt), "created_at %s", updated.CreatedAt)
		assert.True(t, baseTime.Add(5*time.Second).Equal(updated.UpdatedAt), "updated_at %s", updated.UpdatedAt)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, found)
	})

	t.Run("Update returns ErrGameNotFound for unknown ids", func(t *testing.T) {
		repo := newRepo(t)
		g := game.NewGame(baseTime)
		g.ID = 987654

		_, err := repo.Update(context.Background(), g)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("List is empty when no games exist", func(t *testing.T) {
		repo := newRepo(t)

		games, err := repo.List(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, games)
		assert.Empty(t, games)
	})

	t.Run("List orders games newest first", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		var ids []int64
		for i := 0; i < 3; i++ {
			created, err := repo.Create(ctx, game.NewGame(baseTime.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
			ids = append(ids, created.ID)
		}

		games, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, games, 3)
		assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{games[0].ID, games[1].ID, games[2].ID})
		assert.True(t, games[0].CreatedAt.After(games[1].CreatedAt))
		assert.True(t, games[1].CreatedAt.After(games[2].CreatedAt))
	})
}
