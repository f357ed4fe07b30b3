package repository

import (
	"context"
	"ctchen222/tictactoe-service/internal/db"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresGameRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tictactoe"),
		tcpostgres.WithUsername("tictactoe"),
		tcpostgres.WithPassword("tictactoe"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.MigratePostgres(dsn))

	conn, err := db.PostgresConnect(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	runGameRepositoryContract(t, func(t *testing.T) GameRepository {
		require.NoError(t, conn.Exec("TRUNCATE games RESTART IDENTITY").Error)
		return NewPostgresGameRepository(conn)
	})
}
