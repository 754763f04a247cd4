package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupTestDB(t *testing.T) *PostgresStore {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := ConnectSQL(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Pool.Close)

	logger := zap.NewNop()
	store := NewPostgresStore(db.Pool, NewTransactionManager(db.Pool, logger), logger)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestPostgresStore(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "@RocketShoes:cart")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "@RocketShoes:cart", `[{"id":1,"amount":1}]`))
	require.NoError(t, store.Set(ctx, "@RocketShoes:cart", `[{"id":1,"amount":2}]`))

	value, found, err := store.Get(ctx, "@RocketShoes:cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1,"amount":2}]`, value)
}

func TestPostgresStore_EnsureSchemaIdempotent(t *testing.T) {
	store := setupTestDB(t)

	assert.NoError(t, store.EnsureSchema(context.Background()))
}
