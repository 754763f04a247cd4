package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/models"
)

// setupTestRedis creates a miniredis server and returns a Repository backed by it
func setupTestRedis(t *testing.T) (Repository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewRepository(driver.NewRedisStore(client), DefaultKey, zap.NewNop()), mr
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection reset")
}

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("connection reset")
}

func TestLoad_MissingKey(t *testing.T) {
	repo, _ := setupTestRedis(t)

	products := repo.Load(context.Background())

	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestLoad_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(DefaultKey, `[{"id":1,"title":`))

	assert.Empty(t, repo.Load(context.Background()))
}

func TestLoad_NullValue(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(DefaultKey, `null`))

	products := repo.Load(context.Background())

	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestLoad_StoreError(t *testing.T) {
	repo := NewRepository(brokenStore{}, DefaultKey, zap.NewNop())

	assert.Empty(t, repo.Load(context.Background()))
}

func TestSave_FieldOrder(t *testing.T) {
	repo, mr := setupTestRedis(t)

	err := repo.Save(context.Background(), []models.Product{
		{ID: 1, Title: "Tênis de Caminhada", Price: 179.9, Image: "https://img/1.jpg", Amount: 2},
	})
	require.NoError(t, err)

	stored, err := mr.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"title":"Tênis de Caminhada","price":179.9,"image":"https://img/1.jpg","amount":2}]`, stored)
	assert.Zero(t, mr.TTL(DefaultKey), "cart slot must not expire")
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), nil))

	stored, err := mr.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, stored)
}

func TestSave_StoreError(t *testing.T) {
	repo := NewRepository(brokenStore{}, DefaultKey, zap.NewNop())

	err := repo.Save(context.Background(), []models.Product{{ID: 1, Amount: 1}})
	assert.ErrorContains(t, err, "failed to save cart")
}

func TestRoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()
	products := []models.Product{
		{ID: 3, Title: "C", Price: 99.5, Image: "c.jpg", Amount: 1},
		{ID: 1, Title: "A", Price: 10, Image: "a.jpg", Amount: 4},
	}

	require.NoError(t, repo.Save(ctx, products))

	assert.Equal(t, products, repo.Load(ctx))
}

func TestNewRepository_CustomKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRepository(driver.NewRedisStore(client), "shop:cart:alice", zap.NewNop())
	require.NoError(t, repo.Save(context.Background(), []models.Product{{ID: 1, Amount: 1}}))

	assert.True(t, mr.Exists("shop:cart:alice"))
	assert.False(t, mr.Exists(DefaultKey))
}
