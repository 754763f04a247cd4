package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/models"
)

// DefaultKey 是購物車在儲存中的預設鍵
const DefaultKey = "@RocketShoes:cart"

var _ Repository = (*repository)(nil)

type Repository interface {
	// Load returns the stored cart. A missing, unreadable or unparseable slot yields an empty cart.
	Load(ctx context.Context) []models.Product
	// Save serializes products and overwrites the slot.
	Save(ctx context.Context, products []models.Product) error
}

type repository struct {
	store  driver.KeyValueStore
	key    string
	logger *zap.Logger
}

func NewRepository(store driver.KeyValueStore, key string, logger *zap.Logger) Repository {
	if key == "" {
		key = DefaultKey
	}
	return &repository{
		store:  store,
		key:    key,
		logger: logger,
	}
}

func (r *repository) Load(ctx context.Context) []models.Product {
	value, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.logger.Warn("Failed to read stored cart, starting empty", zap.String("key", r.key), zap.Error(err))
		return []models.Product{}
	}
	if !found || value == "" {
		return []models.Product{}
	}

	var products []models.Product
	if err = json.Unmarshal([]byte(value), &products); err != nil {
		r.logger.Warn("Failed to parse stored cart, starting empty", zap.String("key", r.key), zap.Error(err))
		return []models.Product{}
	}
	if products == nil {
		products = []models.Product{}
	}

	return products
}

func (r *repository) Save(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err = r.store.Set(ctx, r.key, string(data)); err != nil {
		r.logger.Error("Failed to save cart", zap.String("key", r.key), zap.Error(err))
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}
