package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL 是指令去重紀錄保留的時間
const DefaultTTL = 24 * time.Hour

var (
	_ Repository = (*repository)(nil)
	_ Repository = (*memoryRepository)(nil)
)

// Repository 紀錄已處理過的購物車指令，避免重複送達時重複執行
type Repository interface {
	// Claim marks id as processed. It returns false when id was already claimed.
	Claim(ctx context.Context, id string) (bool, error)

	// Release forgets a claim so a redelivery of id is processed again.
	Release(ctx context.Context, id string) error
}

type repository struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewRepository(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &repository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *repository) Claim(ctx context.Context, id string) (bool, error) {
	claimed, err := r.client.SetNX(ctx, commandKey(id), time.Now().Unix(), r.ttl).Result()
	if err != nil {
		r.logger.Error("Failed to claim command", zap.String("command_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to claim command %s: %w", id, err)
	}
	return claimed, nil
}

func (r *repository) Release(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, commandKey(id)).Err(); err != nil {
		r.logger.Error("Failed to release command", zap.String("command_id", id), zap.Error(err))
		return fmt.Errorf("failed to release command %s: %w", id, err)
	}
	return nil
}

func commandKey(id string) string {
	return fmt.Sprintf("cart_command:%s", id)
}

type memoryRepository struct {
	mu      sync.Mutex
	ttl     time.Duration
	claimed map[string]time.Time
	now     func() time.Time
}

// NewMemoryRepository keeps claims in process memory; expired claims are pruned on each call.
func NewMemoryRepository(ttl time.Duration) Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryRepository{
		ttl:     ttl,
		claimed: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *memoryRepository) Claim(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, expiresAt := range r.claimed {
		if now.After(expiresAt) {
			delete(r.claimed, key)
		}
	}

	if _, exists := r.claimed[id]; exists {
		return false, nil
	}
	r.claimed[id] = now.Add(r.ttl)
	return true, nil
}

func (r *memoryRepository) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.claimed, id)
	return nil
}
