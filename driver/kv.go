package driver

import (
	"context"
)

// KeyValueStore 是購物車使用的持久化鍵值儲存，每個鍵存放一個字串
type KeyValueStore interface {
	// Get returns the value stored under key. found is false when the key has never been set.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
}
