package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("session record not found")

// RefreshKey is the key under which the hashed refresh token of a user
// is kept. One key per user: overwriting it revokes the previous session.
func RefreshKey(userID int64) string {
	return fmt.Sprintf("refresh:%d", userID)
}

// Key-value store with per-key TTL holding session records
// Set overwrites unconditionally, Del is idempotent
type Store interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}
