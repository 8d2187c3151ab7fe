package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker takes short-lived booth locks before the reserving transaction.
// It only narrows the window in which two instances contend on the same booth
// row; the database row lock remains the source of truth.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(addr, password string, db int) *RedisLocker {
	return &RedisLocker{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
	}
}

func (l *RedisLocker) AcquireBoothLock(ctx context.Context, tenantID, boothID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, boothLockKey(tenantID, boothID), "locked", ttl).Result()
}

func (l *RedisLocker) ReleaseBoothLock(ctx context.Context, tenantID, boothID string) error {
	return l.client.Del(ctx, boothLockKey(tenantID, boothID)).Err()
}

func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func boothLockKey(tenantID, boothID string) string {
	return fmt.Sprintf("lock:tenant:%s:booth:%s", tenantID, boothID)
}
