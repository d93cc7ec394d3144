package api

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// LoginLimiter 限制同一 IP + 邮箱的登录尝试次数。
type LoginLimiter interface {
	Allow(ctx context.Context, ip, email string) (bool, error)
}

// RedisLoginLimiter 以小时为窗口计数。
type RedisLoginLimiter struct {
	client redisRateCounter
	limit  int
	now    func() time.Time
}

func NewRedisLoginLimiter(client redis.UniversalClient, limitPerHour int) *RedisLoginLimiter {
	return &RedisLoginLimiter{client: client, limit: limitPerHour, now: time.Now}
}

// Allow 在 Redis 不可用时放行，并把错误返回给调用方记录。
func (l *RedisLoginLimiter) Allow(ctx context.Context, ip, email string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	key := "rate:login:" + ip + ":" + strings.ToLower(email) + ":" + l.now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, l.client, key, time.Hour)
	if err != nil {
		return true, err
	}
	return count <= int64(l.limit), nil
}
