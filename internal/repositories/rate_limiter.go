package repository

import (
	"context"
	"fmt"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	"github.com/redis/go-redis/v9"
)

type UploadRateLimiter interface {
	// Allow returns isAllowed, attempts left and seconds to wait.
	Allow(ctx context.Context, sessionID string) (bool, int, int, error)
}

type redisUploadLimiter struct {
	client redis.Cmdable
	cfg    *config.UploadConfig
}

func NewUploadRateLimiter(client redis.Cmdable, cfg *config.UploadConfig) UploadRateLimiter {
	return &redisUploadLimiter{client: client, cfg: cfg}
}

// Allow counts attempts in a fixed window that starts with the first upload
// of the session.
func (r *redisUploadLimiter) Allow(ctx context.Context, sessionID string) (bool, int, int, error) {

	key := fmt.Sprintf("upload_attempts:%s", sessionID)

	attempts, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("redis incr error for upload rate limit: %w", err)
	}

	if attempts == 1 {
		if err := r.client.Expire(ctx, key, r.cfg.WindowSize).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("redis expire error for upload rate limit: %w", err)
		}
	}

	if attempts > r.cfg.MaxAttempts {
		ttl, err := r.client.TTL(ctx, key).Result()
		if err != nil {
			return false, 0, 0, fmt.Errorf("redis ttl error for upload rate limit: %w", err)
		}

		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = int(r.cfg.WindowSize.Seconds())
		}

		return false, 0, retryAfter, nil
	}

	return true, int(r.cfg.MaxAttempts - attempts), 0, nil
}
