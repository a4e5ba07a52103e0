package cache

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter enforces a fixed window quota per client IP, keyed in
// redis so the limit holds across replicas. A nil *RateLimiter or one
// built without a redis store allows everything, so callers can wire
// it unconditionally.
type RateLimiter struct {
	Store  *RedisStore
	Limit  int
	Window time.Duration
}

func NewRateLimiter(store *RedisStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{Store: store, Limit: limit, Window: window}
}

func (r *RateLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	if r == nil || r.Store == nil || r.Limit <= 0 || r.Window < time.Second {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%d", clientID, time.Now().Unix()/int64(r.Window.Seconds()))
	n, err := r.Store.Client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		r.Store.Client.Expire(ctx, key, r.Window)
	}
	return n <= int64(r.Limit), nil
}

// Middleware rejects requests over the quota with 429. Redis errors
// fail open.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := r.Allow(c.Request.Context(), c.ClientIP())
		if err != nil || ok {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":    http.StatusTooManyRequests,
			"message": "rate limit exceeded",
		})
	}
}
