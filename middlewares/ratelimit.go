package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines the counter window applied to generation-heavy
// endpoints. Every battle round costs several language-model calls, so
// these routes get a per-client ceiling.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimitConfig returns default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 10,
		Window:      time.Minute,
	}
}

// RateLimiter enforces a per-client request ceiling backed by Redis.
type RateLimiter struct {
	rdb    *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a RateLimiter. A nil Redis client disables
// limiting entirely.
func NewRateLimiter(rdb *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{rdb: rdb, config: config}
}

// Allow increments the client's counter and reports whether the request
// fits the window.
func (rl *RateLimiter) Allow(ctx context.Context, scope, clientID string) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate:%s:%s", scope, clientID)

	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		rl.rdb.Expire(ctx, key, rl.config.Window)
	}

	return count <= int64(rl.config.MaxRequests), nil
}

// Middleware returns a gin handler gating the given scope by client IP.
// Redis being unreachable fails open: generation should not go down with
// the limiter.
func (rl *RateLimiter) Middleware(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := rl.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			log.Printf("rate limiter unavailable for %s: %v", scope, err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}
