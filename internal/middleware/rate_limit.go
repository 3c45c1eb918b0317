package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window counter in Redis. A nil limiter, or one
// without a client or limit, lets every request through.
type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
}

func NewRateLimiter(client redis.Cmdable, config RateLimitConfig) *RateLimiter {
	if config.Window <= 0 {
		config.Window = time.Hour
	}
	if c, ok := client.(*redis.Client); ok && c == nil {
		client = nil
	}
	return &RateLimiter{
		redis:  client,
		config: config,
	}
}

// NewRecipeCreationRateLimiter limits recipe creation per user.
func NewRecipeCreationRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(client, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	})
}

// NewRecipeModificationRateLimiter limits changes per user and recipe.
func NewRecipeModificationRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(client, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_modification",
	})
}

func (rl *RateLimiter) enabled() bool {
	return rl != nil && rl.redis != nil && rl.config.Limit > 0
}

// PerUser limits authenticated callers by user id. Anonymous requests are
// left to the permission check.
func (rl *RateLimiter) PerUser() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context) string {
		return PrincipalFrom(c).ID.String()
	})
}

// PerRecipe limits authenticated callers per user and recipe id.
func (rl *RateLimiter) PerRecipe() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context) string {
		return PrincipalFrom(c).ID.String() + ":" + c.Param("id")
	})
}

func (rl *RateLimiter) middleware(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled() || !PrincipalFrom(c).Authenticated {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key(c))
		if err != nil {
			// Redis trouble must not take the API down with it.
			logging.Warn().Err(err).Str("limiter", rl.config.KeyPrefix).Msg("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RecordRateLimited(rl.config.KeyPrefix)
			retryAfter := int(time.Until(resetTime).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limited",
				"message":     fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request for key.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}
