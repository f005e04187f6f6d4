package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
)

// RateLimiterConfig controls the sliding window limiter.
type RateLimiterConfig struct {
	// Maximum requests allowed per window.
	MaxRequests int
	// Window length in seconds.
	WindowSeconds int
}

// slidingWindowScript keeps the count-check-and-record atomic so bursts
// across connections cannot slip past the limit.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

local current = redis.call('ZCARD', key)

if current < limit then
	redis.call('ZADD', key, now, now .. '-' .. ARGV[4])
	redis.call('EXPIRE', key, window)
	return {1, limit - current - 1}
else
	return {0, 0}
end
`

// RateLimiter returns a per-IP sliding window limiter backed by Redis.
// A nil client or a Redis failure degrades to allowing the request.
func RateLimiter(rdb *goredis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 30
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if log == nil {
		log = logger.L()
	}

	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	script := goredis.NewScript(slidingWindowScript)

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ip:%s", c.ClientIP())

		allowed, remaining, err := checkRateLimit(c.Request.Context(), rdb, script, key, cfg)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", cfg.WindowSeconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "RateLimitExceeded",
				"message": fmt.Sprintf("too many requests, retry in %d seconds", cfg.WindowSeconds),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func checkRateLimit(ctx context.Context, rdb *goredis.Client, script *goredis.Script, key string, cfg RateLimiterConfig) (bool, int, error) {
	now := time.Now()

	// Scores are unix seconds; the member carries nanoseconds so requests
	// landing in the same second stay distinct.
	result, err := script.Run(ctx, rdb, []string{key},
		now.Unix(), cfg.WindowSeconds, cfg.MaxRequests, now.UnixNano()).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit script result: %v", result)
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	return allowed == 1, int(remaining), nil
}
