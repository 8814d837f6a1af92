package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is the fixed window length.
	RateLimitWindow = 60 * time.Second
	// RateLimitKeyPrefix is the Redis key prefix for rate limit counters.
	RateLimitKeyPrefix = "ratelimit:"
)

// RateLimitMiddleware counts requests per client IP in a fixed Redis
// window and rejects with 429 once maxRequests is exceeded. Redis
// failures let the request through; the limiter protects against abuse,
// it must not become an outage amplifier.
func RateLimitMiddleware(rdb *redis.Client, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := RateLimitKeyPrefix + c.ClientIP()

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, RateLimitWindow)
		}

		if count > int64(maxRequests) {
			c.Header("Retry-After", strconv.Itoa(int(RateLimitWindow.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(maxRequests)-count, 10))

		c.Next()
	}
}
