package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(t *testing.T, maxRequests int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/limited", RateLimitMiddleware(rdb, maxRequests), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, mr
}

func hitLimited(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	router, _ := newRateLimitedRouter(t, 3)

	for i := 0; i < 3; i++ {
		w := hitLimited(router, "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	router, _ := newRateLimitedRouter(t, 2)

	hitLimited(router, "10.0.0.1")
	hitLimited(router, "10.0.0.1")

	w := hitLimited(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Another client is counted separately.
	w = hitLimited(router, "10.0.0.2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_WindowResets(t *testing.T) {
	router, mr := newRateLimitedRouter(t, 1)

	assert.Equal(t, http.StatusOK, hitLimited(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitLimited(router, "10.0.0.1").Code)

	mr.FastForward(RateLimitWindow)

	assert.Equal(t, http.StatusOK, hitLimited(router, "10.0.0.1").Code)
}

func TestRateLimitMiddleware_RedisDownFailsOpen(t *testing.T) {
	router, mr := newRateLimitedRouter(t, 1)
	mr.Close()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hitLimited(router, "10.0.0.1").Code)
	}
}
