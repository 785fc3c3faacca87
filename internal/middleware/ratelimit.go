package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientLimiter tracks a rate limiter per client IP. Stale entries are
// dropped after the cleanup interval so the map stays bounded.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	rate    rate.Limit
	burst   int
	cleanup time.Duration
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter creates a per-client rate limiter allowing r requests per
// second with the given burst.
func NewClientLimiter(r float64, burst int) *ClientLimiter {
	cl := &ClientLimiter{
		clients: make(map[string]*clientEntry),
		rate:    rate.Limit(r),
		burst:   burst,
		cleanup: 5 * time.Minute,
	}
	go cl.cleanupLoop()
	return cl
}

func (cl *ClientLimiter) cleanupLoop() {
	ticker := time.NewTicker(cl.cleanup)
	for range ticker.C {
		cl.mu.Lock()
		now := time.Now()
		for key, entry := range cl.clients {
			if now.Sub(entry.lastSeen) > cl.cleanup {
				delete(cl.clients, key)
			}
		}
		cl.mu.Unlock()
	}
}

// Allow reports whether the client identified by key may proceed.
func (cl *ClientLimiter) Allow(key string) bool {
	cl.mu.Lock()
	entry, exists := cl.clients[key]
	if !exists {
		entry = &clientEntry{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.clients[key] = entry
	}
	entry.lastSeen = time.Now()
	cl.mu.Unlock()

	return entry.limiter.Allow()
}

// RateLimit limits requests per client IP using the in-memory limiter.
func RateLimit(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

// RedisRateLimit limits requests per client IP with a fixed window counter in
// Redis, so limits hold across replicas. Redis failures fail open.
func RedisRateLimit(client *redis.Client, limit int, window time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.WithError(err).Warn("rate limit check failed, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				logger.WithError(err).Warn("failed to set rate limit window")
			}
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
