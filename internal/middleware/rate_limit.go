package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
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

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimiter is a fixed-window limiter shared across replicas through Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Allow counts the request against the current window
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// LocalRateLimiter keeps a token bucket per key in process memory. It is used
// when no Redis is configured. Buckets idle for a full window are dropped,
// since they would have refilled anyway.
type LocalRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
	config    RateLimitConfig
	every     rate.Limit
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter creates an in-memory limiter allowing config.Limit
// requests per config.Window, with bursts up to config.Limit.
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		buckets:   make(map[string]*localBucket),
		lastSweep: time.Now(),
		config:    config,
		every:     rate.Every(config.Window / time.Duration(config.Limit)),
	}
}

// Allow takes a token from the caller's bucket
func (l *LocalRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.config.Window {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(l.every, l.config.Limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	bucket := b.limiter
	l.mu.Unlock()

	allowed := bucket.AllowN(now, 1)
	tokens := bucket.TokensAt(now)
	// a rejected caller may retry once a single token is back, otherwise
	// Reset is when the bucket is full again
	missing := float64(l.config.Limit) - tokens
	if !allowed {
		missing = 1 - tokens
	}
	reset := now
	if missing > 0 {
		reset = now.Add(time.Duration(missing * float64(time.Second) / float64(l.every)))
	}
	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: max(int(tokens), 0),
		Reset:     reset,
	}, nil
}

// sweep drops buckets untouched for at least one window. Callers hold l.mu.
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.config.Window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit returns a Gin middleware enforcing limiter per principal, or per
// client IP for anonymous callers. Limiter errors are logged and the request
// is let through.
func RateLimit(limiter Limiter, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if p, ok := PrincipalFrom(c); ok {
			key = p.Method + ":" + p.ID
		}

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			rateLimitRejects.Inc()
			retryAfter := max(int(time.Until(d.Reset).Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", d.Limit, window),
				"rate_limit_remaining": d.Remaining,
				"rate_limit_reset":     d.Reset.Unix(),
				"retry_after":          retryAfter,
			})
			return
		}

		c.Next()
	}
}

// NewRecipeRateLimiter picks the Redis limiter when a client is available
// and falls back to the in-memory one otherwise.
func NewRecipeRateLimiter(redisClient *redis.Client, perMinute int) Limiter {
	cfg := RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:recipe_ai",
	}
	if redisClient != nil {
		return NewRateLimiter(redisClient, cfg)
	}
	return NewLocalRateLimiter(cfg)
}
