package auth

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter limits login attempts per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo

	maxAttempts int
	window      time.Duration
	blockTime   time.Duration
}

type attemptInfo struct {
	count     int
	firstTry  time.Time
	blockedAt time.Time
}

// NewRateLimiter creates a rate limiter allowing maxAttempts per
// window, blocking for blockTime after the limit is exceeded.
func NewRateLimiter(maxAttempts int, window, blockTime time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: maxAttempts,
		window:      window,
		blockTime:   blockTime,
	}
	go rl.cleanup()
	return rl
}

// DefaultRateLimiter allows 5 attempts per 15 minutes.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 15*time.Minute, 15*time.Minute)
}

// Allow checks whether the key may attempt a login now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	info, exists := rl.attempts[key]

	if !exists {
		rl.attempts[key] = &attemptInfo{count: 1, firstTry: now}
		return true
	}

	if !info.blockedAt.IsZero() {
		if now.Sub(info.blockedAt) < rl.blockTime {
			return false
		}
		// Block expired
		info.count = 1
		info.firstTry = now
		info.blockedAt = time.Time{}
		return true
	}

	if now.Sub(info.firstTry) > rl.window {
		info.count = 1
		info.firstTry = now
		return true
	}

	info.count++
	if info.count > rl.maxAttempts {
		info.blockedAt = now
		return false
	}

	return true
}

// RecordSuccess resets the attempt count after a successful login.
func (rl *RateLimiter) RecordSuccess(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

func (rl *RateLimiter) blockedUntil(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, exists := rl.attempts[key]
	if !exists || info.blockedAt.IsZero() {
		return time.Time{}
	}

	until := info.blockedAt.Add(rl.blockTime)
	if time.Now().After(until) {
		return time.Time{}
	}
	return until
}

// cleanup removes expired entries periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, info := range rl.attempts {
			windowExpired := now.Sub(info.firstTry) > rl.window
			blockExpired := info.blockedAt.IsZero() || now.Sub(info.blockedAt) > rl.blockTime
			if windowExpired && blockExpired {
				delete(rl.attempts, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns an Echo middleware that rate limits requests
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			if !rl.Allow(key) {
				until := rl.blockedUntil(key)
				retryAfter := int(time.Until(until).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}

				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "too many login attempts",
					"retry_after": retryAfter,
				})
			}

			return next(c)
		}
	}
}
