package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/progression/backend/utils"
)

// RateLimiter is a sliding-window limiter keyed by client.
type RateLimiter struct {
	requests  map[string][]time.Time
	mutex     sync.Mutex
	window    time.Duration
	limit     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
		now:      time.Now,
	}
}

// Allow checks if a request should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	if now.Sub(rl.lastSweep) > rl.window*2 {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := recent(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// sweep drops keys that have no request inside the window. Caller holds the lock.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for key, requests := range rl.requests {
		if valid := recent(requests, cutoff); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func recent(requests []time.Time, cutoff time.Time) []time.Time {
	valid := requests[:0]
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}
	return valid
}

// RateLimit limits requests per client IP and target user
func RateLimit(limit int, window time.Duration) fiber.Handler {
	limiter := NewRateLimiter(limit, window)

	return func(c *fiber.Ctx) error {
		key := utils.GetIPAddress(c) + "|" + c.Params("id")

		if !limiter.Allow(key) {
			slog.Warn("Rate limit exceeded",
				slog.String("type", "api"),
				slog.String("key", key),
				slog.String("path", c.Path()),
				slog.Int("limit", limit),
				slog.Duration("window", window))

			return utils.SendError(c, fiber.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later.", nil)
		}

		return c.Next()
	}
}

// WriteRateLimit guards the balance-changing endpoints
func WriteRateLimit() fiber.Handler {
	return RateLimit(30, time.Minute)
}
