package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RateLimitConfig defines the limit for a specific route or group.
type RateLimitConfig struct {
	Max    int                      // Maximum requests allowed in the window
	Window time.Duration            // Time window for the limit
	KeyFn  func(c fiber.Ctx) string // Returns the key to rate limit on
}

// entry tracks request count and window end for a single key.
type entry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is an in-memory fixed-window rate limiter.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  RateLimitConfig
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a rate limiter with the given config. Call Stop to
// end its background cleanup.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*entry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

// Handler returns a Fiber middleware handler that enforces the rate limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		allowed, remaining, resetAt := rl.take(rl.config.KeyFn(c), time.Now())

		setRateLimitHeaders(c, rl.config.Max, remaining, resetAt)

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       "RATE_LIMITED",
					"message":    "Too many requests. Try again in " + strconv.Itoa(retryAfter) + " seconds.",
					"retryAfter": retryAfter,
				},
			})
		}

		return c.Next()
	}
}

// Allow checks if a request with the given key is allowed.
func (rl *RateLimiter) Allow(key string) bool {
	allowed, _, _ := rl.take(key, time.Now())
	return allowed
}

func (rl *RateLimiter) take(key string, now time.Time) (allowed bool, remaining int, resetAt time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, exists := rl.entries[key]
	if !exists || now.After(e.windowEnd) {
		e = &entry{windowEnd: now.Add(rl.config.Window)}
		rl.entries[key] = e
	}
	e.count++
	return e.count <= rl.config.Max, max(rl.config.Max-e.count, 0), e.windowEnd
}

// Stop ends the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func setRateLimitHeaders(c fiber.Ctx, limit, remaining int, resetAt time.Time) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, e := range rl.entries {
				if now.After(e.windowEnd) {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// KeyBySession keys on the page session cookie, falling back to the IP for
// clients that have not been issued one yet.
func KeyBySession(c fiber.Ctx) string {
	if sid := c.Cookies(SessionCookie); sid != "" {
		return "session:" + sid
	}
	return KeyByIP(c)
}

// --- Pre-configured rate limiters ---

// NewAPIRateLimiter: 120 req/min per IP for page views and the JSON API.
func NewAPIRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    120,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// NewSelectRateLimiter: 60 selection changes/min per session. Every change
// issues a backend search.
func NewSelectRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    60,
		Window: time.Minute,
		KeyFn:  KeyBySession,
	})
}
