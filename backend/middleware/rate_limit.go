package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractgen/backend/pkg/logger"
	"github.com/AnTengye/contractgen/backend/pkg/metrics"
)

// pruneAt is the number of tracked clients above which expired windows are dropped.
const pruneAt = 10000

type clientWindow struct {
	count int
	reset time.Time
}

// RateLimiter counts requests per client in fixed windows
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientWindow),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
}

// Allow records a request from client. When the limit is reached it returns
// false and the time left until the client's window resets.
func (l *RateLimiter) Allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[client]
	if !ok || !now.Before(w.reset) {
		if len(l.clients) >= pruneAt {
			l.prune(now)
		}
		w = &clientWindow{reset: now.Add(l.window)}
		l.clients[client] = w
	}
	if w.count >= l.rate {
		return false, w.reset.Sub(now)
	}
	w.count++
	return true, 0
}

func (l *RateLimiter) prune(now time.Time) {
	for k, w := range l.clients {
		if !now.Before(w.reset) {
			delete(l.clients, k)
		}
	}
}

// RateLimit middleware limits requests per IP. A rate of zero or less disables
// it; exempt paths (health checks, metrics scrapes) are never counted.
func RateLimit(rate int, window time.Duration, exempt ...string) gin.HandlerFunc {
	if rate <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(rate, window)
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if ok, retry := limiter.Allow(clientIP); !ok {
			metrics.RateLimited.Inc()
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client_ip", clientIP)

			seconds := int(retry.Seconds())
			if retry > time.Duration(seconds)*time.Second {
				seconds++
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
