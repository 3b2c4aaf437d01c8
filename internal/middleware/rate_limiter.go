package middleware

import (
	"net/http"
	"sync"
	"time"

	"ecosort/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipBuckets is a fixed-window request counter keyed by client IP. Stale
// buckets are pruned inline once every pruneEvery takes, so the map stays
// bounded without a background sweeper.
type ipBuckets struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	seen   map[string]*bucket
	takes  int
}

type bucket struct {
	count   int
	resetAt time.Time
}

const pruneEvery = 512

func newIPBuckets(limit int, window time.Duration) *ipBuckets {
	return &ipBuckets{limit: limit, window: window, seen: make(map[string]*bucket)}
}

// take records one request for ip and reports whether it stayed within the
// limit, along with the moment the current window expires.
func (b *ipBuckets) take(ip string) (allowed bool, resetAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.takes++
	if b.takes >= pruneEvery {
		b.takes = 0
		for k, v := range b.seen {
			if now.After(v.resetAt) {
				delete(b.seen, k)
			}
		}
	}

	bk := b.seen[ip]
	if bk == nil || now.After(bk.resetAt) {
		bk = &bucket{resetAt: now.Add(b.window)}
		b.seen[ip] = bk
	}
	bk.count++
	return bk.count <= b.limit, bk.resetAt
}

// RateLimiter caps requests per client IP at limit per window. Throttled
// requests receive a 429 with a Retry-After header set to the window end.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	buckets := newIPBuckets(limit, window)
	return func(c *gin.Context) {
		allowed, resetAt := buckets.take(c.ClientIP())
		if !allowed {
			log.Debug().
				Str("ip", c.ClientIP()).
				Str("path", c.FullPath()).
				Msg("request throttled")
			c.Header("Retry-After", resetAt.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, slow down"))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP, independent
// of the general limiter so credential guessing is cut off well before the
// API-wide ceiling.
func LoginRateLimiter() gin.HandlerFunc {
	buckets := newIPBuckets(20, time.Minute)
	return func(c *gin.Context) {
		allowed, _ := buckets.take(c.ClientIP())
		if !allowed {
			log.Warn().Str("ip", c.ClientIP()).Msg("login attempts throttled")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many login attempts, retry in one minute"))
			return
		}
		c.Next()
	}
}
