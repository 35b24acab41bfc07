package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/olekhv/contactbook/internal/pkg/logutil"
	"github.com/olekhv/contactbook/internal/pkg/response"
)

const rateLimiterCacheSize = 4096

type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   *lru.Cache[string, []time.Time]
	now    func() time.Time
}

// RateLimit allows up to limit requests per key per window. Keys combine
// client IP, authenticated user and route, so one user cannot starve
// another. The LRU bound keeps memory flat under key churn.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := newRateLimiter(limit, window)
	return limiter.handle
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	hits, _ := lru.New[string, []time.Time](rateLimiterCacheSize)
	return &rateLimiter{
		limit:  limit,
		window: window,
		hits:   hits,
		now:    time.Now,
	}
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.limit <= 0 || l.window <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	uid := "0"
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			uid = id
		}
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, uid, path}, "|")

	if !l.allow(key) {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("user_id", uid),
			zap.String("path", path),
		)
		response.AbortDetail(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
		return
	}
	c.Next()
}

// allow records a hit and reports whether the key is still under the limit
// for the sliding window.
func (l *rateLimiter) allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps, _ := l.hits.Get(key)
	kept := stamps[:0]
	for _, stamp := range stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	if len(kept) >= l.limit {
		l.hits.Add(key, kept)
		return false
	}
	kept = append(kept, now)
	l.hits.Add(key, kept)
	return true
}
