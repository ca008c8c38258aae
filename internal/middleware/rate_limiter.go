package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// limiterTable holds the per-IP windows of one RateLimiter.
type limiterTable struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
}

func (t *limiterTable) entry(ip string) *rateEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[ip]
	if !ok {
		e = &rateEntry{}
		t.entries[ip] = e
	}
	return e
}

// purge drops windows that ended before now and returns how many went.
func (t *limiterTable) purge(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	purged := 0
	for ip, e := range t.entries {
		e.mu.Lock()
		if now.After(e.windowEnd) {
			delete(t.entries, ip)
			purged++
		}
		e.mu.Unlock()
	}
	return purged
}

var (
	tables   []*limiterTable
	tablesMu sync.Mutex
)

// RateLimiter allows limit requests per window per client IP.
// Billing terminals sit behind one NAT, so the router uses a generous limit.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	table := &limiterTable{entries: make(map[string]*rateEntry)}
	tablesMu.Lock()
	tables = append(tables, table)
	tablesMu.Unlock()

	return func(c *gin.Context) {
		entry := table.entry(c.ClientIP())

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}

		entry.count++
		if entry.count > limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(apierror.KindRateLimited, "too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired windows so IPs that never return do not pile up.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		tablesMu.Lock()
		purged := 0
		for _, t := range tables {
			purged += t.purge(now)
		}
		tablesMu.Unlock()

		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter windows purged")
		}
	}
}
