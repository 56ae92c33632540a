package httpx

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter counts hits per key within a fixed window.
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) rateDecision
	Close()
}

type rateDecision struct {
	allowed   bool
	count     int
	windowEnd time.Time
}

type rateWindow struct {
	count int
	end   time.Time
}

// memoryRateLimiter is the in-process fallback when Redis is not configured.
type memoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryRateLimiter builds a limiter that keeps counters in process
// memory. Counters are not shared across replicas.
func NewMemoryRateLimiter() RateLimiter {
	limiter := &memoryRateLimiter{
		windows: make(map[string]*rateWindow),
		stop:    make(chan struct{}),
	}
	go limiter.sweepLoop()
	return limiter
}

func (m *memoryRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.windows[key]
	if !ok || now.After(current.end) {
		current = &rateWindow{count: 0, end: now.Add(window)}
		m.windows[key] = current
	}
	current.count++
	return rateDecision{
		allowed:   current.count <= limit,
		count:     current.count,
		windowEnd: current.end,
	}
}

func (m *memoryRateLimiter) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *memoryRateLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, win := range m.windows {
				if now.After(win.end) {
					delete(m.windows, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// withRateLimit enforces a per-key request budget before running next.
func (b *base) withRateLimit(route string, limit int, window time.Duration, keyFn func(*http.Request) string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		key := keyFn(req)
		if key == "" {
			next(w, req)
			return
		}
		decision := b.limiter.Allow(route+":"+key, limit, window)
		b.applyRateHeaders(w, limit, decision)
		if !decision.allowed {
			b.recordRateLimitHit(route)
			b.logger.Warn("rate limit exceeded", "route", route, "key", key, "count", decision.count, "limit", limit)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, req)
	}
}

// handlerAuthRate applies auth first and then a per-user budget.
func (b *base) handlerAuthRate(route string, limit int, next http.HandlerFunc) http.HandlerFunc {
	return b.requireAuth(b.withRateLimit(route, limit, rateWindowDefault, rateLimitKeyUser, next))
}

func rateLimitKeyUser(req *http.Request) string {
	if identity, ok := identityFromContext(req.Context()); ok {
		return "user:" + identity.AccountID
	}
	return "ip:" + clientIP(req)
}

func rateLimitKeyIP(req *http.Request) string {
	ip := clientIP(req)
	if ip == "" {
		return ""
	}
	return "ip:" + ip
}
