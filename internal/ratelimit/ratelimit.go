// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	Every         time.Duration // one token is refilled per Every
	Burst         int           // bucket size
	IdleTTL       time.Duration // drop a client's bucket after this long unused
	CleanupPeriod time.Duration
}

// DefaultAuthConfig allows short bursts of sign-in attempts and one more
// every twelve seconds after that.
func DefaultAuthConfig() *Config {
	return &Config{
		Every:         12 * time.Second,
		Burst:         5,
		IdleTTL:       15 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter keeps one token bucket per client identifier.
type MemoryRateLimiter struct {
	config  *Config
	clients map[string]*client
	mu      sync.Mutex
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultAuthConfig()
	}
	limiter := &MemoryRateLimiter{
		config:  config,
		clients: make(map[string]*client),
		stopCh:  make(chan struct{}),
	}
	go limiter.cleanupLoop()
	return limiter
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Allow takes one token from the identifier's bucket.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[identifier]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Every(rl.config.Every), rl.config.Burst)}
		rl.clients[identifier] = c
	}
	c.lastSeen = now

	info := &RateLimitInfo{Limit: rl.config.Burst}
	r := c.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		info.RetryAfter = delay
		return false, info
	}
	info.Allowed = true
	if remaining := int(c.limiter.TokensAt(now)); remaining > 0 {
		info.Remaining = remaining
	}
	return true, info
}

// RecordSuccess gives the identifier a full bucket again.
func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.clients, identifier)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.config.IdleTTL {
			delete(rl.clients, id)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
