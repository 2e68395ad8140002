// fotohub/models/services.go
package models

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// --- Service Interfaces ---

// StorageService abstracts where uploaded image bytes live (local disk or
// S3-compatible object storage).
type StorageService interface {
	SaveFile(filename string, data []byte, contentType string) (string, error)
	OpenFile(path string) ([]byte, error)
	FileExists(path string) bool
	DeleteFile(path string) error
}

// Mailer sends notification email. Implementations are fire-and-forget from
// the caller's perspective; delivery failures are logged, never retried.
type Mailer interface {
	Send(subject, body, from string, to []string) error
}

// --- Rate Limiter ---

// RateLimiter tracks a token bucket per client IP for abuse-prone endpoints.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	every    time.Duration
	burst    int
	expire   time.Duration
}

// NewRateLimiter creates a limiter granting one event per `every` with the
// given burst, and starts a pruning loop that forgets IPs idle for `expire`.
func NewRateLimiter(every time.Duration, burst int, prune, expire time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		every:    every,
		burst:    burst,
		expire:   expire,
	}
	go rl.cleanup(prune)
	return rl
}

// GetLimiter retrieves or creates the limiter for a client IP.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(rl.every), rl.burst)
		rl.limiters[ip] = limiter
	}
	rl.lastSeen[ip] = time.Now()
	return limiter
}

func (rl *RateLimiter) cleanup(prune time.Duration) {
	for range time.Tick(prune) {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.expire)
		for ip, seen := range rl.lastSeen {
			if seen.Before(cutoff) {
				delete(rl.limiters, ip)
				delete(rl.lastSeen, ip)
			}
		}
		rl.mu.Unlock()
	}
}
