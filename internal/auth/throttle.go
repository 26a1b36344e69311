package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-client limiter is kept.
const idleLimiterTTL = 30 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// LoginLimiter throttles login attempts per client key (the remote IP).
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	every    rate.Limit
	burst    int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewLoginLimiter allows burst attempts at once, refilled one per interval.
// It starts a goroutine that drops idle entries; call Stop to end it.
func NewLoginLimiter(interval time.Duration, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		every:    rate.Every(interval),
		burst:    burst,
		stopCh:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop(idleLimiterTTL)

	return l
}

func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastUsed = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

func (l *LoginLimiter) cleanupLoop(ttl time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now().Add(-ttl))
		case <-l.stopCh:
			return
		}
	}
}

func (l *LoginLimiter) cleanup(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Stop ends the cleanup goroutine.
func (l *LoginLimiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}
