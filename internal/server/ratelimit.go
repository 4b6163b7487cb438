package server

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultClientTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	mu sync.Mutex

	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerSecond per client with the given burst.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		ttl:     defaultClientTTL,
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

// Allow takes one token from the client's bucket or returns a
// *RateLimitError telling when the next token is available.
func (rl *RateLimiter) Allow(clientID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.clients[clientID]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = b
		trackedClients.Set(float64(len(rl.clients)))
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return &RateLimitError{Limit: float64(rl.limit), Burst: rl.burst}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &RateLimitError{Limit: float64(rl.limit), Burst: rl.burst, RetryAfter: delay}
	}
	return nil
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// sweep drops buckets idle for longer than ttl. An idle bucket is full again,
// so forgetting it changes nothing for the client.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.ttl {
		return
	}
	rl.lastSweep = now
	for id, b := range rl.clients {
		if now.Sub(b.lastSeen) >= rl.ttl {
			delete(rl.clients, id)
		}
	}
	trackedClients.Set(float64(len(rl.clients)))
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Limit      float64       // requests per second
	Burst      int           // bucket size
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (limit: %g/s, burst: %d, retry after: %v)", e.Limit, e.Burst, e.RetryAfter)
}
