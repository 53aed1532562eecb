/*-------------------------------------------------------------------------
 *
 * rate_limiter.go
 *    Per-user rate limiting for FormGen API requests
 *
 * Thread-safe fixed-window rate limiter with per-key tracking and
 * automatic reset.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/auth/rate_limiter.go
 *
 *-------------------------------------------------------------------------
 */

package auth

import (
	"sync"
	"time"
)

type RateLimiter struct {
	limits map[string]*rateLimit
	mu     sync.Mutex
	now    func() time.Time
}

type rateLimit struct {
	count     int
	resetTime time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rateLimit),
		now:    time.Now,
	}
}

/* CheckLimit records a request for key and reports whether it is
 * within limitPerMin for the current window */
func (r *RateLimiter) CheckLimit(key string, limitPerMin int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rl, exists := r.limits[key]

	if !exists || now.After(rl.resetTime) {
		r.limits[key] = &rateLimit{
			count:     1,
			resetTime: now.Add(1 * time.Minute),
		}
		return true
	}

	if rl.count >= limitPerMin {
		return false
	}

	rl.count++
	return true
}
