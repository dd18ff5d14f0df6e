/* Copyright 2026 gtrack Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gtrack/gtrack/pkg/server/log"
	"golang.org/x/time/rate"
)

const (
	// visitorTTL is how long an idle visitor is remembered
	visitorTTL = 3 * time.Minute
	// cleanupInterval is the period of the sweep of idle visitors
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds the rate limiting state for visitors
type RateLimiter struct {
	perSecond int
	burst     int
	visitors  map[string]*visitor
	mtx       sync.Mutex
	done      chan struct{}
	stopOnce  sync.Once
}

// NewRateLimiter creates a new rate limiter accepting perSecond requests per
// second from each visitor, with the given burst capacity. Stop must be
// called to release the sweeping goroutine.
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	rl := &RateLimiter{
		perSecond: perSecond,
		burst:     burst,
		visitors:  make(map[string]*visitor),
		done:      make(chan struct{}),
	}
	go rl.cleanupVisitors()

	return rl
}

// getVisitor returns a limiter for a visitor with the given identifier. It
// adds the visitor to the map if not seen before.
func (rl *RateLimiter) getVisitor(identifier string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[identifier]
	if !exists {
		interval := time.Second / time.Duration(rl.perSecond)
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(interval), rl.burst),
		}
		rl.visitors[identifier] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

// sweep deletes visitors that have not been seen since the given time
func (rl *RateLimiter) sweep(before time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	for identifier, v := range rl.visitors {
		if v.lastSeen.Before(before) {
			delete(rl.visitors, identifier)
		}
	}
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now().Add(-visitorTTL))
		case <-rl.done:
			return
		}
	}
}

// Stop stops sweeping idle visitors
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

// lookupIP returns the request's IP
func lookupIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Limit is a middleware to rate limit the handler
func (rl *RateLimiter) Limit(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := lookupIP(r)
		limiter := rl.getVisitor(identifier)

		if !limiter.Allow() {
			log.WithFields(log.Fields{
				"ip": identifier,
			}).Warn("Too many requests")
			RespondError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ApplyLimit applies the rate limit of the given limiter. A nil limiter
// leaves the handler as is.
func ApplyLimit(h http.HandlerFunc, rl *RateLimiter) http.Handler {
	if rl == nil {
		return h
	}

	return rl.Limit(h)
}
