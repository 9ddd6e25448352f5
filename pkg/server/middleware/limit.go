/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of QRepair.
 *
 * QRepair is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * QRepair is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with QRepair.  If not, see <https://www.gnu.org/licenses/>.
 */

package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/qrepair/qrepair/pkg/server/metrics"
	"golang.org/x/time/rate"
)

const (
	// apiRequestsPerSecond is the sustained rate of /api requests accepted from one client
	apiRequestsPerSecond = 50
	// apiBurst is how many /api requests one client can make at once
	apiBurst = 100
	// visitorTTL is how long an idle client keeps its bucket
	visitorTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket for each client IP
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	clock clock.Clock
	limit rate.Limit
	burst int
}

// NewRateLimiter returns a limiter that accepts perSecond requests from each
// client, with bursts of up to burst requests
func NewRateLimiter(c clock.Clock, perSecond, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		clock:    c,
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

var apiLimiter = NewRateLimiter(clock.New(), apiRequestsPerSecond, apiBurst)

// allow takes a token from the bucket of the client, creating the bucket on
// the first visit
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// Sweep forgets the clients idle for longer than ttl and returns how many
// were removed
func (rl *RateLimiter) Sweep(ttl time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	var removed int
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > ttl {
			delete(rl.visitors, ip)
			removed++
		}
	}

	return removed
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.visitors)
}

// SweepJob returns a maintenance job that forgets the idle clients of the
// /api limiter every minute
func SweepJob() database.Job {
	return apiLimiter.sweepJob(visitorTTL)
}

func (rl *RateLimiter) sweepJob(ttl time.Duration) database.Job {
	return database.Job{
		Name: "sweep rate limiter",
		Spec: "@every 1m",
		Run: func() error {
			if n := rl.Sweep(ttl); n > 0 {
				log.WithFields(log.Fields{
					"removed": n,
				}).Debug("Forgot idle clients")
			}

			return nil
		},
	}
}

// lookupIP returns the IP of the client, preferring the headers set by a
// reverse proxy
func lookupIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
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

// Limit rejects with 429 the requests of a client that ran out of tokens
func (rl *RateLimiter) Limit(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := lookupIP(r)

		if !rl.allow(ip) {
			metrics.ObserveRateLimited()
			log.WithFields(log.Fields{
				"ip":   ip,
				"path": r.URL.Path,
			}).Warn("Too many requests")

			RespondError(w, http.StatusTooManyRequests, "Troppe richieste")
			return
		}

		next.ServeHTTP(w, r)
	}
}

// ApplyLimit wraps h with the /api limiter when rateLimit is set. Tests run
// without it.
func ApplyLimit(h http.HandlerFunc, rateLimit bool) http.Handler {
	if !rateLimit || os.Getenv("APP_ENV") == "TEST" {
		return h
	}

	return apiLimiter.Limit(h)
}
