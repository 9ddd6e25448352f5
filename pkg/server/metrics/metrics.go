/* Copyright (C) 2025 QRepair contributors
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

// Package metrics exposes the Prometheus collectors of the server
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qrepair"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by route, method and status code",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests, labeled by route and method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected because the client ran out of tokens",
	})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts, labeled by result",
	}, []string{"result"})

	ticketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "tickets_created_total",
		Help:      "Tickets created through the API or an import",
	})

	migrationSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "migration_steps_total",
		Help:      "Schema migration steps run at start-up, labeled by result",
	}, []string{"result"})
)

// ObserveRequest records a served HTTP request
func ObserveRequest(route, method string, code int, d time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveRateLimited records a request rejected by the rate limiter
func ObserveRateLimited() {
	rateLimited.Inc()
}

// ObserveLogin records a login attempt
func ObserveLogin(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}

	logins.WithLabelValues(result).Inc()
}

// AddTicketsCreated records n new tickets
func AddTicketsCreated(n int) {
	ticketsCreated.Add(float64(n))
}

// ObserveMigration records the outcome of the start-up migration
func ObserveMigration(applied, failed int) {
	migrationSteps.WithLabelValues("applied").Add(float64(applied))
	migrationSteps.WithLabelValues("failed").Add(float64(failed))
}

// Handler serves the collected metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
