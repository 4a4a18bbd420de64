// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics declares the Prometheus collectors shared across the service.
//
// Collectors are registered on the default registry at package init and are
// exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geodrop"

// # HTTP

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being served",
		},
	)
)

// # Credentials

var (
	// KeySetRefreshes counts provider key set fetches by outcome ("success", "failure").
	KeySetRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idp_key_set_refresh_total",
			Help:      "Identity provider key set fetches by outcome",
		},
		[]string{"outcome"},
	)

	// CachedKeys is the number of provider signing keys currently cached.
	CachedKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "idp_cached_keys",
			Help:      "Identity provider signing keys currently cached",
		},
	)

	// KeySetBreakerState mirrors the key set fetch circuit breaker (0=closed, 1=half-open, 2=open).
	KeySetBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "idp_key_set_breaker_state",
			Help:      "State of the key set fetch circuit breaker (0=closed, 1=half-open, 2=open)",
		},
	)

	// CredentialRejections counts gate failures by token kind and reason.
	CredentialRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_rejections_total",
			Help:      "Rejected identity and refresh tokens by reason",
		},
		[]string{"kind", "reason"},
	)
)

// # Points

var (
	PointsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_inserted_total",
			Help:      "Points written to the store",
		},
	)

	// StaleIndexEvictions counts geo index entries removed because their record had expired.
	StaleIndexEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_stale_index_evictions_total",
			Help:      "Geo index entries lazily evicted at query time",
		},
	)
)
