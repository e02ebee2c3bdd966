// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	defaultBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200}
	prometheusMW   prometheusMiddleware
)

const (
	requestsName       = "abrcore_requests_total"
	requestLatencyName = "abrcore_request_duration_milliseconds"
	decisionsName      = "abrcore_decisions_total"
	sessionsName       = "abrcore_active_sessions"
	service            = "abrcore"
)

// prometheusMiddleware exposes request-count/latency counters for every
// HTTP request, grounded on cmd/livesim2/app/prometheus.go's middleware.
type prometheusMiddleware struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	decisions      *prometheus.CounterVec
	sessions       prometheus.Gauge
}

func init() {
	prometheusMW.requests = newCounter(requestsName,
		"Number of HTTP requests processed, partitioned by status code.", service)
	prometheusMW.requestLatency = newHistogram(requestLatencyName,
		"HTTP response latency.", service, defaultBuckets)
	prometheusMW.decisions = newDecisionCounter()
	prometheusMW.sessions = newSessionGauge()
}

// NewPrometheusMiddleware returns a new prometheus Middleware handler.
func NewPrometheusMiddleware() func(next http.Handler) http.Handler {
	return prometheusMW.handler
}

func (mw prometheusMiddleware) handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := strconv.Itoa(ww.Status())
		latencyMS := float64(time.Since(start).Nanoseconds()) * 1e-6
		mw.requests.WithLabelValues(status).Inc()
		mw.requestLatency.WithLabelValues(status).Observe(latencyMS)
	}
	return http.HandlerFunc(fn)
}

// observeDecision records one emitted (non-no-op) decision for algorithm.
func observeDecision(algorithm string) {
	prometheusMW.decisions.WithLabelValues(algorithm).Inc()
}

// setActiveSessions sets the active-session gauge to n.
func setActiveSessions(n int) {
	prometheusMW.sessions.Set(float64(n))
}

func newCounter(counterName, help, serviceName string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        counterName,
			Help:        help,
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
		[]string{"code"},
	)
	prometheus.MustRegister(cv)
	return cv
}

func newHistogram(histogramName, help, serviceName string, buckets []float64) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        histogramName,
		Help:        help,
		ConstLabels: prometheus.Labels{"service": serviceName},
		Buckets:     buckets,
	},
		[]string{"code"},
	)
	prometheus.MustRegister(h)
	return h
}

func newDecisionCounter() *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        decisionsName,
			Help:        "Number of non-no-op decisions emitted, partitioned by algorithm.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"algorithm"},
	)
	prometheus.MustRegister(cv)
	return cv
}

func newSessionGauge() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        sessionsName,
		Help:        "Number of live ABR sessions.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	prometheus.MustRegister(g)
	return g
}
