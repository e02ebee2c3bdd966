// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package metricsstore is the thread-safe ingress queue described in spec
// §4.B: request-handler goroutines append telemetry and abort indices,
// while a single controller goroutine periodically drains both.
package metricsstore

import (
	"sync"

	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// Store holds pending telemetry batches and abort indices for one session.
// A single mutex guards both queues; acquisitions are short (append or
// swap-out), and no blocking I/O ever happens under the lock (spec §5).
type Store struct {
	mu      sync.Mutex
	metrics []schema.Metrics
	aborts  []int
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// AddMetrics appends a telemetry batch. Called from request-handler
// goroutines.
func (s *Store) AddMetrics(m schema.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

// DrainMetrics atomically takes and clears the pending metrics queue.
// Called from the controller goroutine.
func (s *Store) DrainMetrics() []schema.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.metrics
	s.metrics = nil
	return out
}

// AddAbort records an aborted segment index.
func (s *Store) AddAbort(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborts = append(s.aborts, index)
}

// DrainAborts atomically takes and clears the pending abort queue.
func (s *Store) DrainAborts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.aborts
	s.aborts = nil
	return out
}

// Snapshot bundles one drain of both queues for a single controller tick.
type Snapshot struct {
	Metrics []schema.Metrics
	Aborts  []int
}

// Drain takes a Snapshot of both queues in one call, so the controller
// never observes metrics and aborts from different moments in time.
func (s *Store) Drain() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Metrics: s.metrics, Aborts: s.aborts}
	s.metrics = nil
	s.aborts = nil
	return snap
}
