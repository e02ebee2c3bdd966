// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package session implements the per-connection orchestration layer tying
// the metrics store, pipeline-backed/Minerva policies, and the shared
// catalogue together (SPEC_FULL.md "Host loop / session orchestration").
package session

import (
	"log/slog"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
	"github.com/Dash-Industry-Forum/abrcore/pkg/metricsstore"
	"github.com/Dash-Industry-Forum/abrcore/pkg/policy"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// Session bundles one metrics store, one active policy, and a handle to
// the shared catalogue for a single connection. It models spec §5's
// "controller thread": callers must serialise RegisterMetrics,
// RegisterAbort, and Tick the same way the pipeline/policy state they wrap
// requires — Session enforces no locking of its own.
type Session struct {
	ID        string
	Algorithm string

	store *metricsstore.Store
	pol   policy.Policy
	log   *slog.Logger
}

// New constructs a Session running algorithm against cat, coupled to
// controller (ignored by variants that don't use CC).
func New(id, algorithm string, cat *catalogue.Catalogue, controller cc.Controller, log *slog.Logger) (*Session, error) {
	pol, err := policy.New(algorithm, cat, controller)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		Algorithm: algorithm,
		store:     metricsstore.New(),
		pol:       pol,
		log:       log.With(slog.String("session", id)),
	}, nil
}

// RegisterMetrics enqueues a telemetry batch for the next Tick. Safe to
// call from any goroutine (spec §5: the metrics store is the one object
// shared across threads).
func (s *Session) RegisterMetrics(m schema.Metrics) {
	s.store.AddMetrics(m)
}

// RegisterAbort enqueues an abort for the next Tick.
func (s *Session) RegisterAbort(index int) {
	s.store.AddAbort(index)
}

// Tick performs one controller-thread step: drain pending telemetry into
// the active policy, then ask it for a decision. Returns the sentinel
// no-op decision for Minerva; pipeline-backed policies return their most
// recent decision while the gate for the next index is still closed
// (spec §4.C).
func (s *Session) Tick() schema.Decision {
	snap := s.store.Drain()
	for _, m := range snap.Metrics {
		s.pol.RegisterMetrics(m)
	}
	for _, index := range snap.Aborts {
		s.pol.RegisterAbort(index)
	}

	d := s.pol.Decide()
	if !d.IsNoop() {
		s.log.Debug("decision", "index", d.Index, "quality", d.Quality, "timestamp", d.Timestamp)
	}
	return d
}
