// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package session

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
)

// Manager is the per-connection session registry: one shared catalogue,
// many sessions, created on first request and torn down on disconnect
// (spec §4.C "Lifecycle"). Grounded on the teacher's assetMgr/
// cmafIngesterMgr pattern: a manager struct holding a map guarded by its
// own mutex, constructed once by the host's SetupServer
// (cmd/livesim2/app/asset.go, cmaf-ingester.go).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cat           *catalogue.Catalogue
	log           *slog.Logger
	nr            atomic.Uint64
	newController func() cc.Controller
}

// NewManager returns a Manager serving sessions against cat. newController
// is called once per Create to couple a fresh CC handle to CC-aware
// policies (minerva, remote); pass a constructor returning
// cc.NoopController{} when no real congestion controller is available.
func NewManager(cat *catalogue.Catalogue, log *slog.Logger, newController func() cc.Controller) *Manager {
	if newController == nil {
		newController = func() cc.Controller { return cc.NoopController{} }
	}
	return &Manager{
		sessions:      make(map[string]*Session),
		cat:           cat,
		log:           log,
		newController: newController,
	}
}

// Create starts a new session running algorithm and returns it.
func (m *Manager) Create(algorithm string) (*Session, error) {
	id := fmt.Sprintf("sess-%d", m.nr.Add(1))
	s, err := New(id, algorithm, m.cat, m.newController(), m.log)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session registered under id, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete tears down the session registered under id. A no-op if absent.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions, for the Prometheus gauge.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
