// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dash-Industry-Forum/abrcore/internal"
	"github.com/Dash-Industry-Forum/abrcore/internal/session"
	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/logging"
)

// SetupServer sets up router, middleware, catalogue, and session manager,
// given koanf configuration.
func SetupServer(ctx context.Context, cfg *ServerConfig) (*Server, error) {
	logger := slog.Default()

	if cfg.CataloguePath == "" {
		return nil, errCataloguePathUnset
	}
	cat, err := loadCatalogue(cfg.CataloguePath)
	if err != nil {
		return nil, fmt.Errorf("loadCatalogue: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.SlogMiddleWare(logger))
	r.Use(middleware.Recoverer)
	r.Use(NewPrometheusMiddleware())
	r.Use(addVersionAndCORSHeaders)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	if cfg.TimeoutS > 0 {
		r.Use(middleware.Timeout(time.Duration(cfg.TimeoutS) * time.Second))
	}

	r.Mount("/metrics", promhttp.Handler())

	server := &Server{
		Router:    r,
		Cfg:       cfg,
		Catalogue: cat,
		Sessions:  session.NewManager(cat, logger, nil),
	}

	r.Route("/api", createRouteAPI(server))

	if err := server.Routes(ctx); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}

	logger.Info("abrcore starting",
		"version", internal.GetVersion(),
		"port", cfg.Port,
		"algorithm", cfg.Algorithm,
		"qualities", cat.NumQualities(),
		"segments", cat.SegmentCount())
	return server, nil
}

// loadCatalogue decodes a JSON catalogue.Descriptor from path and builds
// the shared Catalogue (spec §6 "Configuration").
func loadCatalogue(path string) (*catalogue.Catalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d catalogue.Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode catalogue descriptor: %w", err)
	}
	return catalogue.New(d)
}

// Routes mounts the ambient routes (health, log-level control, profiler)
// alongside the /api session routes registered in SetupServer.
func (s *Server) Routes(ctx context.Context) error {
	for _, route := range logging.LogRoutes {
		s.Router.MethodFunc(route.Method, route.Path, route.Handler)
	}
	s.Router.Mount("/debug", middleware.Profiler())
	s.Router.MethodFunc("GET", "/healthz", s.healthzHandlerFunc)
	return nil
}
