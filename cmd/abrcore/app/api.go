// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/Dash-Industry-Forum/abrcore/pkg/policy"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// CreateSessionInput selects the quality policy for a new session.
type CreateSessionInput struct {
	Algorithm string `query:"algorithm" doc:"Quality policy selector" enum:"random,bb,minerva,target,remote" example:"bb"`
}

type CreateSessionResponse struct {
	Body struct {
		ID        string `json:"id" doc:"Session identifier used in subsequent requests"`
		Algorithm string `json:"algorithm"`
	}
}

type sessionIDInput struct {
	ID string `path:"id" maxLength:"64" doc:"Session identifier"`
}

type RegisterMetricsInput struct {
	ID   string         `path:"id"`
	Body schema.Metrics `json:"body"`
}

type okResponse struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

type RegisterAbortInput struct {
	ID   string `path:"id"`
	Body struct {
		Index int `json:"index" doc:"Segment index that was aborted"`
	}
}

type DecideResponse struct {
	Body struct {
		Index     int  `json:"index"`
		Quality   int  `json:"quality"`
		Timestamp int  `json:"timestamp"`
		Noop      bool `json:"noop" doc:"True for Minerva-family no-op decisions; consumers must ignore these"`
	}
}

type DeleteSessionResponse struct {
	Body struct {
		ID string `json:"id"`
	}
}

func createSessionHdlr(s *Server) func(ctx context.Context, in *CreateSessionInput) (*CreateSessionResponse, error) {
	return func(ctx context.Context, in *CreateSessionInput) (*CreateSessionResponse, error) {
		algorithm := in.Algorithm
		if algorithm == "" {
			algorithm = s.Cfg.Algorithm
		}
		sess, err := s.Sessions.Create(algorithm)
		if err != nil {
			if errors.Is(err, policy.ErrUnknownAlgorithm) {
				return nil, huma.Error400BadRequest(err.Error())
			}
			return nil, err
		}
		setActiveSessions(s.Sessions.Count())
		resp := &CreateSessionResponse{}
		resp.Body.ID = sess.ID
		resp.Body.Algorithm = sess.Algorithm
		return resp, nil
	}
}

func registerMetricsHdlr(s *Server) func(ctx context.Context, in *RegisterMetricsInput) (*okResponse, error) {
	return func(ctx context.Context, in *RegisterMetricsInput) (*okResponse, error) {
		sess, ok := s.Sessions.Get(in.ID)
		if !ok {
			return nil, huma.Error404NotFound(errSessionNotFound.Error())
		}
		sess.RegisterMetrics(in.Body)
		resp := &okResponse{}
		resp.Body.OK = true
		return resp, nil
	}
}

func registerAbortHdlr(s *Server) func(ctx context.Context, in *RegisterAbortInput) (*okResponse, error) {
	return func(ctx context.Context, in *RegisterAbortInput) (*okResponse, error) {
		sess, ok := s.Sessions.Get(in.ID)
		if !ok {
			return nil, huma.Error404NotFound(errSessionNotFound.Error())
		}
		sess.RegisterAbort(in.Body.Index)
		resp := &okResponse{}
		resp.Body.OK = true
		return resp, nil
	}
}

func decideHdlr(s *Server) func(ctx context.Context, in *sessionIDInput) (*DecideResponse, error) {
	return func(ctx context.Context, in *sessionIDInput) (*DecideResponse, error) {
		sess, ok := s.Sessions.Get(in.ID)
		if !ok {
			return nil, huma.Error404NotFound(errSessionNotFound.Error())
		}
		d := sess.Tick()
		if !d.IsNoop() {
			observeDecision(sess.Algorithm)
		}
		resp := &DecideResponse{}
		resp.Body.Index = d.Index
		resp.Body.Quality = d.Quality
		resp.Body.Timestamp = d.Timestamp
		resp.Body.Noop = d.IsNoop()
		return resp, nil
	}
}

func deleteSessionHdlr(s *Server) func(ctx context.Context, in *sessionIDInput) (*DeleteSessionResponse, error) {
	return func(ctx context.Context, in *sessionIDInput) (*DeleteSessionResponse, error) {
		if _, ok := s.Sessions.Get(in.ID); !ok {
			return nil, huma.Error404NotFound(errSessionNotFound.Error())
		}
		s.Sessions.Delete(in.ID)
		setActiveSessions(s.Sessions.Count())
		resp := &DeleteSessionResponse{}
		resp.Body.ID = in.ID
		return resp, nil
	}
}

// createRouteAPI registers the typed session operations under /api,
// grounded on cmd/livesim2/app/api.go's humachi wiring for the CMAF-ingest
// API.
func createRouteAPI(s *Server) func(r chi.Router) {
	return func(r chi.Router) {
		config := huma.DefaultConfig("ABR decision core API", "1.0.0")
		config.Servers = []*huma.Server{{URL: "/api"}}
		config.Info.Description = "Telemetry intake and quality-decision API for a per-connection ABR session."

		api := humachi.New(r, config)

		huma.Register(api, huma.Operation{
			OperationID:   "create-session",
			Method:        http.MethodPost,
			Path:          "/sessions",
			Summary:       "Create a new ABR session",
			Tags:          []string{"sessions"},
			DefaultStatus: http.StatusCreated,
			Errors:        []int{400},
		}, createSessionHdlr(s))

		huma.Register(api, huma.Operation{
			OperationID: "register-metrics",
			Method:      http.MethodPost,
			Path:        "/sessions/{id}/metrics",
			Summary:     "Ingest a telemetry batch",
			Tags:        []string{"sessions"},
			Errors:      []int{404},
		}, registerMetricsHdlr(s))

		huma.Register(api, huma.Operation{
			OperationID: "register-abort",
			Method:      http.MethodPost,
			Path:        "/sessions/{id}/abort",
			Summary:     "Register an aborted segment download",
			Tags:        []string{"sessions"},
			Errors:      []int{404},
		}, registerAbortHdlr(s))

		huma.Register(api, huma.Operation{
			OperationID: "decide",
			Method:      http.MethodPost,
			Path:        "/sessions/{id}/decide",
			Summary:     "Run one controller tick and return the resulting decision",
			Tags:        []string{"sessions"},
			Errors:      []int{404},
		}, decideHdlr(s))

		huma.Register(api, huma.Operation{
			OperationID: "delete-session",
			Method:      http.MethodDelete,
			Path:        "/sessions/{id}",
			Summary:     "Tear down a session",
			Tags:        []string{"sessions"},
			Errors:      []int{404},
		}, deleteSessionHdlr(s))
	}
}
