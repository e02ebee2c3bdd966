// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dash-Industry-Forum/abrcore/internal/session"
	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
)

// Server holds the chi router, configuration, shared catalogue, and the
// per-connection session registry (SPEC_FULL.md "Host loop / session
// orchestration"). It replaces the teacher's assetMgr/cmafMgr/template
// fields, which existed to generate and serve DASH manifests and media —
// out of scope for a decision core (see DESIGN.md).
type Server struct {
	Router *chi.Mux
	Cfg    *ServerConfig

	Catalogue *catalogue.Catalogue
	Sessions  *session.Manager
}

func (s *Server) healthzHandlerFunc(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, true, http.StatusOK)
}

// jsonResponse marshals message and gives a response with code.
//
// Don't add any more content after this since Content-Length is set.
func (s *Server) jsonResponse(w http.ResponseWriter, message any, code int) {
	raw, err := json.Marshal(message)
	if err != nil {
		http.Error(w, fmt.Sprintf("{message: \"%s\"}", err), http.StatusInternalServerError)
		slog.Error(err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(code)
	_, err = w.Write(raw)
	if err != nil {
		slog.Error("could not write HTTP response", "err", err)
	}
}
