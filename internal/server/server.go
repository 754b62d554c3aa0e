// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research pipeline over HTTP. Runs are created
// and answered synchronously for the clarifying stage; the pipeline itself
// executes in the background with the run persisted on completion.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/internal/runstore"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Server routes API requests to the pipeline and run store.
type Server struct {
	pipe    *pipeline.Pipeline
	store   *runstore.Store
	router  *mux.Router
	baseCtx context.Context
}

// APIResponse is the uniform envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateRunRequest starts a new research run. With Clarify set the run stops
// after producing clarifying questions and waits for POST /runs/{id}/answers;
// otherwise the pipeline starts immediately.
type CreateRunRequest struct {
	Query   string `json:"query"`
	Clarify bool   `json:"clarify"`
}

// AnswersRequest carries clarifying answers, in question order.
type AnswersRequest struct {
	Answers []string `json:"answers"`
}

// New builds a Server and its routes. Background pipeline runs inherit ctx:
// cancelling it stops in-flight runs, which are then persisted in whatever
// state they reached.
func New(ctx context.Context, pipe *pipeline.Pipeline, store *runstore.Store) *Server {
	s := &Server{pipe: pipe, store: store, router: mux.NewRouter(), baseCtx: ctx}
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for mounting or for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.loggingMiddleware)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	api.HandleFunc("/runs", s.handleCreateRun).Methods("POST")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")
	api.HandleFunc("/runs/{id}/answers", s.handleAnswers).Methods("POST")
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s in %v", r.Method, r.RequestURI, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Query == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	run := pipeline.NewRun(req.Query)

	if req.Clarify {
		if err := s.pipe.Clarify(r.Context(), run, log.Writer()); err != nil {
			s.saveRun(run)
			s.writeErrorResponse(w, http.StatusBadGateway, fmt.Sprintf("clarifying failed: %v", err))
			return
		}
		s.saveRun(run)
		s.writeJSONResponse(w, http.StatusCreated, APIResponse{Success: true, Data: run})
		return
	}

	s.saveRun(run)

	// The pipeline goroutine owns run exclusively from startRun on; the
	// response encodes a snapshot taken before the handoff.
	snap, err := snapshotRun(run)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.startRun(run)
	s.writeJSONResponse(w, http.StatusAccepted, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("listing runs: %v", err))
		return
	}
	s.writeJSONResponse(w, http.StatusOK, APIResponse{Success: true, Data: summaries})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSONResponse(w, http.StatusOK, APIResponse{Success: true, Data: run})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSONResponse(w, http.StatusOK, APIResponse{Success: true})
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	run, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	if err := pipeline.Answer(run, req.Answers); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.saveRun(run)

	snap, err := snapshotRun(run)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.startRun(run)
	s.writeJSONResponse(w, http.StatusAccepted, APIResponse{Success: true, Data: snap})
}

// startRun executes the pipeline in the background and persists the run when
// it finishes, in whichever terminal state it reached. The goroutine is the
// run's sole owner; callers must not touch run after handing it off.
func (s *Server) startRun(run *types.Run) {
	go func() {
		if err := s.pipe.Run(s.baseCtx, run, log.Writer()); err != nil {
			log.Printf("run %s: %v", run.ID, err)
		}
		s.saveRun(run)
	}()
}

// snapshotRun deep-copies a run through its JSON form.
func snapshotRun(run *types.Run) (*types.Run, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("encoding run %s: %w", run.ID, err)
	}
	var snap types.Run
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", run.ID, err)
	}
	return &snap, nil
}

func (s *Server) saveRun(run *types.Run) {
	if err := s.store.Save(context.Background(), run); err != nil {
		log.Printf("saving run %s: %v", run.ID, err)
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSONResponse(w, status, APIResponse{Success: false, Error: message})
}
