package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adocshq/adocs/internal/generation"
	"github.com/adocshq/adocs/internal/injection"
	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/pipeline"
	"github.com/adocshq/adocs/internal/sections"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Route("/knowledge-base", func(r chi.Router) {
			r.Post("/rebuild", s.handleRebuild)
			r.Get("/stats", s.handleStats)
		})
		r.Get("/config/validate", s.handleValidateConfig)
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var meta metadata.RepoMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if meta.RepoURL == "" {
		writeError(w, http.StatusBadRequest, "github_url is required")
		return
	}

	result, err := s.service.GenerateDocumentation(r.Context(), &meta)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// rebuildRequest carries raw analysis records and the exemplar structures
// keyed by repository URL.
type rebuildRequest struct {
	Records   []metadata.RepoMetadata       `json:"records"`
	Exemplars map[string]sections.Structure `json:"exemplars"`
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "records are required")
		return
	}

	snap, err := s.rebuilder.Rebuild(r.Context(), req.Records, req.Exemplars)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":  snap.Version,
		"records":  len(snap.Records),
		"embedder": snap.EmbedderName,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshots.Load()
	if snap == nil {
		writeError(w, http.StatusNotFound, "no knowledge base loaded")
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats())
}

func (s *Server) handleValidateConfig(w http.ResponseWriter, r *http.Request) {
	repoURL := r.URL.Query().Get("repo_url")
	if repoURL == "" {
		writeError(w, http.StatusBadRequest, "repo_url query parameter is required")
		return
	}

	cfg, err := s.service.Repos.Get(repoURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	violations := pipeline.ValidateConfig(cfg)
	if violations == nil {
		violations = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repo_url":   repoURL,
		"configured": cfg != nil,
		"valid":      len(violations) == 0,
		"violations": violations,
	})
}

// statusFor maps pipeline errors onto HTTP statuses without leaking
// provider internals.
func statusFor(err error) int {
	if pipeline.IsConfigError(err) {
		return http.StatusBadRequest
	}
	var ie *injection.Error
	if errors.As(err, &ie) {
		return http.StatusUnprocessableEntity
	}
	switch generation.ErrKind(err) {
	case generation.KindUnavailable:
		return http.StatusBadGateway
	case generation.KindMalformedOutput:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
