// Package server is the HTTP command interface used by the browser companion:
// settings, stats, forced suspension and lifecycle event ingestion.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	suspender "github.com/abrorxon-karimxonov/zen-auto-inactive-tabs"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/host"
)

type Server struct {
	logger   *slog.Logger
	sus      *suspender.Suspender
	registry *host.Registry
}

func New(logger *slog.Logger, sus *suspender.Suspender, registry *host.Registry) *Server {
	return &Server{logger: logger, sus: sus, registry: registry}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID, s.logRequests)

	// unrecognized commands get an explicit error, not silence; registered
	// before the routes so mounted subrouters inherit both handlers
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "unknown command")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "unknown command")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.saveSettings)
		r.Get("/stats", s.getStats)
		r.Post("/suspend", s.forceSuspend)
		r.Post("/tabs/events", s.ingestEvents)
		r.Get("/tabs/pending", s.drainPending)
	})

	return r
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsToPayload(s.sus.Settings()))
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	var p settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "malformed settings payload: "+err.Error())
		return
	}

	merged, err := s.sus.SaveSettings(r.Context(), p.toPatch())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Success: true, Settings: settingsToPayload(merged)})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.sus.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statsPayload{
		Total:     stats.Total,
		Active:    stats.Active,
		Discarded: stats.Discarded,
		Enabled:   stats.Enabled,
	})
}

func (s *Server) forceSuspend(w http.ResponseWriter, r *http.Request) {
	evicted := s.sus.ForceEvictNow(r.Context())
	writeJSON(w, http.StatusOK, evictResponse{Evicted: evicted})
}

func (s *Server) drainPending(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.DrainPending()
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	writeJSON(w, http.StatusOK, pendingResponse{Suspend: out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
