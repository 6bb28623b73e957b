package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/storage"
)

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	urlParam := r.URL.Query().Get("url")
	if urlParam == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL query parameter is required")
		return
	}

	rec, err := s.records.FindByURL(r.Context(), urlParam)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "record not found")
			return
		}
		s.logger.Error("failed to find record", zap.String("url", urlParam), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve record")
		return
	}

	s.respondWithJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.stats.Stats()

	n, err := s.records.Count(r.Context())
	if err != nil {
		s.logger.Error("failed to count records", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not count records")
		return
	}
	stats.Records = n

	s.respondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(s.backends))
	isHealthy := true
	for name, b := range s.backends {
		if err := b.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			isHealthy = false
			s.logger.Error("health check failed", zap.String("backend", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
