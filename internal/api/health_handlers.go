package api

import (
	"net/http"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
)

// handleHealth reports liveness and always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 when the database answers, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if s.DB == nil {
		handleError(w, r, errors.NewStorageError("readiness", errors.New("no database configured")))
		return
	}
	if err := s.DB.Healthy(ctx); err != nil {
		log.Warn("readiness check failed - database: %v", err)
		handleError(w, r, errors.NewStorageError("readiness", err))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}
