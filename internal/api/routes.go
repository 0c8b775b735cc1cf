package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		if s.UpdateTimeout > 0 {
			r.Use(timeoutMiddleware(s.UpdateTimeout))
		}
		r.Post("/webhook", s.handleWebhook)
	})
	return r
}
