package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(requestTimeout(s.RequestTimeout))

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/answers", s.handleRecordAnswer)
		r.Post("/sessions/{id}/finalize", s.handleFinalizeSession)
		r.Post("/audio/resolve", s.handleResolveAudio)
		r.Get("/users/{id}/progress", s.handleUserProgress)
		r.Get("/users/{id}/progress/{wordID}", s.handleWordProgress)
	})

	if s.AudioDir != "" {
		r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.AudioDir))))
	}
	return r
}
