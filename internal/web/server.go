// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the anonymization engine over HTTP.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"text-anonymizer/internal/anonymizer"
	"text-anonymizer/internal/config"
)

const requestTimeout = 60 * time.Second

// Server holds all dependencies for the HTTP API.
type Server struct {
	router    *chi.Mux
	engine    *anonymizer.Engine
	profiles  *config.ProfileStore
	startTime time.Time
}

// NewServer builds a Server around an engine and its profile store.
func NewServer(engine *anonymizer.Engine, profiles *config.ProfileStore) *Server {
	return &Server{
		router:    chi.NewRouter(),
		engine:    engine,
		profiles:  profiles,
		startTime: time.Now(),
	}
}

// Routes returns the configured http.Handler (chi router with all middleware
// and routes).
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Post("/api/anonymize", s.handleAnonymize)
	r.Get("/api/profiles", s.handleProfilesList)
	r.Post("/api/profiles/{name}/reload", s.handleProfileReload)

	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
