// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"text-anonymizer/internal/anonymizer"
	"text-anonymizer/internal/config"
	"text-anonymizer/internal/labels"
	"text-anonymizer/internal/ner"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

type anonymizeRequest struct {
	Text      string   `json:"text"`
	Labels    []string `json:"labels,omitempty"`
	Profile   string   `json:"profile,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
}

func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	var req anonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "threshold must be in [0,1]")
		return
	}

	result, err := s.engine.Anonymize(r.Context(), anonymizer.Request{
		Text:      req.Text,
		Labels:    req.Labels,
		Profile:   req.Profile,
		Threshold: req.Threshold,
	})
	if err != nil {
		s.writeAnonymizeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeAnonymizeError maps engine errors to HTTP statuses: caller mistakes
// (bad labels, broken profile config) are 400s, provider outages are 502s.
func (s *Server) writeAnonymizeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidLabel *labels.InvalidLabelError
	if errors.As(err, &invalidLabel) {
		writeError(w, http.StatusBadRequest, "invalid_label", invalidLabel.Error())
		return
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		writeError(w, http.StatusBadRequest, "invalid_profile", cfgErr.Error())
		return
	}

	var unavailable *ner.ProviderUnavailableError
	if errors.As(err, &unavailable) {
		log.Error().Err(err).Msg("ner provider unavailable")
		writeError(w, http.StatusBadGateway, "ner_unavailable", unavailable.Error())
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg("anonymize failed")
	writeError(w, http.StatusInternalServerError, "internal", err.Error())
}

func (s *Server) handleProfilesList(w http.ResponseWriter, _ *http.Request) {
	names, err := s.profiles.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": names})
}

func (s *Server) handleProfileReload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	profile, err := s.profiles.Reload(name)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, "invalid_profile", cfgErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	log.Info().Str("profile", name).Msg("profile reloaded")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":        profile.Name,
		"regex_entities": len(profile.Entities),
		"blocklist":      len(profile.Blocklist),
		"grantlist":      len(profile.Grantlist),
	})
}
