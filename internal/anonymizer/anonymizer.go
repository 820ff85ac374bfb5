// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package anonymizer orchestrates detection, merging, and substitution.
// This is the shared core used by both the CLI and the web server.
package anonymizer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"text-anonymizer/internal/config"
	"text-anonymizer/internal/labels"
	"text-anonymizer/internal/merger"
	"text-anonymizer/internal/ner"
	"text-anonymizer/internal/regexdetect"
)

// Request holds the parameters of one anonymize call.
type Request struct {
	Text string
	// Labels selects detectors by suffix convention (_ner / _regex, bare
	// labels are NER). Empty means "run everything configured in the
	// active profile".
	Labels []string
	// Profile names the configuration profile; empty means the configured
	// default.
	Profile string
	// Threshold overrides the NER confidence threshold when > 0.
	Threshold float64
}

// Result is the outcome of one anonymize call. Summary counts are keyed by
// output label and sum to the number of substituted spans.
type Result struct {
	AnonymizedText string              `json:"anonymized_text"`
	Summary        map[string]int      `json:"summary"`
	Details        map[string][]string `json:"details,omitempty"`
}

// Engine runs anonymize calls. It owns no per-call state: every call builds
// its spans fresh and discards them, so an Engine is safe for concurrent
// use. The profile cache inside the store is the only cross-call shared
// resource.
type Engine struct {
	cfg      *config.Config
	profiles *config.ProfileStore
	provider ner.Provider
	mapper   *labels.Mapper
}

// New creates an Engine. The profile store and label mapper are constructed
// once at startup and shared by reference — there is no hidden global state.
func New(cfg *config.Config, profiles *config.ProfileStore, provider ner.Provider, mapper *labels.Mapper) *Engine {
	return &Engine{
		cfg:      cfg,
		profiles: profiles,
		provider: provider,
		mapper:   mapper,
	}
}

// Anonymize detects PII spans in the request text and substitutes each with
// a labeled placeholder. Partial failures are not merged into a degraded
// success: if NER fails the whole call fails, so callers never receive a
// silently under-anonymized result.
func (e *Engine) Anonymize(ctx context.Context, req Request) (*Result, error) {
	if req.Text == "" {
		return &Result{AnonymizedText: "", Summary: map[string]int{}}, nil
	}

	profileName := req.Profile
	if profileName == "" {
		profileName = e.cfg.Defaults.Profile
	}
	if profileName == "" {
		profileName = "default"
	}

	profile, err := e.profiles.Load(profileName)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	active := req.Labels
	if len(active) == 0 {
		active = profile.Labels
	}
	if len(active) == 0 {
		active = e.cfg.Defaults.Labels
	}
	if len(active) == 0 {
		active = config.DefaultNERLabels
	}

	requests, err := labels.Parse(active)
	if err != nil {
		return nil, err
	}
	nerRequests, regexRequests := labels.Split(requests)

	regexSpans, err := regexdetect.Detect(req.Text, profile, regexRequests)
	if err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = e.cfg.NER.Threshold
	}
	nerSpans, err := ner.Detect(ctx, e.provider, req.Text, nerRequests, threshold)
	if err != nil {
		return nil, err
	}

	resolved := merger.Resolve(regexSpans, nerSpans, profile, req.Text)
	log.Debug().
		Str("profile", profileName).
		Int("regex_spans", len(regexSpans)).
		Int("ner_spans", len(nerSpans)).
		Int("resolved", len(resolved)).
		Msg("span resolution complete")

	anonymized, summary, details := substitute(req.Text, resolved, e.mapper)
	return &Result{
		AnonymizedText: anonymized,
		Summary:        summary,
		Details:        details,
	}, nil
}
