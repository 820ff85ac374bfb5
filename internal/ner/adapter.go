// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ner

import (
	"context"

	"text-anonymizer/internal/detector"
	"text-anonymizer/internal/labels"
)

// Detect translates the requested NER labels into the provider vocabulary,
// invokes the provider once, and normalizes the returned entities into
// spans. Entities with out-of-range or inverted offsets are dropped; scores
// are clamped to [0,1]. When no NER labels are requested the provider is not
// called at all.
func Detect(ctx context.Context, provider Provider, text string, requests []labels.Request, threshold float64) ([]detector.Span, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	vocabulary := make([]string, 0, len(requests))
	seen := make(map[string]struct{}, len(requests))
	for _, req := range requests {
		if _, dup := seen[req.Name]; dup {
			continue
		}
		seen[req.Name] = struct{}{}
		vocabulary = append(vocabulary, req.Name)
	}

	entities, err := provider.Predict(ctx, text, vocabulary, threshold)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	spans := make([]detector.Span, 0, len(entities))
	for _, e := range entities {
		if e.Start < 0 || e.End > len(runes) || e.Start >= e.End {
			continue
		}
		score := e.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		spans = append(spans, detector.Span{
			Start:  e.Start,
			End:    e.End,
			Label:  labels.Normalize(e.Label),
			Score:  score,
			Source: detector.SourceNER,
			Text:   string(runes[e.Start:e.End]),
		})
	}
	return spans, nil
}
