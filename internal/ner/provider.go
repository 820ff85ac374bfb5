// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ner wraps the external NER provider behind a narrow capability
// interface so the merging core has zero dependency on the specific model.
package ner

import "context"

// Entity is one scored span in the provider's response. Offsets are
// character offsets into the submitted text.
type Entity struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Provider is the external NER model contract. Labels are passed in the
// provider's vocabulary (lowercase, space-separated words, e.g.
// "phone number"). Any conforming implementation — mock, remote service,
// in-process model — can substitute.
type Provider interface {
	Predict(ctx context.Context, text string, labels []string, threshold float64) ([]Entity, error)
}

// ProviderUnavailableError reports that the NER provider was unreachable or
// erroring. The raw client never retries; retry policy belongs to the
// RetryingProvider decorator.
type ProviderUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return "ner provider unavailable at " + e.Endpoint + ": " + e.Err.Error()
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// Temporary marks provider outages as transient for retry classification.
func (e *ProviderUnavailableError) Temporary() bool {
	return true
}
