// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ner

import (
	"context"

	"github.com/rs/zerolog/log"

	"text-anonymizer/internal/resilience"
)

// RetryingProvider decorates a Provider with retry-on-transient-failure
// behavior. Provider outages and network errors are retried with backoff;
// everything else surfaces immediately.
type RetryingProvider struct {
	inner  Provider
	config resilience.RetryConfig
}

// NewRetryingProvider wraps a provider with the NER retry policy.
func NewRetryingProvider(inner Provider) *RetryingProvider {
	config := resilience.NERRetryConfig()
	config.OnRetry = func(attempt int, err error) {
		log.Warn().Int("attempt", attempt).Err(err).Msg("retrying ner provider call")
	}
	return &RetryingProvider{inner: inner, config: config}
}

func (p *RetryingProvider) Predict(ctx context.Context, text string, labels []string, threshold float64) ([]Entity, error) {
	return resilience.RetryWithResult(ctx, p.config, func(ctx context.Context) ([]Entity, error) {
		return p.inner.Predict(ctx, text, labels, threshold)
	})
}
