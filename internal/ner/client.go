// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client calls a GLiNER sidecar service's /predict endpoint over HTTP.
// Safe for concurrent use.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a Client pointing at the given base URL
// (e.g. "http://gliner:8001").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		url: strings.TrimSuffix(baseURL, "/") + "/predict",
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type predictRequest struct {
	Text      string   `json:"text"`
	Labels    []string `json:"labels"`
	Threshold float64  `json:"threshold"`
}

// Predict sends text and a label vocabulary to the sidecar and returns the
// scored entities it found. Transport failures and non-200 responses surface
// as *ProviderUnavailableError so callers can decide whether to retry.
func (c *Client) Predict(ctx context.Context, text string, labels []string, threshold float64) ([]Entity, error) {
	body, err := json.Marshal(predictRequest{Text: text, Labels: labels, Threshold: threshold})
	if err != nil {
		return nil, fmt.Errorf("ner: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ner: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", c.url).Msg("ner provider unreachable")
		return nil, &ProviderUnavailableError{Endpoint: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("endpoint", c.url).Msg("ner provider returned unexpected status")
		return nil, &ProviderUnavailableError{
			Endpoint: c.url,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var entities []Entity
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		return nil, &ProviderUnavailableError{
			Endpoint: c.url,
			Err:      fmt.Errorf("decode response: %w", err),
		}
	}
	return entities, nil
}
