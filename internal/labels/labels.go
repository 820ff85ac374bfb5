// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package labels parses caller-supplied detection labels and maps internal
// entity labels to the output vocabulary.
package labels

import (
	"fmt"
	"strings"
)

// Kind identifies which detection path a label request addresses.
type Kind int

const (
	// KindNER requests detection through the external NER provider.
	KindNER Kind = iota
	// KindRegex requests a configured regex entity.
	KindRegex
)

// Request is the parsed form of one caller-supplied label. Suffix-based
// dispatch happens once, up front, instead of repeated string inspection in
// detection logic.
type Request struct {
	Kind Kind
	// Name is the provider vocabulary label for KindNER (lowercase,
	// space-separated words, e.g. "phone number") and the uppercase entity
	// name for KindRegex (e.g. "FI_HETU").
	Name string
}

// InvalidLabelError reports a requested label that matches neither a known
// regex entity nor a resolvable NER label.
type InvalidLabelError struct {
	Label  string
	Reason string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid label %q: %s", e.Label, e.Reason)
}

// Parse converts a label list into requests. A label ending in "_ner" is an
// NER request for the label minus suffix (underscores become spaces); a label
// ending in "_regex" names a regex entity (uppercased); an unsuffixed label
// is treated as an NER label for backward compatibility. The legacy
// "blocklist" pseudo-label is accepted and dropped — blocklist scanning
// always runs.
func Parse(rawLabels []string) ([]Request, error) {
	requests := make([]Request, 0, len(rawLabels))
	for _, raw := range rawLabels {
		label := strings.TrimSpace(raw)
		if label == "" {
			return nil, &InvalidLabelError{Label: raw, Reason: "empty label"}
		}
		if strings.EqualFold(label, "blocklist") {
			continue
		}

		switch {
		case strings.HasSuffix(label, "_ner"):
			name := nerVocabulary(strings.TrimSuffix(label, "_ner"))
			if name == "" {
				return nil, &InvalidLabelError{Label: raw, Reason: "no label before _ner suffix"}
			}
			requests = append(requests, Request{Kind: KindNER, Name: name})
		case strings.HasSuffix(label, "_regex"):
			name := strings.ToUpper(strings.TrimSuffix(label, "_regex"))
			if name == "" {
				return nil, &InvalidLabelError{Label: raw, Reason: "no entity name before _regex suffix"}
			}
			requests = append(requests, Request{Kind: KindRegex, Name: name})
		default:
			requests = append(requests, Request{Kind: KindNER, Name: nerVocabulary(label)})
		}
	}
	return requests, nil
}

// Split separates parsed requests by kind, preserving order.
func Split(requests []Request) (ner []Request, regex []Request) {
	for _, r := range requests {
		if r.Kind == KindRegex {
			regex = append(regex, r)
		} else {
			ner = append(ner, r)
		}
	}
	return ner, regex
}

// nerVocabulary converts a label to the provider's vocabulary: lowercase,
// underscores become spaces ("phone_number" -> "phone number").
func nerVocabulary(label string) string {
	return strings.ToLower(strings.ReplaceAll(label, "_", " "))
}

// Normalize converts any label to its internal uppercase-with-underscores
// form ("phone number" -> "PHONE_NUMBER").
func Normalize(label string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(label), " ", "_"))
}
