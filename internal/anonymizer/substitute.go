// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package anonymizer

import (
	"strings"

	"text-anonymizer/internal/detector"
	"text-anonymizer/internal/labels"
)

// substitute rewrites text by replacing each resolved span with its
// placeholder in a single left-to-right cursor pass. Spans must be pairwise
// disjoint and sorted by start (the merger invariant), so no re-scanning or
// offset shifting is needed: replacement decisions are made against
// original-text offsets, never against the growing output. All untouched
// text is copied through verbatim.
func substitute(text string, spans []detector.Span, mapper *labels.Mapper) (string, map[string]int, map[string][]string) {
	summary := make(map[string]int)
	if len(spans) == 0 {
		return text, summary, nil
	}

	details := make(map[string][]string)
	runes := []rune(text)

	var b strings.Builder
	b.Grow(len(text))
	cursor := 0
	for _, span := range spans {
		b.WriteString(string(runes[cursor:span.Start]))

		outputLabel := mapper.Map(span.Label)
		b.WriteString("<")
		b.WriteString(outputLabel)
		b.WriteString(">")

		summary[outputLabel]++
		details[outputLabel] = append(details[outputLabel], span.Text)
		cursor = span.End
	}
	b.WriteString(string(runes[cursor:]))

	return b.String(), summary, details
}
