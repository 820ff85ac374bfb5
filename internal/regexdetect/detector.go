// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package regexdetect produces perfect-confidence spans from profile regex
// patterns.
package regexdetect

import (
	"text-anonymizer/internal/config"
	"text-anonymizer/internal/detector"
	"text-anonymizer/internal/labels"
)

// Detect runs the requested regex entities over text. When requested is
// empty, every entity configured in the profile runs. Each match becomes one
// span with score 1.0 and source regex. Overlapping matches from different
// patterns under the same entity name are all emitted — deduplication is the
// merger's job. Matching is case-sensitive unless a pattern itself encodes
// case-insensitivity.
func Detect(text string, profile *config.Profile, requested []labels.Request) ([]detector.Span, error) {
	var groups []config.RegexEntity
	if len(requested) == 0 {
		groups = profile.Entities
	} else {
		for _, req := range requested {
			group, ok := profile.Entity(req.Name)
			if !ok {
				return nil, &labels.InvalidLabelError{
					Label:  req.Name,
					Reason: "no regex entity with this name in profile " + profile.Name,
				}
			}
			groups = append(groups, group)
		}
	}

	offsets := detector.NewOffsets(text)
	var spans []detector.Span
	for _, group := range groups {
		for _, re := range group.Patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				spans = append(spans, detector.Span{
					Start:  offsets.Rune(loc[0]),
					End:    offsets.Rune(loc[1]),
					Label:  group.Name,
					Score:  1.0,
					Source: detector.SourceRegex,
					Text:   text[loc[0]:loc[1]],
				})
			}
		}
	}
	return spans, nil
}
