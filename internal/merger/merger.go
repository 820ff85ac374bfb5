// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package merger combines candidate spans from all detection sources,
// applies list-based overrides, and resolves overlaps into one consistent,
// non-overlapping span set.
package merger

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"text-anonymizer/internal/config"
	"text-anonymizer/internal/detector"
)

// BlocklistLabel is the generic-identifier label assigned to synthetic
// blocklist spans.
const BlocklistLabel = "MUU_TUNNISTE"

// Resolve merges regex and NER candidate spans with blocklist matches,
// discards grantlisted candidates, and resolves overlaps. The returned set
// is pairwise non-overlapping and sorted by start.
//
// Resolution policy: regex- and blocklist-sourced spans outrank NER spans of
// any score — regex patterns encode exact, human-specified formats that a
// probabilistic model should never override. Within a source class, higher
// score wins, then the earlier start, then the longer span (wider coverage
// maximizes information removed). Exactly-overlapping regex spans from
// different entities resolve to the first-declared entity: the sort is
// stable and candidates arrive in declaration order.
func Resolve(regexSpans, nerSpans []detector.Span, profile *config.Profile, text string) []detector.Span {
	candidates := make([]detector.Span, 0, len(regexSpans)+len(nerSpans))
	candidates = append(candidates, regexSpans...)
	candidates = append(candidates, nerSpans...)
	candidates = append(candidates, blocklistSpans(text, profile)...)

	candidates = excludeGranted(candidates, text, profile)
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if ca, cb := sourceClass(a.Source), sourceClass(b.Source); ca != cb {
			return ca > cb
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Len() > b.Len()
	})

	// Walk in priority order; a candidate overlapping any accepted span is
	// the lower-priority one by construction and is discarded.
	var accepted []detector.Span
	for _, candidate := range candidates {
		if overlapsAny(accepted, candidate) {
			continue
		}
		accepted = append(accepted, candidate)
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// sourceClass gives regex- and blocklist-origin spans fixed top priority
// over NER spans of any score.
func sourceClass(s detector.Source) int {
	if s == detector.SourceNER {
		return 0
	}
	return 1
}

func overlapsAny(accepted []detector.Span, candidate detector.Span) bool {
	for _, a := range accepted {
		if a.Overlaps(candidate) {
			return true
		}
	}
	return false
}

// blocklistSpans scans the text for blocklist phrases using case-insensitive
// word-boundary matching. Each match becomes a synthetic span so a
// blocklisted phrase is detected even absent any regex or NER hit.
func blocklistSpans(text string, profile *config.Profile) []detector.Span {
	patterns := profile.BlocklistPatterns()
	if len(patterns) == 0 {
		return nil
	}

	offsets := detector.NewOffsets(text)
	var spans []detector.Span
	for _, interval := range phraseMatches(text, patterns) {
		spans = append(spans, detector.Span{
			Start:  offsets.Rune(interval[0]),
			End:    offsets.Rune(interval[1]),
			Label:  BlocklistLabel,
			Score:  1.0,
			Source: detector.SourceBlocklist,
			Text:   text[interval[0]:interval[1]],
		})
	}
	return spans
}

// excludeGranted discards every candidate whose matched text exactly equals,
// or is fully contained by, a grantlist phrase match. The grantlist is the
// one absolute veto in the system: it wins over every detection source,
// blocklist included.
func excludeGranted(candidates []detector.Span, text string, profile *config.Profile) []detector.Span {
	patterns := profile.GrantlistPatterns()
	if len(patterns) == 0 || len(candidates) == 0 {
		return candidates
	}

	offsets := detector.NewOffsets(text)
	intervals := phraseMatches(text, patterns)
	if len(intervals) == 0 {
		return candidates
	}

	granted := make([][2]int, 0, len(intervals))
	for _, interval := range intervals {
		granted = append(granted, [2]int{offsets.Rune(interval[0]), offsets.Rune(interval[1])})
	}

	kept := make([]detector.Span, 0, len(candidates))
	for _, candidate := range candidates {
		if coveredByAny(candidate, granted) {
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

func coveredByAny(s detector.Span, granted [][2]int) bool {
	for _, g := range granted {
		if g[0] <= s.Start && s.End <= g[1] {
			return true
		}
	}
	return false
}

// phraseMatches returns byte-offset intervals for every case-insensitive,
// word-boundary match of every phrase pattern. Boundaries are checked on
// runes, not with regexp \b: Go's \b is ASCII-only and never matches
// phrases edged with letters like ä, ö or å.
func phraseMatches(text string, patterns []*regexp.Regexp) [][]int {
	var intervals [][]int
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if onWordBoundaries(text, loc[0], loc[1]) {
				intervals = append(intervals, loc)
			}
		}
	}
	return intervals
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// onWordBoundaries reports whether the match at [start,end) sits on word
// boundaries: a word rune at a match edge must not touch another word rune
// outside the match. Non-word edges (punctuation, symbols) self-delimit.
func onWordBoundaries(text string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:end])
	if isWordRune(first) && start > 0 {
		if prev, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(prev) {
			return false
		}
	}

	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if isWordRune(last) && end < len(text) {
		if next, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(next) {
			return false
		}
	}
	return true
}
