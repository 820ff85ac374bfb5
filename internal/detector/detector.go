// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector defines the span model shared by all detection sources.
package detector

import "unicode/utf8"

// Source identifies which detection path produced a span.
type Source string

const (
	// SourceRegex marks spans produced by profile regex patterns.
	SourceRegex Source = "regex"
	// SourceNER marks spans produced by the external NER provider.
	SourceNER Source = "ner"
	// SourceBlocklist marks synthetic spans produced by blocklist scanning.
	SourceBlocklist Source = "blocklist"
)

// Span is a candidate or accepted detected region of text. Start and End are
// half-open character (rune) offsets into the original text, Start < End.
// Spans are immutable once produced; the merger builds new slices, never
// mutates inputs.
type Span struct {
	Start  int
	End    int
	Label  string // internal entity identifier, uppercase (PERSON, FI_HETU, ...)
	Score  float64
	Source Source
	Text   string // the matched slice of the original text
}

// Len returns the span length in runes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share any offset.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Offsets converts byte offsets (as produced by regexp matching) into rune
// offsets. Built once per text, O(1) per lookup.
type Offsets struct {
	byteToRune []int
}

// NewOffsets builds an offset converter for text.
func NewOffsets(text string) *Offsets {
	o := &Offsets{byteToRune: make([]int, len(text)+1)}
	runeIdx := 0
	for byteIdx := range text {
		o.byteToRune[byteIdx] = runeIdx
		runeIdx++
	}
	o.byteToRune[len(text)] = utf8.RuneCountInString(text)
	return o
}

// Rune returns the rune offset for a byte offset. Byte offsets must fall on
// rune boundaries, which regexp matches against valid UTF-8 guarantee.
func (o *Offsets) Rune(byteOff int) int {
	if byteOff < 0 {
		return 0
	}
	if byteOff >= len(o.byteToRune) {
		return o.byteToRune[len(o.byteToRune)-1]
	}
	return o.byteToRune[byteOff]
}
