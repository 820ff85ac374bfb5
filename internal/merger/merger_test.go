// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text-anonymizer/internal/config"
	"text-anonymizer/internal/detector"
)

func emptyProfile() *config.Profile {
	return &config.Profile{Name: "test"}
}

func assertDisjointSorted(t *testing.T, spans []detector.Span) {
	t.Helper()
	for i := 1; i < len(spans); i++ {
		assert.GreaterOrEqual(t, spans[i].Start, spans[i-1].End,
			"spans %d and %d overlap or are unsorted: %+v %+v", i-1, i, spans[i-1], spans[i])
	}
}

func TestResolve_Disjoint(t *testing.T) {
	text := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	regexSpans := []detector.Span{
		{Start: 0, End: 10, Label: "A", Score: 1.0, Source: detector.SourceRegex},
		{Start: 5, End: 15, Label: "B", Score: 1.0, Source: detector.SourceRegex},
	}
	nerSpans := []detector.Span{
		{Start: 8, End: 20, Label: "PERSON", Score: 0.99, Source: detector.SourceNER},
		{Start: 18, End: 25, Label: "PERSON", Score: 0.5, Source: detector.SourceNER},
	}

	resolved := Resolve(regexSpans, nerSpans, emptyProfile(), text)
	assertDisjointSorted(t, resolved)
}

func TestResolve_RegexPrecedence(t *testing.T) {
	// An NER span overlapping a regex span is always discarded, regardless
	// of NER score.
	text := "311299-999A soitti"
	regexSpans := []detector.Span{
		{Start: 0, End: 11, Label: "FI_HETU", Score: 1.0, Source: detector.SourceRegex, Text: "311299-999A"},
	}
	nerSpans := []detector.Span{
		{Start: 0, End: 11, Label: "PHONE_NUMBER", Score: 1.0, Source: detector.SourceNER, Text: "311299-999A"},
	}

	resolved := Resolve(regexSpans, nerSpans, emptyProfile(), text)
	require.Len(t, resolved, 1)
	assert.Equal(t, detector.SourceRegex, resolved[0].Source)
	assert.Equal(t, "FI_HETU", resolved[0].Label)
}

func TestResolve_BlocklistSynthesized(t *testing.T) {
	text := "Matti from MicroCorpSoft called"
	profile := &config.Profile{Name: "test", Blocklist: []string{"MicroCorpSoft"}}

	resolved := Resolve(nil, nil, profile, text)
	require.Len(t, resolved, 1)
	assert.Equal(t, BlocklistLabel, resolved[0].Label)
	assert.Equal(t, detector.SourceBlocklist, resolved[0].Source)
	assert.Equal(t, 1.0, resolved[0].Score)
	assert.Equal(t, "MicroCorpSoft", resolved[0].Text)
}

func TestResolve_BlocklistCaseInsensitiveWordBoundary(t *testing.T) {
	profile := &config.Profile{Name: "test", Blocklist: []string{"acme"}}

	resolved := Resolve(nil, nil, profile, "ACME and Acme but not acmeish")
	require.Len(t, resolved, 2)
	assert.Equal(t, "ACME", resolved[0].Text)
	assert.Equal(t, "Acme", resolved[1].Text)
}

func TestResolve_BlocklistFinnishPhraseEdges(t *testing.T) {
	// Word boundaries must be Unicode-aware: a phrase ending in ö is
	// still found, and ö-adjacency still counts as inside a word.
	profile := &config.Profile{Name: "test", Blocklist: []string{"Yhtiö"}}

	resolved := Resolve(nil, nil, profile, "Yhtiö mainittiin raportissa")
	require.Len(t, resolved, 1)
	assert.Equal(t, "Yhtiö", resolved[0].Text)
	assert.Equal(t, 0, resolved[0].Start)
	assert.Equal(t, 5, resolved[0].End)

	// Case folding covers non-ASCII letters too.
	resolved = Resolve(nil, nil, profile, "YHTIÖ mainittiin")
	require.Len(t, resolved, 1)
	assert.Equal(t, "YHTIÖ", resolved[0].Text)

	// "Yhtiöt" continues the word past the phrase, so no match.
	resolved = Resolve(nil, nil, profile, "Yhtiöt kokoontuivat")
	assert.Empty(t, resolved)
}

func TestResolve_GrantVetoFinnishPhrase(t *testing.T) {
	text := "Päivälä soitti"
	profile := &config.Profile{Name: "test", Grantlist: []string{"Päivälä"}}
	nerSpans := []detector.Span{
		{Start: 0, End: 7, Label: "PERSON", Score: 0.95, Source: detector.SourceNER, Text: "Päivälä"},
	}

	resolved := Resolve(nil, nerSpans, profile, text)
	assert.Empty(t, resolved)
}

func TestResolve_GrantAbsoluteVeto(t *testing.T) {
	// Grant exclusion wins over every source, blocklist included.
	text := "Microsoft called"
	profile := &config.Profile{
		Name:      "test",
		Blocklist: []string{"Microsoft"},
		Grantlist: []string{"Microsoft"},
	}
	nerSpans := []detector.Span{
		{Start: 0, End: 9, Label: "ORGANIZATION", Score: 0.97, Source: detector.SourceNER, Text: "Microsoft"},
	}

	resolved := Resolve(nil, nerSpans, profile, text)
	assert.Empty(t, resolved)
}

func TestResolve_GrantCoversContainedSpans(t *testing.T) {
	// A span fully contained by a grant match is discarded; one extending
	// beyond the grant match is kept.
	text := "Oy Microsoft Finland Ab toimitti"
	profile := &config.Profile{Name: "test", Grantlist: []string{"Microsoft Finland"}}
	nerSpans := []detector.Span{
		{Start: 3, End: 12, Label: "ORGANIZATION", Score: 0.9, Source: detector.SourceNER, Text: "Microsoft"},
		{Start: 0, End: 23, Label: "ORGANIZATION", Score: 0.8, Source: detector.SourceNER, Text: "Oy Microsoft Finland Ab"},
	}

	resolved := Resolve(nil, nerSpans, profile, text)
	require.Len(t, resolved, 1)
	assert.Equal(t, "Oy Microsoft Finland Ab", resolved[0].Text)
}

func TestResolve_HigherScoreWinsWithinNER(t *testing.T) {
	text := "aaaaaaaaaaaaaaaaaaaa"
	nerSpans := []detector.Span{
		{Start: 0, End: 10, Label: "PERSON", Score: 0.6, Source: detector.SourceNER},
		{Start: 5, End: 15, Label: "ADDRESS", Score: 0.9, Source: detector.SourceNER},
	}

	resolved := Resolve(nil, nerSpans, emptyProfile(), text)
	require.Len(t, resolved, 1)
	assert.Equal(t, "ADDRESS", resolved[0].Label)
}

func TestResolve_TieBreakEarlierStartThenLonger(t *testing.T) {
	text := "aaaaaaaaaaaaaaaaaaaa"

	// Equal score, equal source class, different start: earlier wins.
	nerSpans := []detector.Span{
		{Start: 4, End: 10, Label: "B", Score: 0.8, Source: detector.SourceNER},
		{Start: 2, End: 8, Label: "A", Score: 0.8, Source: detector.SourceNER},
	}
	resolved := Resolve(nil, nerSpans, emptyProfile(), text)
	require.Len(t, resolved, 1)
	assert.Equal(t, "A", resolved[0].Label)

	// Exact same start: the longer span wins.
	nerSpans = []detector.Span{
		{Start: 2, End: 6, Label: "SHORT", Score: 0.8, Source: detector.SourceNER},
		{Start: 2, End: 12, Label: "LONG", Score: 0.8, Source: detector.SourceNER},
	}
	resolved = Resolve(nil, nerSpans, emptyProfile(), text)
	require.Len(t, resolved, 1)
	assert.Equal(t, "LONG", resolved[0].Label)
}

func TestResolve_ExactOverlapFirstDeclaredEntityWins(t *testing.T) {
	// Two regex entities matching the exact same region: declaration order
	// decides (stable sort).
	text := "FI2112345600000785"
	regexSpans := []detector.Span{
		{Start: 0, End: 18, Label: "IBAN", Score: 1.0, Source: detector.SourceRegex, Text: text},
		{Start: 0, End: 18, Label: "FI_TILI", Score: 1.0, Source: detector.SourceRegex, Text: text},
	}

	resolved := Resolve(regexSpans, nil, emptyProfile(), text)
	require.Len(t, resolved, 1)
	assert.Equal(t, "IBAN", resolved[0].Label)
}

func TestResolve_InputsNotMutated(t *testing.T) {
	text := "aaaaaaaaaa"
	regexSpans := []detector.Span{
		{Start: 0, End: 4, Label: "A", Score: 1.0, Source: detector.SourceRegex},
	}
	nerSpans := []detector.Span{
		{Start: 2, End: 8, Label: "PERSON", Score: 0.9, Source: detector.SourceNER},
	}
	regexCopy := append([]detector.Span(nil), regexSpans...)
	nerCopy := append([]detector.Span(nil), nerSpans...)

	Resolve(regexSpans, nerSpans, emptyProfile(), text)
	assert.Equal(t, regexCopy, regexSpans)
	assert.Equal(t, nerCopy, nerSpans)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(nil, nil, emptyProfile(), "no detections here"))
}
