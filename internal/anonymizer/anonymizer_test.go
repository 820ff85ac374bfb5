// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package anonymizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text-anonymizer/internal/config"
	"text-anonymizer/internal/labels"
	"text-anonymizer/internal/ner"
)

type fakeProvider struct {
	entities  []ner.Entity
	err       error
	gotLabels []string
	calls     int
}

func (f *fakeProvider) Predict(_ context.Context, _ string, labelList []string, _ float64) ([]ner.Entity, error) {
	f.calls++
	f.gotLabels = labelList
	return f.entities, f.err
}

var testMappings = map[string]string{
	"PERSON":       "NIMI",
	"FI_HETU":      "HETU",
	"FI_PUHELIN":   "PUHELIN",
	"MUU_TUNNISTE": "TUNNISTE",
	"PHONE_NUMBER": "PUHELINNUMERO",
}

const finnishPatterns = `# Finnish identifiers
FI_HETU: \b\d{6}[-+ABCDEFYXWVU]\d{3}[0-9ABCDEFHJKLMNPRSTUVWXY]\b
FI_PUHELIN: \b(?:\+358|0)[\s-]?\d{1,2}[\s-]?\d{3,4}[\s-]?\d{2,4}\b
`

func newTestEngine(t *testing.T, provider ner.Provider, profileFiles map[string]map[string]string) *Engine {
	t.Helper()

	dir := t.TempDir()
	for profile, files := range profileFiles {
		profileDir := filepath.Join(dir, profile)
		require.NoError(t, os.MkdirAll(profileDir, 0750))
		for name, content := range files {
			require.NoError(t, os.WriteFile(filepath.Join(profileDir, name), []byte(content), 0600))
		}
	}

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.ConfigDir = dir

	return New(cfg, config.NewProfileStore(dir), provider, labels.NewMapper(testMappings))
}

func TestAnonymize_DefaultProfileScenario(t *testing.T) {
	text := "Matti Meikäläinen, HETU: 311299-999A, puhelin: 040-1234567"
	provider := &fakeProvider{entities: []ner.Entity{
		{Start: 0, End: 17, Label: "person", Score: 0.95},
	}}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"default": {"regex_patterns.txt": finnishPatterns},
	})

	result, err := engine.Anonymize(context.Background(), Request{Text: text})
	require.NoError(t, err)

	assert.Equal(t, "<NIMI>, HETU: <HETU>, puhelin: <PUHELIN>", result.AnonymizedText)
	assert.Equal(t, map[string]int{"NIMI": 1, "HETU": 1, "PUHELIN": 1}, result.Summary)
	assert.Equal(t, []string{"Matti Meikäläinen"}, result.Details["NIMI"])
	assert.Equal(t, []string{"311299-999A"}, result.Details["HETU"])

	// Default NER labels were sent in provider vocabulary.
	assert.Contains(t, provider.gotLabels, "person")
	assert.Contains(t, provider.gotLabels, "phone number")
}

func TestAnonymize_RegexLabelOnly(t *testing.T) {
	text := "Matti Meikäläinen, HETU: 311299-999A, puhelin: 040-1234567"
	provider := &fakeProvider{entities: []ner.Entity{
		{Start: 0, End: 17, Label: "person", Score: 0.95},
	}}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"default": {"regex_patterns.txt": finnishPatterns},
	})

	result, err := engine.Anonymize(context.Background(), Request{
		Text:   text,
		Labels: []string{"fi_hetu_regex"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Matti Meikäläinen, HETU: <HETU>, puhelin: 040-1234567", result.AnonymizedText)
	assert.Equal(t, map[string]int{"HETU": 1}, result.Summary)
	// No NER labels requested, so the provider is never called.
	assert.Zero(t, provider.calls)
}

func TestAnonymize_BlocklistScenario(t *testing.T) {
	text := "Matti Meikäläinen from MicroCorpSoft"
	provider := &fakeProvider{entities: []ner.Entity{
		{Start: 0, End: 17, Label: "person", Score: 0.95},
	}}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"corporate": {"blocklist.txt": "MicroCorpSoft\n"},
	})

	result, err := engine.Anonymize(context.Background(), Request{Text: text, Profile: "corporate"})
	require.NoError(t, err)

	assert.Equal(t, "<NIMI> from <TUNNISTE>", result.AnonymizedText)
	assert.Equal(t, map[string]int{"NIMI": 1, "TUNNISTE": 1}, result.Summary)
}

func TestAnonymize_GrantlistScenario(t *testing.T) {
	text := "Microsoft called"
	provider := &fakeProvider{entities: []ner.Entity{
		{Start: 0, End: 9, Label: "organization", Score: 0.97},
	}}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"corporate": {"grantlist.txt": "Microsoft\n"},
	})

	result, err := engine.Anonymize(context.Background(), Request{
		Text:    text,
		Labels:  []string{"organization_ner"},
		Profile: "corporate",
	})
	require.NoError(t, err)

	assert.Equal(t, "Microsoft called", result.AnonymizedText)
	assert.Empty(t, result.Summary)
}

func TestAnonymize_EmptyText(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)
	result, err := engine.Anonymize(context.Background(), Request{Text: ""})
	require.NoError(t, err)
	assert.Equal(t, "", result.AnonymizedText)
	assert.Empty(t, result.Summary)
}

func TestAnonymize_MissingProfileDegradesToEmpty(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, nil)

	result, err := engine.Anonymize(context.Background(), Request{
		Text:    "nothing sensitive",
		Profile: "nonexistent",
	})
	require.NoError(t, err)
	assert.Equal(t, "nothing sensitive", result.AnonymizedText)
}

func TestAnonymize_ProviderFailureFailsWholeCall(t *testing.T) {
	// Regex detection alone succeeding must not produce a silently
	// under-anonymized result.
	provider := &fakeProvider{err: &ner.ProviderUnavailableError{
		Endpoint: "http://gliner:8001/predict",
		Err:      errors.New("connection refused"),
	}}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"default": {"regex_patterns.txt": finnishPatterns},
	})

	_, err := engine.Anonymize(context.Background(), Request{
		Text: "Matti Meikäläinen, HETU: 311299-999A",
	})
	var unavailable *ner.ProviderUnavailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestAnonymize_InvalidRegexLabel(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, map[string]map[string]string{
		"default": {"regex_patterns.txt": finnishPatterns},
	})

	_, err := engine.Anonymize(context.Background(), Request{
		Text:   "some text",
		Labels: []string{"no_such_entity_regex"},
	})
	var invalidErr *labels.InvalidLabelError
	require.True(t, errors.As(err, &invalidErr))
}

func TestAnonymize_MalformedProfileSurfacesConfigError(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, map[string]map[string]string{
		"broken": {"regex_patterns.txt": "NOT A PATTERN LINE\n"},
	})

	_, err := engine.Anonymize(context.Background(), Request{Text: "text", Profile: "broken"})
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestAnonymize_ProfileLabelSubset(t *testing.T) {
	// gliner_labels.txt restricts the NER label set when no caller labels
	// are given.
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"narrow": {"gliner_labels.txt": "person_ner\n"},
	})

	_, err := engine.Anonymize(context.Background(), Request{Text: "text", Profile: "narrow"})
	require.NoError(t, err)
	assert.Equal(t, []string{"person"}, provider.gotLabels)
}

func TestAnonymize_RegexBeatsNEROverlap(t *testing.T) {
	// NER claims the HETU region as a phone number with top score; the
	// regex span must win.
	text := "HETU: 311299-999A"
	provider := &fakeProvider{entities: []ner.Entity{
		{Start: 6, End: 17, Label: "phone number", Score: 1.0},
	}}
	engine := newTestEngine(t, provider, map[string]map[string]string{
		"default": {"regex_patterns.txt": finnishPatterns},
	})

	result, err := engine.Anonymize(context.Background(), Request{Text: text})
	require.NoError(t, err)
	assert.Equal(t, "HETU: <HETU>", result.AnonymizedText)
	assert.Equal(t, map[string]int{"HETU": 1}, result.Summary)
}
