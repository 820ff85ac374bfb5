// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"strings"
	"testing"

	"text-anonymizer/internal/anonymizer"
	"text-anonymizer/internal/formatters"

	_ "text-anonymizer/internal/formatters/json"
	_ "text-anonymizer/internal/formatters/text"
)

func sampleResult() *anonymizer.Result {
	return &anonymizer.Result{
		AnonymizedText: "<NIMI>, HETU: <HETU>",
		Summary:        map[string]int{"NIMI": 1, "HETU": 1},
		Details: map[string][]string{
			"NIMI": {"Matti Meikäläinen"},
			"HETU": {"311299-999A"},
		},
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := formatters.Export("bogus", sampleResult(), formatters.Options{})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the bad format, got: %v", err)
	}
}

func TestTextFormatter(t *testing.T) {
	out, err := formatters.Export("text", sampleResult(), formatters.Options{NoColor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<NIMI>, HETU: <HETU>") {
		t.Errorf("output missing anonymized text: %q", out)
	}
	if !strings.Contains(out, "NIMI: 1") {
		t.Errorf("output missing summary line: %q", out)
	}
	if strings.Contains(out, "Matti") {
		t.Errorf("non-verbose output must not leak original values: %q", out)
	}
}

func TestTextFormatterVerboseShowsDetails(t *testing.T) {
	out, err := formatters.Export("text", sampleResult(), formatters.Options{NoColor: true, Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Matti Meikäläinen") {
		t.Errorf("verbose output should list original values: %q", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := formatters.Export("json", sampleResult(), formatters.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded anonymizer.Result
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.AnonymizedText != "<NIMI>, HETU: <HETU>" {
		t.Errorf("unexpected anonymized_text: %q", decoded.AnonymizedText)
	}
	if decoded.Details != nil {
		t.Error("details must be omitted unless verbose is set")
	}
}

func TestJSONFormatterVerboseIncludesDetails(t *testing.T) {
	out, err := formatters.Export("json", sampleResult(), formatters.Options{Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded anonymizer.Result
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Details["NIMI"]) != 1 {
		t.Errorf("expected NIMI detail entry, got %+v", decoded.Details)
	}
}
