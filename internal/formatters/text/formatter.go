// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"text-anonymizer/internal/anonymizer"
	"text-anonymizer/internal/formatters"
)

// Formatter implements text-based output formatting
type Formatter struct {
	label *color.Color
	count *color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		label: color.New(color.FgCyan),
		count: color.New(color.FgYellow),
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with a substitution summary"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(result *anonymizer.Result, options formatters.Options) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder
	builder.WriteString(result.AnonymizedText)

	if len(result.Summary) == 0 {
		return builder.String(), nil
	}

	builder.WriteString("\n\n")
	builder.WriteString("Substitutions:\n")
	for _, label := range sortedLabels(result.Summary) {
		builder.WriteString("  ")
		builder.WriteString(f.label.Sprint(label))
		builder.WriteString(": ")
		builder.WriteString(f.count.Sprint(result.Summary[label]))
		builder.WriteString("\n")

		if options.Verbose {
			for _, original := range result.Details[label] {
				fmt.Fprintf(&builder, "    - %s\n", original)
			}
		}
	}

	return strings.TrimRight(builder.String(), "\n"), nil
}

func sortedLabels(summary map[string]int) []string {
	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
