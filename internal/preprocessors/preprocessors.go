// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors turns input files into plain text for anonymization.
package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// maxPDFPages caps extraction for very large documents.
const maxPDFPages = 50

// ExtractText returns the text content of the file at path. PDF files are
// extracted page by page; everything else is read as plain UTF-8 text.
func ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDFText(path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("reading input file: %w", err)
	}
	return string(data), nil
}

// extractPDFText extracts text from a PDF document. Pages that fail to parse
// are skipped so one broken page does not lose the whole document.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > maxPDFPages {
		log.Warn().Str("file", filepath.Base(path)).Int("pages", pageCount).
			Msgf("PDF truncated to first %d pages", maxPDFPages)
		pageCount = maxPDFPages
	}

	var builder strings.Builder
	failed := 0
	for i := 1; i <= pageCount; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			failed++
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	}

	if failed > 0 {
		log.Warn().Str("file", filepath.Base(path)).Int("failed_pages", failed).
			Msg("some PDF pages could not be extracted")
	}
	return builder.String(), nil
}
