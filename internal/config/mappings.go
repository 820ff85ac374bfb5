// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadLabelMappings reads the global label-mapping file (lines
// "INPUT_LABEL=OUTPUT_LABEL", #-comments and blanks ignored). The mapping
// applies across all profiles. A missing file yields an empty mapping.
// Lines without '=' are skipped like list files.
func LoadLabelMappings(path string) (map[string]string, error) {
	mappings := make(map[string]string)

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return mappings, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		input, output, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		input = strings.TrimSpace(input)
		output = strings.TrimSpace(output)
		if input == "" || output == "" {
			continue
		}
		mappings[input] = output
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mappings, nil
}
