// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import "fmt"

// ConfigError reports a malformed profile configuration file. A missing
// profile directory or missing individual files are never a ConfigError —
// those degrade to empty configuration.
type ConfigError struct {
	Profile string
	File    string
	Line    int // 1-based line number, 0 when not line-specific
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("profile %q: %s:%d: %v", e.Profile, e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("profile %q: %s: %v", e.Profile, e.File, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
