// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Profile is a named bundle of detection rules loaded from a profile
// directory. All fields are read-only after load.
type Profile struct {
	Name      string
	Blocklist []string
	Grantlist []string
	// Entities holds regex pattern groups in declaration order. Multiple
	// lines with the same entity name accumulate into one group.
	Entities []RegexEntity
	// Labels is the profile's default detection label set when
	// gliner_labels.txt is present; nil otherwise. Both _ner and _regex
	// labels are allowed.
	Labels []string

	// List phrases are matched on every anonymize call, so their patterns
	// are compiled once per profile, not per call.
	compile           sync.Once
	blocklistPatterns []*regexp.Regexp
	grantlistPatterns []*regexp.Regexp
}

// BlocklistPatterns returns one case-insensitive literal pattern per
// blocklist phrase, compiled on first use and reused afterwards.
func (p *Profile) BlocklistPatterns() []*regexp.Regexp {
	p.compilePhrases()
	return p.blocklistPatterns
}

// GrantlistPatterns returns one case-insensitive literal pattern per
// grantlist phrase, compiled on first use and reused afterwards.
func (p *Profile) GrantlistPatterns() []*regexp.Regexp {
	p.compilePhrases()
	return p.grantlistPatterns
}

func (p *Profile) compilePhrases() {
	p.compile.Do(func() {
		p.blocklistPatterns = compilePhraseList(p.Blocklist)
		p.grantlistPatterns = compilePhraseList(p.Grantlist)
	})
}

// compilePhraseList quotes each phrase, so the patterns always compile.
// Word-boundary enforcement is the caller's job: regexp \b is ASCII-only
// and would miss phrases edged with letters like ä or ö.
func compilePhraseList(phrases []string) []*regexp.Regexp {
	var patterns []*regexp.Regexp
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)))
	}
	return patterns
}

// RegexEntity is an ordered group of compiled patterns sharing one entity name.
type RegexEntity struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Entity returns the pattern group for an entity name, if configured.
func (p *Profile) Entity(name string) (RegexEntity, bool) {
	for _, e := range p.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return RegexEntity{}, false
}

// ProfileStore loads profiles from a configuration directory and caches them
// for the process lifetime. The cache is read-only after first population per
// profile name; a load either fully succeeds and is installed atomically, or
// fails and nothing is cached. Safe for concurrent use.
type ProfileStore struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*Profile
}

// NewProfileStore creates a store rooted at dir (one subdirectory per profile).
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{
		dir:   dir,
		cache: make(map[string]*Profile),
	}
}

// Load returns the named profile, reading it from disk on first reference.
// A missing profile directory or missing individual files resolve to empty
// configuration, never an error. Malformed present files fail with a
// *ConfigError.
func (s *ProfileStore) Load(name string) (*Profile, error) {
	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	profile, err := s.loadProfile(name)
	if err != nil {
		return nil, err
	}

	// First-writer-wins: concurrent loaders may parse redundantly, but every
	// caller sees one consistent installed profile.
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = profile
	return profile, nil
}

// Reload re-reads the named profile from disk and replaces the cached copy.
// On failure the previously cached profile stays installed.
func (s *ProfileStore) Reload(name string) (*Profile, error) {
	profile, err := s.loadProfile(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[name] = profile
	s.mu.Unlock()
	return profile, nil
}

// List returns the profile names available on disk, sorted. A missing
// configuration directory yields an empty list.
func (s *ProfileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *ProfileStore) loadProfile(name string) (*Profile, error) {
	dir := filepath.Join(s.dir, name)

	blocklist, err := loadListFile(filepath.Join(dir, "blocklist.txt"))
	if err != nil {
		return nil, &ConfigError{Profile: name, File: "blocklist.txt", Err: err}
	}
	grantlist, err := loadListFile(filepath.Join(dir, "grantlist.txt"))
	if err != nil {
		return nil, &ConfigError{Profile: name, File: "grantlist.txt", Err: err}
	}
	labelSet, err := loadListFile(filepath.Join(dir, "gliner_labels.txt"))
	if err != nil {
		return nil, &ConfigError{Profile: name, File: "gliner_labels.txt", Err: err}
	}

	entities, err := loadRegexPatterns(name, filepath.Join(dir, "regex_patterns.txt"))
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Name:      name,
		Blocklist: blocklist,
		Grantlist: grantlist,
		Entities:  entities,
		Labels:    labelSet,
	}
	profile.compilePhrases()
	return profile, nil
}

// loadRegexPatterns parses regex_patterns.txt. Lines have the shape
// "ENTITY_NAME: pattern"; blank lines and #-comments are skipped. Duplicate
// entity names accumulate into one group, evaluation order follows file order.
func loadRegexPatterns(profile, path string) ([]RegexEntity, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ConfigError{Profile: profile, File: "regex_patterns.txt", Err: err}
	}
	defer f.Close()

	var entities []RegexEntity
	index := make(map[string]int)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entityName, pattern, found := strings.Cut(line, ":")
		if !found {
			return nil, &ConfigError{
				Profile: profile,
				File:    "regex_patterns.txt",
				Line:    lineNo,
				Err:     fmt.Errorf("expected 'ENTITY_NAME: pattern', got %q", line),
			}
		}
		entityName = strings.ToUpper(strings.TrimSpace(entityName))
		pattern = strings.TrimSpace(pattern)
		if entityName == "" || pattern == "" {
			return nil, &ConfigError{
				Profile: profile,
				File:    "regex_patterns.txt",
				Line:    lineNo,
				Err:     fmt.Errorf("empty entity name or pattern in %q", line),
			}
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigError{
				Profile: profile,
				File:    "regex_patterns.txt",
				Line:    lineNo,
				Err:     fmt.Errorf("invalid pattern: %w", err),
			}
		}

		if i, ok := index[entityName]; ok {
			entities[i].Patterns = append(entities[i].Patterns, re)
		} else {
			index[entityName] = len(entities)
			entities = append(entities, RegexEntity{Name: entityName, Patterns: []*regexp.Regexp{re}})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ConfigError{Profile: profile, File: "regex_patterns.txt", Err: err}
	}

	return entities, nil
}

// loadListFile reads one entry per line, skipping blanks and #-comments.
// A missing file yields nil without error.
func loadListFile(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var items []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
