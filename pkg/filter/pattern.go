// Package filter compiles and evaluates the rsync-style filter-rule
// language of spec §4.1: ordered "+"/"-" rules with "!" (negate) and "/"
// (force-full-path) modifiers, glob patterns anchored to a BasePath, and
// directory-only trailing-slash patterns.
//
// Grounded on the teacher's pkg/synchronization/core/ignore.go: a compiled
// pattern struct capturing the parsed modifiers once (never re-parsed at
// match time), matched with doublestar.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Polarity is whether a rule includes or excludes matching entries.
type Polarity int

const (
	// Include keeps matching entries.
	Include Polarity = iota
	// Exclude drops matching entries.
	Exclude
)

// Rule is a single compiled filter rule (spec §3 FilterRule).
type Rule struct {
	// Polarity is INCLUDE or EXCLUDE.
	Polarity Polarity
	// Negate means the rule applies when the pattern does NOT match.
	Negate bool
	// FullPath means the candidate string is the full path rather than the
	// basename.
	FullPath bool
	// ForcedFullPath distinguishes an explicit "/" modifier from a pattern
	// that is full-path only because it contains "/" or "**".
	ForcedFullPath bool
	// Anchored means the pattern starts with "/": match against the path
	// relative to the entry's BasePath.
	Anchored bool
	// DirOnly means the pattern ends with "/": only directories match.
	DirOnly bool
	// pattern is the compiled glob pattern text (modifiers already
	// stripped).
	pattern string
	// raw is the original rule string, kept for error messages.
	raw string
}

// parseRuleString splits "<polarity>[<modifiers>] <pattern>" into its parts.
// Grammar (spec §4.1): polarity is "+" or "-"; modifiers are any combination
// of "!" and "/" (including none); exactly one space separates modifiers
// from the (non-empty, non-space-leading) pattern.
func parseRuleString(rule string) (polarity Polarity, negate, forceFullPath bool, pattern string, err error) {
	if len(rule) < 2 {
		return 0, false, false, "", errors.Errorf("malformed filter rule (too short): %q", rule)
	}

	switch rule[0] {
	case '+':
		polarity = Include
	case '-':
		polarity = Exclude
	default:
		return 0, false, false, "", errors.Errorf("filter rule must start with '+' or '-': %q", rule)
	}

	rest := rule[1:]
	i := 0
	for i < len(rest) && (rest[i] == '!' || rest[i] == '/') {
		switch rest[i] {
		case '!':
			negate = true
		case '/':
			forceFullPath = true
		}
		i++
	}

	if i >= len(rest) || rest[i] != ' ' {
		return 0, false, false, "", errors.Errorf("filter rule modifiers must be followed by exactly one space: %q", rule)
	}
	pattern = rest[i+1:]
	if pattern == "" || pattern[0] == ' ' {
		return 0, false, false, "", errors.Errorf("filter rule pattern must be non-empty and not start with a space: %q", rule)
	}

	return polarity, negate, forceFullPath, pattern, nil
}

// isFullPathPattern reports whether pattern (already stripped of leading
// "/" anchor and trailing "/" dir-only marker) is a full-path pattern: it
// contains "/" anywhere except as a trailing character (already stripped),
// or it contains "**".
func isFullPathPattern(pattern string) bool {
	return strings.Contains(pattern, "/") || strings.Contains(pattern, "**")
}

// compileRule parses and validates a single rule string, producing a Rule
// ready for repeated matching without re-parsing.
func compileRule(ruleString string) (*Rule, error) {
	polarity, negate, forceFullPath, pattern, err := parseRuleString(ruleString)
	if err != nil {
		return nil, err
	}

	anchored := false
	if strings.HasPrefix(pattern, "/") {
		anchored = true
		pattern = pattern[1:]
	}

	dirOnly := false
	if strings.HasSuffix(pattern, "/") {
		dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if pattern == "" {
		return nil, errors.Errorf("filter rule pattern is empty after stripping modifiers: %q", ruleString)
	}

	fullPath := forceFullPath || anchored || isFullPathPattern(pattern)

	// Validate the pattern compiles by attempting a throwaway match.
	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, errors.Wrapf(err, "invalid glob pattern in filter rule: %q", ruleString)
	}

	return &Rule{
		Polarity:       polarity,
		Negate:         negate,
		FullPath:       fullPath,
		ForcedFullPath: forceFullPath,
		Anchored:       anchored,
		DirOnly:        dirOnly,
		pattern:        pattern,
		raw:            ruleString,
	}, nil
}

// String returns the original rule text.
func (r *Rule) String() string {
	return r.raw
}

// candidate computes the string S that the rule's pattern is matched
// against for a given absolute entry path and BasePath (spec §4.1
// evaluation algorithm).
func (r *Rule) candidate(entryPath, basePath string) string {
	if !r.FullPath {
		return baseName(entryPath)
	}
	if r.Anchored && !r.ForcedFullPath {
		return strings.TrimPrefix(strings.TrimPrefix(entryPath, basePath), "/")
	}
	return entryPath
}

func baseName(p string) string {
	idx := strings.LastIndexByte(strings.TrimSuffix(p, "/"), '/')
	if idx == -1 {
		return p
	}
	return p[idx+1:]
}

// Applies reports whether the rule applies to the given entry (matched XOR
// negated, with the dir-only restriction applied first).
func (r *Rule) Applies(entryPath, basePath string, isDir bool) bool {
	if r.DirOnly && !isDir {
		return false
	}
	s := r.candidate(entryPath, basePath)
	matched, err := doublestar.Match(r.pattern, s)
	if err != nil {
		// The pattern was validated at Compile time, so this should be
		// unreachable; treat as non-match defensively.
		return false
	}
	return matched != r.Negate
}
