package metadata

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// NameMapping is an ordered list of (pattern, replacement) pairs used to
// remap an owner or group name (spec §3 NameMapping); the first pattern
// that matches the source value wins. Patterns accept "*" as a wildcard
// (spec §6.1 usermap/groupmap), translated to a regular expression anchor
// to whole-string match.
type NameMapping struct {
	entries []mappingEntry
}

type mappingEntry struct {
	pattern     *regexp.Regexp
	replacement string
}

// globToRegexp converts a "*"-wildcard pattern into an anchored regular
// expression, escaping everything else literally.
func globToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, part := range strings.Split(pattern, "*") {
		b.WriteString(regexp.QuoteMeta(part))
		b.WriteString(".*")
	}
	expr := strings.TrimSuffix(b.String(), ".*") + "$"
	return regexp.MustCompile(expr)
}

// ParseNameMappings parses "pattern:value" mapping strings (the
// `usermap`/`groupmap` config options) in order.
func ParseNameMappings(mappings []string) (*NameMapping, error) {
	nm := &NameMapping{}
	for _, m := range mappings {
		idx := strings.IndexByte(m, ':')
		if idx < 0 {
			return nil, errors.Errorf("invalid name mapping, expected pattern:value: %q", m)
		}
		pattern, value := m[:idx], m[idx+1:]
		if pattern == "" || value == "" {
			return nil, errors.Errorf("invalid name mapping, pattern and value must be non-empty: %q", m)
		}
		nm.entries = append(nm.entries, mappingEntry{pattern: globToRegexp(pattern), replacement: value})
	}
	return nm, nil
}

// Resolve returns the remapped value for source, scanning entries in order
// for the first match; if none match, source is returned unchanged (spec
// §4.2 step 3).
func (n *NameMapping) Resolve(source string) string {
	if n == nil {
		return source
	}
	for _, e := range n.entries {
		if e.pattern.MatchString(source) {
			return e.replacement
		}
	}
	return source
}

// ParseChownShorthand expands the `chown` config option's "[user][:group]"
// shorthand into "*:user"/"*:group" mappings, each holding only that single
// catch-all entry (spec §6.1: chown composes a terminal catch-all mapping,
// and is mutually exclusive with usermap/groupmap at the config-validation
// layer). A mapping is nil when its part of the shorthand is empty.
func ParseChownShorthand(chown string) (user, group *NameMapping, err error) {
	if chown == "" {
		return nil, nil, nil
	}
	userPart, groupPart := chown, ""
	if idx := strings.IndexByte(chown, ':'); idx >= 0 {
		userPart, groupPart = chown[:idx], chown[idx+1:]
	}
	if userPart != "" {
		user = &NameMapping{entries: []mappingEntry{{pattern: globToRegexp("*"), replacement: userPart}}}
	}
	if groupPart != "" {
		group = &NameMapping{entries: []mappingEntry{{pattern: globToRegexp("*"), replacement: groupPart}}}
	}
	return user, group, nil
}
