// Package config assembles and validates the option surface the
// synchronization core consumes (spec §6.1). Argument parsing itself lives
// in cmd/hrsync; this package is the external "validator" collaborator the
// core's contract is specified against (spec §1).
package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
	"github.com/hdfssync/hrsync/pkg/filter"
	"github.com/hdfssync/hrsync/pkg/metadata"
)

// Source is one parsed source root, prior to glob expansion.
type Source struct {
	URI *filesystem.URI
}

// Config is an immutable value object carrying every synchronization
// option (spec §3 Config, §6.1).
type Config struct {
	Sources []Source
	Dst     *filesystem.URI

	DryRun bool

	Recurse        bool
	CopyDirs       bool
	PruneEmptyDirs bool

	ResolveConflicts        bool
	UseMostRecentModifTimes bool

	Existing       bool
	IgnoreExisting bool
	Update         bool

	SizeOnly            bool
	IgnoreTimes         bool
	AcceptedTimesDiffMs int64

	PreserveTimes bool
	PreservePerms bool
	Chmod         *metadata.ChmodRules

	PreserveOwner bool
	PreserveGroup bool
	UserMap       *metadata.NameMapping
	GroupMap      *metadata.NameMapping

	DeleteExtraneous bool
	DeleteExcluded   bool

	FilterRules []string
}

// Error is a ConfigError (spec §7): a violation of the option constraints,
// surfaced before the core runs.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func configError(format string, args ...interface{}) error {
	return &Error{msg: errors.Errorf(format, args...).Error()}
}

// Raw is the unparsed, flag-level representation of the options, as they
// would arrive from a CLI or config file, before URI parsing and source
// expansion.
type Raw struct {
	Sources []string
	Dst     string

	DryRun bool

	Recurse        bool
	CopyDirs       bool
	PruneEmptyDirs bool

	ResolveConflicts        bool
	UseMostRecentModifTimes bool

	Existing       bool
	IgnoreExisting bool
	Update         bool

	SizeOnly            bool
	IgnoreTimes         bool
	AcceptedTimesDiffMs int64

	PreserveTimes bool
	PreservePerms bool
	ChmodCommands []string

	PreserveOwner bool
	PreserveGroup bool
	UserMap       []string
	GroupMap      []string
	Chown         string

	DeleteExtraneous bool
	DeleteExcluded   bool

	FilterRules []string
}

// Build validates raw's flag constraints (spec §6.1) and assembles an
// immutable Config, resolving source URIs, trailing-slash-to-glob rewriting,
// chmod/usermap/groupmap parsing.
func Build(raw Raw) (*Config, error) {
	if raw.SizeOnly && raw.IgnoreTimes {
		return nil, configError("sizeOnly and ignoreTimes are mutually exclusive")
	}
	if raw.DeleteExcluded && !raw.DeleteExtraneous {
		return nil, configError("deleteExcluded requires deleteExtraneous")
	}
	if raw.Recurse && raw.CopyDirs {
		return nil, configError("recurse and copyDirs are mutually exclusive")
	}
	if raw.Chown != "" && (len(raw.UserMap) > 0 || len(raw.GroupMap) > 0) {
		return nil, configError("chown is mutually exclusive with usermap/groupmap")
	}
	if len(raw.Sources) == 0 {
		return nil, configError("at least one source is required")
	}

	acceptedDiff := raw.AcceptedTimesDiffMs
	if acceptedDiff == 0 {
		acceptedDiff = 1000
	}

	sources := make([]Source, 0, len(raw.Sources))
	var sourceScheme filesystem.Scheme
	for i, s := range raw.Sources {
		rewritten := rewriteTrailingSlash(s)
		u, err := filesystem.ParseURI(rewritten)
		if err != nil {
			return nil, configError("invalid source %q: %v", s, err)
		}
		if i == 0 {
			sourceScheme = u.Scheme
		} else if u.Scheme != sourceScheme {
			return nil, configError("all sources must share a scheme, got %v and %v", sourceScheme, u.Scheme)
		}
		sources = append(sources, Source{URI: u})
	}

	var dst *filesystem.URI
	if raw.Dst != "" {
		u, err := filesystem.ParseURI(raw.Dst)
		if err != nil {
			return nil, configError("invalid destination %q: %v", raw.Dst, err)
		}
		dst = u
	}

	chmod, err := metadata.ParseChmodCommands(raw.ChmodCommands)
	if err != nil {
		return nil, err
	}

	userMap, err := metadata.ParseNameMappings(raw.UserMap)
	if err != nil {
		return nil, err
	}
	groupMap, err := metadata.ParseNameMappings(raw.GroupMap)
	if err != nil {
		return nil, err
	}
	if raw.Chown != "" {
		userMap, groupMap, err = metadata.ParseChownShorthand(raw.Chown)
		if err != nil {
			return nil, err
		}
	}

	for _, r := range raw.FilterRules {
		if _, err := filter.CompileRule(r); err != nil {
			return nil, err
		}
	}

	return &Config{
		Sources:                 sources,
		Dst:                     dst,
		DryRun:                  raw.DryRun,
		Recurse:                 raw.Recurse,
		CopyDirs:                raw.CopyDirs,
		PruneEmptyDirs:          raw.PruneEmptyDirs,
		ResolveConflicts:        raw.ResolveConflicts,
		UseMostRecentModifTimes: raw.UseMostRecentModifTimes,
		Existing:                raw.Existing,
		IgnoreExisting:          raw.IgnoreExisting,
		Update:                  raw.Update,
		SizeOnly:                raw.SizeOnly,
		IgnoreTimes:             raw.IgnoreTimes,
		AcceptedTimesDiffMs:     acceptedDiff,
		PreserveTimes:           raw.PreserveTimes,
		PreservePerms:           raw.PreservePerms,
		Chmod:                   chmod,
		PreserveOwner:           raw.PreserveOwner,
		PreserveGroup:           raw.PreserveGroup,
		UserMap:                 userMap,
		GroupMap:                groupMap,
		DeleteExtraneous:        raw.DeleteExtraneous,
		DeleteExcluded:          raw.DeleteExcluded,
		FilterRules:             raw.FilterRules,
	}, nil
}

// rewriteTrailingSlash implements spec §6.1: a source URI with a trailing
// "/" is rewritten to match all of that directory's immediate children
// (".../*"), operating only on the path portion after the scheme prefix.
func rewriteTrailingSlash(raw string) string {
	idx := strings.Index(raw, ":")
	if idx < 0 {
		return raw
	}
	prefix, rest := raw[:idx+1], raw[idx+1:]
	// Preserve a "//" authority separator for hdfs:// URIs.
	authority := ""
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		sep := strings.IndexByte(rest, '/')
		if sep < 0 {
			return raw
		}
		authority, rest = rest[:sep], rest[sep:]
	}
	if strings.HasSuffix(rest, "/") && rest != "/" {
		rest = rest + "*"
	} else if rest == "/" {
		rest = "/*"
	}
	if authority != "" {
		return prefix + "//" + authority + rest
	}
	return prefix + rest
}
