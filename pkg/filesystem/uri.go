package filesystem

import (
	"strings"

	"github.com/pkg/errors"
)

// Scheme identifies which concrete filesystem a URI refers to (spec §6.2).
// Only two schemes are recognized.
type Scheme int

const (
	// SchemeFile is the local filesystem scheme, "file:<absolute-path>".
	SchemeFile Scheme = iota
	// SchemeHDFS is the HDFS scheme, "hdfs://<authority>/<absolute-path>".
	SchemeHDFS
)

// String renders the scheme's URI prefix.
func (s Scheme) String() string {
	switch s {
	case SchemeFile:
		return "file"
	case SchemeHDFS:
		return "hdfs"
	default:
		return "unknown"
	}
}

// URI is a parsed filesystem location.
type URI struct {
	// Scheme is the filesystem scheme.
	Scheme Scheme
	// Authority is the "host[:port]" portion of an hdfs:// URI. Empty for
	// file: URIs.
	Authority string
	// Path is the absolute path on the named filesystem.
	Path string
}

// Format reconstructs the original URI string representation, grounded on
// the teacher's pkg/url.Format dispatch-by-protocol pattern.
func (u *URI) Format() string {
	switch u.Scheme {
	case SchemeFile:
		return "file:" + u.Path
	case SchemeHDFS:
		return "hdfs://" + u.Authority + u.Path
	default:
		return "<invalid-uri>"
	}
}

// ParseURI parses a raw URI string of the form "file:<absolute-path>" or
// "hdfs://<authority>/<absolute-path>" (spec §6.2). Any other scheme, or a
// non-absolute path, is a validation error.
func ParseURI(raw string) (*URI, error) {
	switch {
	case strings.HasPrefix(raw, "file:"):
		p := strings.TrimPrefix(raw, "file:")
		if !strings.HasPrefix(p, "/") {
			return nil, errors.Errorf("file: URI path must be absolute: %q", raw)
		}
		return &URI{Scheme: SchemeFile, Path: p}, nil
	case strings.HasPrefix(raw, "hdfs://"):
		rest := strings.TrimPrefix(raw, "hdfs://")
		idx := strings.IndexByte(rest, '/')
		if idx == -1 {
			return nil, errors.Errorf("hdfs:// URI missing path: %q", raw)
		}
		authority, p := rest[:idx], rest[idx:]
		if authority == "" {
			return nil, errors.Errorf("hdfs:// URI missing authority: %q", raw)
		}
		return &URI{Scheme: SchemeHDFS, Authority: authority, Path: p}, nil
	default:
		return nil, errors.Errorf("unsupported or unrecognized URI scheme: %q", raw)
	}
}
