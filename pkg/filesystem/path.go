package filesystem

import "strings"

// Join is a fast alternative to path.Join for the "/"-separated absolute
// paths used throughout hrsync (both local and HDFS paths are always
// slash-separated, regardless of host OS, since the destination may be on
// either filesystem).
func Join(parent, leaf string) string {
	if leaf == "" {
		panic("empty leaf name")
	}
	if parent == "" || parent == "/" {
		return "/" + leaf
	}
	return strings.TrimSuffix(parent, "/") + "/" + leaf
}

// Dir returns the parent directory of path.
func Dir(p string) string {
	idx := strings.LastIndexByte(strings.TrimSuffix(p, "/"), '/')
	if idx <= 0 {
		return "/"
	}
	return p[:idx]
}

// Base returns the last path component of path.
func Base(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx == -1 {
		return trimmed
	}
	return trimmed[idx+1:]
}
