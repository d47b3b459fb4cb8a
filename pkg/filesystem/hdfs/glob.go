package hdfs

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matchHDFSGlob matches an absolute HDFS path against an absolute glob
// pattern, both expressed with "/" separators.
func matchHDFSGlob(pattern, candidate string) (bool, error) {
	return doublestar.Match(strings.TrimPrefix(pattern, "/"), strings.TrimPrefix(candidate, "/"))
}
