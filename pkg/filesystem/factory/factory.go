// Package factory wires filesystem.Scheme values to concrete FS
// implementations. It lives outside pkg/filesystem to avoid that package
// importing its own local/hdfs subpackages.
package factory

import (
	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
	"github.com/hdfssync/hrsync/pkg/filesystem/hdfs"
	"github.com/hdfssync/hrsync/pkg/filesystem/local"
)

// New constructs an FS for the given scheme and authority ("" for
// filesystem.SchemeFile, "host:port" for filesystem.SchemeHDFS).
func New(scheme filesystem.Scheme, authority string) (filesystem.FS, error) {
	switch scheme {
	case filesystem.SchemeFile:
		return local.New(), nil
	case filesystem.SchemeHDFS:
		return hdfs.New(authority)
	default:
		return nil, errors.Errorf("unsupported filesystem scheme: %v", scheme)
	}
}
