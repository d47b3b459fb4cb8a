package filesystem

import (
	"context"
	"io"
)

// FS is the minimal capability set the synchronization core consumes from
// either a local or a remote (HDFS) filesystem (spec §4.6). Every method
// blocks the calling goroutine for its duration; the core makes no
// assumptions about latency and performs no batching (spec §5).
type FS interface {
	// Scheme reports which scheme this FS instance serves.
	Scheme() Scheme

	// Glob expands a glob pattern (which may contain wildcards anywhere,
	// including in intermediate path components) into the handles of
	// matching entries, sorted lexicographically by path. It returns a nil
	// slice (not an error) when nothing matches.
	Glob(pattern string) ([]*FileHandle, error)

	// List returns the direct children of dir, sorted lexicographically by
	// path.
	List(dir string) ([]*FileHandle, error)

	// Stat returns a handle for path.
	Stat(path string) (*FileHandle, error)

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// IsDirectory reports whether path exists and is a directory.
	IsDirectory(path string) (bool, error)

	// Mkdir creates path as a directory, including any missing parents.
	Mkdir(path string) error

	// Delete removes path. If recursive is true and path is a directory,
	// its contents are removed as well.
	Delete(path string, recursive bool) error

	// Open returns a readable stream of path's byte content. The caller is
	// responsible for closing it. This is the generic cross-scheme bridge:
	// any FS implementation can serve as a Copy source for any other by
	// reading through Open, even when the two concrete types don't match.
	Open(path string) (io.ReadCloser, error)

	// Copy transfers the byte content of srcPath on srcFS to dstPath on the
	// receiver, creating dstPath, or replacing it when overwrite is true; when
	// overwrite is false and dstPath already exists, it fails. It transfers
	// content only; the caller applies all metadata separately (spec §4.3).
	// Implementations should fast-path same-type sources but must fall back
	// to srcFS.Open for any other source, so cross-scheme transfers (spec
	// §9) always succeed.
	Copy(ctx context.Context, srcFS FS, srcPath, dstPath string, overwrite bool) error

	// SetTimes sets path's modification time.
	SetTimes(path string, modTimeMs int64) error

	// SetPermission sets path's permission bits.
	SetPermission(path string, mode Mode) error

	// SetOwner sets path's owning user and/or group. An empty string leaves
	// the corresponding attribute unchanged.
	SetOwner(path string, user, group string) error
}

// Factory constructs an FS for a given scheme and authority. authority is
// ignored for SchemeFile.
type Factory func(scheme Scheme, authority string) (FS, error)
