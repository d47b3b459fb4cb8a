// Package hdfs implements filesystem.FS against a Hadoop Distributed File
// System namenode, using the real client library the rclone family of repos
// in the retrieval pack depends on for the same purpose (see DESIGN.md).
package hdfs

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	hadoop "github.com/colinmarc/hdfs/v2"
	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
)

// ownerInfo is satisfied by *hadoop.FileInfo, which carries owner/group
// attributes beyond the standard os.FileInfo surface.
type ownerInfo interface {
	Owner() string
	OwnerGroup() string
}

// FS implements filesystem.FS against a single HDFS namenode.
type FS struct {
	client *hadoop.Client
}

// New dials the namenode at authority ("host:port") as the current OS user.
func New(authority string) (*FS, error) {
	client, err := hadoop.NewClient(hadoop.ClientOptions{
		Addresses: []string{authority},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to HDFS namenode %s", authority)
	}
	return &FS{client: client}, nil
}

// Scheme implements filesystem.FS.Scheme.
func (f *FS) Scheme() filesystem.Scheme {
	return filesystem.SchemeHDFS
}

func handleFromFileInfo(p string, info os.FileInfo) *filesystem.FileHandle {
	h := &filesystem.FileHandle{
		Path:        p,
		IsDir:       info.IsDir(),
		Size:        info.Size(),
		ModTimeMs:   info.ModTime().UnixMilli(),
		Permissions: filesystem.ModeFromUnix(uint32(info.Mode().Perm())),
	}
	if owned, ok := info.(ownerInfo); ok {
		h.Owner = owned.Owner()
		h.Group = owned.OwnerGroup()
	}
	return h
}

// Stat implements filesystem.FS.Stat.
func (f *FS) Stat(p string) (*filesystem.FileHandle, error) {
	info, err := f.client.Stat(p)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat %s", p)
	}
	return handleFromFileInfo(p, info), nil
}

// Exists implements filesystem.FS.Exists.
func (f *FS) Exists(p string) (bool, error) {
	_, err := f.client.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "unable to stat %s", p)
}

// IsDirectory implements filesystem.FS.IsDirectory.
func (f *FS) IsDirectory(p string) (bool, error) {
	info, err := f.client.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "unable to stat %s", p)
	}
	return info.IsDir(), nil
}

// List implements filesystem.FS.List.
func (f *FS) List(dir string) ([]*filesystem.FileHandle, error) {
	entries, err := f.client.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read directory contents of %s", dir)
	}
	handles := make([]*filesystem.FileHandle, len(entries))
	for i, info := range entries {
		handles[i] = handleFromFileInfo(path.Join(dir, info.Name()), info)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Path < handles[j].Path })
	return handles, nil
}

// Glob implements filesystem.FS.Glob. The HDFS client has no native glob
// support, so this walks the tree client-side and matches each candidate
// path against the pattern, grounded on the same doublestar matcher the
// Filter component uses.
func (f *FS) Glob(pattern string) ([]*filesystem.FileHandle, error) {
	root := globRoot(pattern)

	var matches []*filesystem.FileHandle
	err := f.client.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ok, matchErr := matchHDFSGlob(pattern, p)
		if matchErr != nil {
			return matchErr
		}
		if ok {
			matches = append(matches, handleFromFileInfo(p, info))
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to expand glob pattern %s", pattern)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })
	return matches, nil
}

// globRoot returns the longest path prefix of pattern that contains no
// wildcard characters, used as the starting point for the client-side walk.
func globRoot(pattern string) string {
	components := strings.Split(pattern, "/")
	var root []string
	for _, c := range components {
		if strings.ContainsAny(c, "*?[") {
			break
		}
		root = append(root, c)
	}
	if len(root) == 0 {
		return "/"
	}
	r := strings.Join(root, "/")
	if r == "" {
		return "/"
	}
	return r
}

// Mkdir implements filesystem.FS.Mkdir.
func (f *FS) Mkdir(p string) error {
	if err := f.client.MkdirAll(p, 0755); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", p)
	}
	return nil
}

// Delete implements filesystem.FS.Delete.
func (f *FS) Delete(p string, recursive bool) error {
	if !recursive {
		if isDir, err := f.IsDirectory(p); err == nil && isDir {
			if entries, lerr := f.client.ReadDir(p); lerr == nil && len(entries) > 0 {
				return errors.Errorf("refusing non-recursive delete of non-empty directory %s", p)
			}
		}
	}
	if err := f.client.Remove(p); err != nil {
		return errors.Wrapf(err, "unable to delete %s", p)
	}
	return nil
}

// Open implements filesystem.FS.Open.
func (f *FS) Open(p string) (io.ReadCloser, error) {
	in, err := f.client.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", p)
	}
	return in, nil
}

// Copy implements filesystem.FS.Copy. It transfers byte content only. The
// source may be any filesystem.FS: same-type sources use the HDFS client
// directly, anything else streams through srcFS.Open (spec §9 cross-scheme
// transfers).
func (f *FS) Copy(ctx context.Context, srcFS filesystem.FS, srcPath, dstPath string, overwrite bool) error {
	var in io.ReadCloser
	var err error
	if src, ok := srcFS.(*FS); ok {
		in, err = src.client.Open(srcPath)
	} else {
		in, err = srcFS.Open(srcPath)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to open source %s", srcPath)
	}
	defer in.Close()

	if overwrite {
		_ = f.client.Remove(dstPath)
	}
	out, err := f.client.Create(dstPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create destination %s", dstPath)
	}
	defer out.Close()

	if _, err := io.Copy(out, contextReader{ctx, in}); err != nil {
		return errors.Wrapf(err, "unable to copy content to %s", dstPath)
	}
	return out.Close()
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// SetTimes implements filesystem.FS.SetTimes.
func (f *FS) SetTimes(p string, modTimeMs int64) error {
	t := time.UnixMilli(modTimeMs)
	if err := f.client.Chtimes(p, t, t); err != nil {
		return errors.Wrapf(err, "unable to set modification time on %s", p)
	}
	return nil
}

// SetPermission implements filesystem.FS.SetPermission.
func (f *FS) SetPermission(p string, mode filesystem.Mode) error {
	if err := f.client.Chmod(p, os.FileMode(mode.Unix())); err != nil {
		return errors.Wrapf(err, "unable to set permissions on %s", p)
	}
	return nil
}

// SetOwner implements filesystem.FS.SetOwner.
func (f *FS) SetOwner(p string, userName, groupName string) error {
	if err := f.client.Chown(p, userName, groupName); err != nil {
		return errors.Wrapf(err, "unable to set owner on %s", p)
	}
	return nil
}
