// Package local implements filesystem.FS against the local operating system
// filesystem, grounded on the teacher's pkg/filesystem (thin os/io wrappers,
// one operation per file) — there is no third-party library in the pack for
// local file I/O; every pack repo with a "local" backend is a thin os
// wrapper, so stdlib use here is justified (see DESIGN.md).
package local

import (
	"context"
	"io"
	"os"
	"os/user"
	"path"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
)

// FS implements filesystem.FS for the local operating system filesystem.
type FS struct{}

// New constructs a local filesystem handle.
func New() *FS {
	return &FS{}
}

// Scheme implements filesystem.FS.Scheme.
func (f *FS) Scheme() filesystem.Scheme {
	return filesystem.SchemeFile
}

func handleFromFileInfo(p string, info os.FileInfo) *filesystem.FileHandle {
	h := &filesystem.FileHandle{
		Path:        p,
		IsDir:       info.IsDir(),
		Size:        info.Size(),
		ModTimeMs:   info.ModTime().UnixMilli(),
		Permissions: filesystem.ModeFromUnix(uint32(info.Mode().Perm())),
	}
	if info.Mode()&os.ModeSticky != 0 {
		h.Permissions |= filesystem.ModeSticky
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		if u, err := user.LookupId(strconv.Itoa(int(stat.Uid))); err == nil {
			h.Owner = u.Username
		}
		if g, err := user.LookupGroupId(strconv.Itoa(int(stat.Gid))); err == nil {
			h.Group = g.Name
		}
	}
	return h
}

// Stat implements filesystem.FS.Stat.
func (f *FS) Stat(p string) (*filesystem.FileHandle, error) {
	info, err := os.Lstat(p)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat %s", p)
	}
	return handleFromFileInfo(p, info), nil
}

// Exists implements filesystem.FS.Exists.
func (f *FS) Exists(p string) (bool, error) {
	_, err := os.Lstat(p)
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
	info, err := os.Lstat(p)
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
	directory, err := os.Open(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open directory %s", dir)
	}
	defer directory.Close()

	entries, err := directory.Readdir(0)
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

// Glob implements filesystem.FS.Glob.
func (f *FS) Glob(pattern string) ([]*filesystem.FileHandle, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to expand glob pattern %s", pattern)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Strings(matches)
	handles := make([]*filesystem.FileHandle, 0, len(matches))
	for _, m := range matches {
		h, err := f.Stat(m)
		if err != nil {
			continue
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Mkdir implements filesystem.FS.Mkdir.
func (f *FS) Mkdir(p string) error {
	if err := os.MkdirAll(p, 0755); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", p)
	}
	return nil
}

// Delete implements filesystem.FS.Delete.
func (f *FS) Delete(p string, recursive bool) error {
	var err error
	if recursive {
		err = os.RemoveAll(p)
	} else {
		err = os.Remove(p)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to delete %s", p)
	}
	return nil
}

// Open implements filesystem.FS.Open.
func (f *FS) Open(p string) (io.ReadCloser, error) {
	in, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", p)
	}
	return in, nil
}

// Copy implements filesystem.FS.Copy. It stages content under a unique
// sibling name and renames it over dstPath once fully written, so a reader
// never observes a partially-written destination file.
func (f *FS) Copy(ctx context.Context, srcFS filesystem.FS, srcPath, dstPath string, overwrite bool) error {
	if !overwrite {
		if exists, err := f.Exists(dstPath); err != nil {
			return err
		} else if exists {
			return errors.Errorf("destination %s already exists", dstPath)
		}
	}

	// Fast path: source is also local, so we can open the file directly
	// rather than going through the generic Open bridge. Any other source
	// type streams through its own Open implementation (spec §9 cross-scheme
	// transfers).
	var in io.ReadCloser
	var err error
	if _, ok := srcFS.(*FS); ok {
		in, err = os.Open(srcPath)
	} else {
		in, err = srcFS.Open(srcPath)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to open source %s", srcPath)
	}
	defer in.Close()

	return f.copyFrom(ctx, in, dstPath)
}

func (f *FS) copyFrom(ctx context.Context, in io.Reader, dstPath string) error {
	stagingPath := dstPath + ".hrsync-" + uuid.NewString()

	out, err := os.OpenFile(stagingPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.Wrapf(err, "unable to create staging file for %s", dstPath)
	}

	if _, err := io.Copy(out, readerWithContext(ctx, in)); err != nil {
		out.Close()
		os.Remove(stagingPath)
		return errors.Wrapf(err, "unable to copy content to %s", dstPath)
	}
	if err := out.Close(); err != nil {
		os.Remove(stagingPath)
		return errors.Wrapf(err, "unable to finalize staging file for %s", dstPath)
	}

	if err := os.Rename(stagingPath, dstPath); err != nil {
		os.Remove(stagingPath)
		return errors.Wrapf(err, "unable to rename staging file into place at %s", dstPath)
	}
	return nil
}

// SetTimes implements filesystem.FS.SetTimes.
func (f *FS) SetTimes(p string, modTimeMs int64) error {
	t := time.UnixMilli(modTimeMs)
	if err := os.Chtimes(p, t, t); err != nil {
		return errors.Wrapf(err, "unable to set modification time on %s", p)
	}
	return nil
}

// SetPermission implements filesystem.FS.SetPermission.
func (f *FS) SetPermission(p string, mode filesystem.Mode) error {
	perm := os.FileMode(mode.Unix() &^ uint32(filesystem.ModeSticky))
	if mode&filesystem.ModeSticky != 0 {
		perm |= os.ModeSticky
	}
	if err := os.Chmod(p, perm); err != nil {
		return errors.Wrapf(err, "unable to set permissions on %s", p)
	}
	return nil
}

// SetOwner implements filesystem.FS.SetOwner.
func (f *FS) SetOwner(p string, userName, groupName string) error {
	uid, gid := -1, -1
	if userName != "" {
		u, err := user.Lookup(userName)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve user %s", userName)
		}
		uid, _ = strconv.Atoi(u.Uid)
	}
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve group %s", groupName)
		}
		gid, _ = strconv.Atoi(g.Gid)
	}
	if err := os.Chown(p, uid, gid); err != nil {
		return errors.Wrapf(err, "unable to set owner on %s", p)
	}
	return nil
}
