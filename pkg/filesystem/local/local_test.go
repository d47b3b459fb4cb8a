package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdfssync/hrsync/pkg/filesystem"
)

// fakeRemoteFS is a minimal non-local filesystem.FS stand-in, used only to
// exercise Copy's generic Open-based streaming path for a source whose
// concrete type doesn't match the destination's.
type fakeRemoteFS struct {
	content map[string]string
}

func (f *fakeRemoteFS) Scheme() filesystem.Scheme { return filesystem.SchemeHDFS }
func (f *fakeRemoteFS) Open(p string) (io.ReadCloser, error) {
	data, ok := f.content[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(data)), nil
}
func (f *fakeRemoteFS) Glob(string) ([]*filesystem.FileHandle, error) { return nil, nil }
func (f *fakeRemoteFS) List(string) ([]*filesystem.FileHandle, error) { return nil, nil }
func (f *fakeRemoteFS) Stat(string) (*filesystem.FileHandle, error)   { return nil, os.ErrNotExist }
func (f *fakeRemoteFS) Exists(string) (bool, error)                  { return false, nil }
func (f *fakeRemoteFS) IsDirectory(string) (bool, error)              { return false, nil }
func (f *fakeRemoteFS) Mkdir(string) error                            { return nil }
func (f *fakeRemoteFS) Delete(string, bool) error                     { return nil }
func (f *fakeRemoteFS) Copy(context.Context, filesystem.FS, string, string, bool) error {
	return nil
}
func (f *fakeRemoteFS) SetTimes(string, int64) error                  { return nil }
func (f *fakeRemoteFS) SetPermission(string, filesystem.Mode) error   { return nil }
func (f *fakeRemoteFS) SetOwner(string, string, string) error         { return nil }

func TestCopyStreamsThroughOpenForCrossSchemeSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")
	remote := &fakeRemoteFS{content: map[string]string{"/remote/file": "from another scheme"}}

	fs := New()
	require.NoError(t, fs.Copy(context.Background(), remote, "/remote/file", dst, false))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "from another scheme", string(got))
}

func TestCopyWritesFullContentAndLeavesNoStagingFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("hello world"), 0644))

	fs := New()
	require.NoError(t, fs.Copy(context.Background(), fs, src, dst, false))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".hrsync-", "staging file left behind after copy")
	}
}

func TestCopyWithoutOverwriteFailsWhenDestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("existing"), 0644))

	fs := New()
	err := fs.Copy(context.Background(), fs, src, dst, false)
	assert.Error(t, err)

	got, readErr := os.ReadFile(dst)
	require.NoError(t, readErr)
	assert.Equal(t, "existing", string(got), "destination must be untouched on a rejected overwrite")
}

func TestCopyWithOverwriteReplacesExistingContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("existing"), 0644))

	fs := New()
	require.NoError(t, fs.Copy(context.Background(), fs, src, dst, true))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestMkdirDeleteAndExists(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")

	fs := New()
	require.NoError(t, fs.Mkdir(nested))

	exists, err := fs.Exists(nested)
	require.NoError(t, err)
	assert.True(t, exists)

	isDir, err := fs.IsDirectory(nested)
	require.NoError(t, err)
	assert.True(t, isDir)

	require.NoError(t, fs.Delete(filepath.Join(dir, "a"), true))
	exists, err = fs.Exists(nested)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListSortsByPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))

	fs := New()
	handles, err := fs.List(dir)
	require.NoError(t, err)
	require.Len(t, handles, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), handles[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.txt"), handles[1].Path)
}
