package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdfssync/hrsync/pkg/config"
)

func TestWalkerAnchoredFilterExcludesOnlyAtBasePathRoot(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
	require.NoError(t, os.MkdirAll(dst, 0755))
	// An anchored rule ("/build") should exclude only a top-level "build"
	// entry, not one nested under "sub".
	writeFile(t, filepath.Join(src, "build"), "top-level")
	writeFile(t, filepath.Join(src, "sub", "build"), "nested")

	cfg, err := config.Build(config.Raw{
		Sources:             []string{"file:" + src + "/"},
		Dst:                 "file:" + dst,
		Recurse:             true,
		FilterRules:         []string{"- /build"},
		AcceptedTimesDiffMs: 1000,
	})
	require.NoError(t, err)

	d := New(cfg, newTestLogger())
	_, runErr := d.Run(context.Background())
	require.NoError(t, runErr)

	_, err = os.Stat(filepath.Join(dst, "build"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dst, "sub", "build"))
	assert.NoError(t, err)
}

func TestWalkerMostRecentModifTimesOrdersConflictWinner(t *testing.T) {
	root := t.TempDir()
	srcA := filepath.Join(root, "a")
	srcB := filepath.Join(root, "b")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.MkdirAll(srcA, 0755))
	require.NoError(t, os.MkdirAll(srcB, 0755))
	require.NoError(t, os.MkdirAll(dst, 0755))
	writeFile(t, filepath.Join(srcA, "same.txt"), "older")
	writeFile(t, filepath.Join(srcB, "same.txt"), "newer")

	past := time.Now().Add(-time.Hour)
	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(srcA, "same.txt"), past, past))
	require.NoError(t, os.Chtimes(filepath.Join(srcB, "same.txt"), now, now))

	cfg, err := config.Build(config.Raw{
		// srcA listed first in parameter order, but srcB's entry is more
		// recently modified: UseMostRecentModifTimes should reorder the
		// conflict set so srcB wins the ResolveConflicts "take the head"
		// pick, despite arriving second on the command line.
		Sources:                 []string{"file:" + srcA + "/", "file:" + srcB + "/"},
		Dst:                     "file:" + dst,
		Recurse:                 true,
		ResolveConflicts:        true,
		UseMostRecentModifTimes: true,
		AcceptedTimesDiffMs:     1000,
	})
	require.NoError(t, err)

	d := New(cfg, newTestLogger())
	_, runErr := d.Run(context.Background())
	require.NoError(t, runErr)

	got, err := os.ReadFile(filepath.Join(dst, "same.txt"))
	require.NoError(t, err)
	assert.Equal(t, "newer", string(got))
}

func TestWalkerPruneEmptyDirsRemovesEmptiedDestinationDir(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0755))
	require.NoError(t, os.MkdirAll(dst, 0755))

	cfg, err := config.Build(config.Raw{
		Sources:             []string{"file:" + src + "/"},
		Dst:                 "file:" + dst,
		Recurse:             true,
		PruneEmptyDirs:      true,
		AcceptedTimesDiffMs: 1000,
	})
	require.NoError(t, err)

	d := New(cfg, newTestLogger())
	_, runErr := d.Run(context.Background())
	require.NoError(t, runErr)

	_, err = os.Stat(filepath.Join(dst, "empty"))
	assert.True(t, os.IsNotExist(err))
}
