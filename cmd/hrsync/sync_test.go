package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCommand resets the package-level syncConfiguration and binds it to a
// fresh command, so tests don't leak flag state into each other.
func newTestCommand() *cobra.Command {
	syncConfiguration = struct {
		dst string

		configFile string
		logLevel   string
		verbose    bool

		dryRun bool

		recurse        bool
		copyDirs       bool
		pruneEmptyDirs bool

		resolveConflicts        bool
		useMostRecentModifTimes bool

		existing       bool
		ignoreExisting bool
		update         bool

		sizeOnly            bool
		ignoreTimes         bool
		acceptedTimesDiffMs int64

		preserveTimes bool
		preservePerms bool
		chmod         []string

		preserveOwner bool
		preserveGroup bool
		userMap       []string
		groupMap      []string
		chown         string

		deleteExtraneous bool
		deleteExcluded   bool

		filterRules []string
	}{}
	command := &cobra.Command{Use: "hrsync"}
	bindSyncFlags(command)
	return command
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildRawFlagsOnly(t *testing.T) {
	command := newTestCommand()
	require.NoError(t, command.Flags().Set("dst", "file:/tmp/dst"))
	require.NoError(t, command.Flags().Set("recurse", "true"))

	raw, err := buildRaw(command, []string{"file:/tmp/src/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"file:/tmp/src/"}, raw.Sources)
	assert.Equal(t, "file:/tmp/dst", raw.Dst)
	assert.True(t, raw.Recurse)
	assert.False(t, raw.DeleteExtraneous)
}

func TestBuildRawFileFillsUnsetFlags(t *testing.T) {
	path := writeYAML(t, `
sources:
  - file:/from-file/src/
dst: file:/from-file/dst
recurse: true
delete: true
modifyWindow: 2500
`)

	command := newTestCommand()
	require.NoError(t, command.Flags().Set("config", path))

	raw, err := buildRaw(command, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"file:/from-file/src/"}, raw.Sources)
	assert.Equal(t, "file:/from-file/dst", raw.Dst)
	assert.True(t, raw.Recurse)
	assert.True(t, raw.DeleteExtraneous)
	assert.Equal(t, int64(2500), raw.AcceptedTimesDiffMs)
}

func TestBuildRawFlagsOverrideFile(t *testing.T) {
	path := writeYAML(t, `
dst: file:/from-file/dst
recurse: true
modifyWindow: 2500
`)

	command := newTestCommand()
	require.NoError(t, command.Flags().Set("config", path))
	require.NoError(t, command.Flags().Set("dst", "file:/from-flag/dst"))
	require.NoError(t, command.Flags().Set("modify-window", "750"))

	raw, err := buildRaw(command, []string{"file:/cli/src/"})
	require.NoError(t, err)

	// Explicitly-set flags win over the file...
	assert.Equal(t, "file:/from-flag/dst", raw.Dst)
	assert.Equal(t, int64(750), raw.AcceptedTimesDiffMs)
	// ...but a field no flag touched still falls back to the file.
	assert.True(t, raw.Recurse)
	// Positional sources always win over the file's sources list.
	assert.Equal(t, []string{"file:/cli/src/"}, raw.Sources)
}

func TestBuildRawMissingConfigFileErrors(t *testing.T) {
	command := newTestCommand()
	require.NoError(t, command.Flags().Set("config", "/nonexistent/hrsync.yaml"))

	_, err := buildRaw(command, []string{"file:/src/"})
	assert.Error(t, err)
}
