package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdfssync/hrsync/pkg/filesystem"
)

func TestParseChmodCommandsOctal(t *testing.T) {
	rules, err := ParseChmodCommands([]string{"F0644", "D0755"})
	require.NoError(t, err)
	require.NotNil(t, rules.FileOctal)
	require.NotNil(t, rules.DirOctal)
	assert.Equal(t, uint32(0644), rules.FileOctal.Unix())
	assert.Equal(t, uint32(0755), rules.DirOctal.Unix())
}

func TestParseChmodCommandsRejectsDuplicateOctal(t *testing.T) {
	_, err := ParseChmodCommands([]string{"F0644", "F0600"})
	assert.Error(t, err)
}

func TestParseChmodCommandsRejectsMixedKinds(t *testing.T) {
	_, err := ParseChmodCommands([]string{"F0644", "Fu+x"})
	assert.Error(t, err)
}

func TestParseChmodCommandsSymbolicChain(t *testing.T) {
	rules, err := ParseChmodCommands([]string{"ug+rwX", "o-rwx"})
	require.NoError(t, err)
	assert.Len(t, rules.FileSymbolic, 2)
	assert.Len(t, rules.DirSymbolic, 2)
}

func TestResolveAppliesOctalReplacement(t *testing.T) {
	rules, err := ParseChmodCommands([]string{"F0600"})
	require.NoError(t, err)
	got := rules.Resolve(filesystem.ModeFromUnix(0644), false)
	assert.Equal(t, uint32(0600), got.Unix())
}

func TestResolveAppliesSymbolicChainInOrder(t *testing.T) {
	rules, err := ParseChmodCommands([]string{"Fu+x", "Fg-r"})
	require.NoError(t, err)
	base := filesystem.ModeFromUnix(0644)
	got := rules.Resolve(base, false)
	assert.NotZero(t, got&filesystem.ModeUserExecute)
	assert.Zero(t, got&filesystem.ModeGroupRead)
}

func TestXPermissionOnlyAppliesWhenAlreadyExecutableOrDir(t *testing.T) {
	edit := SymbolicEdit{Who: "a", Op: '+', Perms: "X"}
	nonExec := filesystem.ModeFromUnix(0644)
	got := applySymbolicEdit(nonExec, edit, false)
	assert.Equal(t, nonExec, got, "X should not add execute to a non-executable file")

	dirMode := applySymbolicEdit(nonExec, edit, true)
	assert.NotZero(t, dirMode&filesystem.ModeUserExecute, "X should add execute for directories")
}

func TestNoRuleLeavesModeUnchanged(t *testing.T) {
	var rules *ChmodRules
	base := filesystem.ModeFromUnix(0640)
	assert.Equal(t, base, rules.Resolve(base, false))
}
