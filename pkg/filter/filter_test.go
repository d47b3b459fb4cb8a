package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRuleModifiers(t *testing.T) {
	r, err := CompileRule("-!/ *.log")
	require.NoError(t, err)
	assert.True(t, r.Negate)
	assert.True(t, r.ForcedFullPath)
	assert.False(t, r.Anchored)
	assert.True(t, r.FullPath)
}

func TestCompileRuleRejectsBadPolarity(t *testing.T) {
	_, err := CompileRule("~ foo")
	assert.Error(t, err)
}

func TestCompileRuleRejectsMissingSpace(t *testing.T) {
	_, err := CompileRule("-foo")
	assert.Error(t, err)
}

func TestBasenamePatternMatchesAnyDepth(t *testing.T) {
	r, err := CompileRule("- *.log")
	require.NoError(t, err)
	assert.True(t, r.Applies("/a/b/c.log", "/a", false))
	assert.False(t, r.Applies("/a/b/c.txt", "/a", false))
}

func TestFullPathPatternDueToSlash(t *testing.T) {
	r, err := CompileRule("- b/c.log")
	require.NoError(t, err)
	assert.True(t, r.FullPath)
	// An unanchored full-path pattern is matched against the whole absolute
	// path, not a suffix of it, so "b/c.log" matches neither entry.
	assert.False(t, r.Applies("/a/b/c.log", "/a", false))
	assert.False(t, r.Applies("/x/b/c.log", "/x", false))
}

func TestAnchoredPatternRelativeToBasePath(t *testing.T) {
	r, err := CompileRule("- /folder_to_delete")
	require.NoError(t, err)
	assert.True(t, r.Applies("/dst/folder_to_delete", "/dst", true))
	assert.False(t, r.Applies("/dst/nested/folder_to_delete", "/dst", true))
}

func TestDirOnlyPatternOnlyMatchesDirectories(t *testing.T) {
	r, err := CompileRule("- build/")
	require.NoError(t, err)
	assert.True(t, r.Applies("/a/build", "/a", true))
	assert.False(t, r.Applies("/a/build", "/a", false))
}

func TestNegatedPatternInvertsApplicability(t *testing.T) {
	r, err := CompileRule("+! *.keep")
	require.NoError(t, err)
	assert.False(t, r.Applies("/a/x.keep", "/a", false))
	assert.True(t, r.Applies("/a/x.txt", "/a", false))
}

func TestSelectFirstApplicableRuleWins(t *testing.T) {
	f, err := Compile([]string{"+ important.log", "- *.log"})
	require.NoError(t, err)

	keep, excluded := f.Select("/a/important.log", "/a", false)
	assert.True(t, keep)
	assert.False(t, excluded)

	keep, excluded = f.Select("/a/other.log", "/a", false)
	assert.False(t, keep)
	assert.True(t, excluded)
}

func TestSelectNoRuleAppliesKeepsEntry(t *testing.T) {
	f, err := Compile([]string{"- *.log"})
	require.NoError(t, err)
	keep, excluded := f.Select("/a/file.txt", "/a", false)
	assert.True(t, keep)
	assert.False(t, excluded)
}

func TestCompileRuleEmptyReturnsCompileError(t *testing.T) {
	_, err := CompileRule("")
	require.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
}
