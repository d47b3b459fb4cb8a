package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRaw() Raw {
	return Raw{Sources: []string{"file:/src"}}
}

func TestBuildRejectsSizeOnlyAndIgnoreTimes(t *testing.T) {
	r := baseRaw()
	r.SizeOnly = true
	r.IgnoreTimes = true
	_, err := Build(r)
	require.Error(t, err)
	var ce *Error
	assert.ErrorAs(t, err, &ce)
}

func TestBuildRejectsDeleteExcludedWithoutDeleteExtraneous(t *testing.T) {
	r := baseRaw()
	r.DeleteExcluded = true
	_, err := Build(r)
	assert.Error(t, err)
}

func TestBuildRejectsRecurseAndCopyDirs(t *testing.T) {
	r := baseRaw()
	r.Recurse = true
	r.CopyDirs = true
	_, err := Build(r)
	assert.Error(t, err)
}

func TestBuildRejectsChownWithUserMap(t *testing.T) {
	r := baseRaw()
	r.Chown = "alice"
	r.UserMap = []string{"root:admin"}
	_, err := Build(r)
	assert.Error(t, err)
}

func TestBuildRejectsMixedSourceSchemes(t *testing.T) {
	r := Raw{Sources: []string{"file:/a", "hdfs://nn:8020/a"}}
	_, err := Build(r)
	assert.Error(t, err)
}

func TestBuildDefaultsAcceptedTimesDiff(t *testing.T) {
	cfg, err := Build(baseRaw())
	require.NoError(t, err)
	assert.EqualValues(t, 1000, cfg.AcceptedTimesDiffMs)
}

func TestBuildRewritesTrailingSlashToGlob(t *testing.T) {
	cfg, err := Build(Raw{Sources: []string{"file:/src/"}})
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "/src/*", cfg.Sources[0].URI.Path)
}

func TestBuildRewritesHDFSTrailingSlash(t *testing.T) {
	cfg, err := Build(Raw{Sources: []string{"hdfs://nn:8020/src/"}})
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "/src/*", cfg.Sources[0].URI.Path)
	assert.Equal(t, "nn:8020", cfg.Sources[0].URI.Authority)
}

func TestBuildRejectsInvalidFilterRule(t *testing.T) {
	r := baseRaw()
	r.FilterRules = []string{"bogus"}
	_, err := Build(r)
	assert.Error(t, err)
}

func TestBuildParsesDestination(t *testing.T) {
	r := baseRaw()
	r.Dst = "file:/dst"
	cfg, err := Build(r)
	require.NoError(t, err)
	require.NotNil(t, cfg.Dst)
	assert.Equal(t, "/dst", cfg.Dst.Path)
}

func TestBuildLogOnlyModeWithoutDst(t *testing.T) {
	cfg, err := Build(baseRaw())
	require.NoError(t, err)
	assert.Nil(t, cfg.Dst)
}
