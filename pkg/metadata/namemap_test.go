package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNameMappingsFirstMatchWins(t *testing.T) {
	nm, err := ParseNameMappings([]string{"root:admin", "*:nobody"})
	require.NoError(t, err)
	assert.Equal(t, "admin", nm.Resolve("root"))
	assert.Equal(t, "nobody", nm.Resolve("alice"))
}

func TestParseNameMappingsNoMatchKeepsSource(t *testing.T) {
	nm, err := ParseNameMappings([]string{"root:admin"})
	require.NoError(t, err)
	assert.Equal(t, "alice", nm.Resolve("alice"))
}

func TestParseNameMappingsWildcard(t *testing.T) {
	nm, err := ParseNameMappings([]string{"svc-*:service"})
	require.NoError(t, err)
	assert.Equal(t, "service", nm.Resolve("svc-web"))
	assert.Equal(t, "alice", nm.Resolve("alice"))
}

func TestParseNameMappingsRejectsMalformed(t *testing.T) {
	_, err := ParseNameMappings([]string{"noColon"})
	assert.Error(t, err)
}

func TestParseChownShorthand(t *testing.T) {
	user, group, err := ParseChownShorthand("alice:staff")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Resolve("anything"))
	assert.Equal(t, "staff", group.Resolve("anything"))
}

func TestParseChownShorthandUserOnly(t *testing.T) {
	user, group, err := ParseChownShorthand("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Resolve("x"))
	assert.Nil(t, group)
}

func TestNilMappingResolvesToSource(t *testing.T) {
	var nm *NameMapping
	assert.Equal(t, "alice", nm.Resolve("alice"))
}
