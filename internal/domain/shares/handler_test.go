package shares

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusFilter(t *testing.T) {
	got, err := parseStatusFilter("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseStatusFilter(" Active, revoked ,")
	require.NoError(t, err)
	assert.Equal(t, map[Status]struct{}{StatusActive: {}, StatusRevoked: {}}, got)

	_, err = parseStatusFilter("active,actve")
	assert.Error(t, err)
}

func TestParseSharePatch_EmptyBody(t *testing.T) {
	patch, err := parseSharePatch(nil)
	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())
}
