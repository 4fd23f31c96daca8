package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJoinKey(t *testing.T) {
	key, prefix, hash, err := GenerateJoinKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, JoinKeyPrefix))
	assert.Equal(t, key[:keyPrefixLength], prefix)
	assert.NotContains(t, hash, key, "hash must not embed the plaintext key")

	assert.True(t, ValidateJoinKey(key, hash))
	assert.False(t, ValidateJoinKey(key+"x", hash))
	assert.False(t, ValidateJoinKey("", hash))
}

func TestGenerateJoinKey_Unique(t *testing.T) {
	a, _, _, err := GenerateJoinKey()
	require.NoError(t, err)
	b, _, _, err := GenerateJoinKey()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
