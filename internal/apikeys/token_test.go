package apikeys

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken_AndValidateFormatAndHash(t *testing.T) {
	token, hash, err := GenerateToken()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(token, TokenPrefix))
	require.True(t, ValidateTokenFormat(token))
	require.Len(t, hash, sha256.Size)
	require.Equal(t, HashToken(token), hash)
}

func TestGenerateToken_Unique(t *testing.T) {
	t1, _, err := GenerateToken()
	require.NoError(t, err)
	t2, _, err := GenerateToken()
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)
}

func TestValidateTokenFormat_InvalidPrefix(t *testing.T) {
	require.False(t, ValidateTokenFormat("nope_abc"))
}

func TestValidateTokenFormat_WrongLength(t *testing.T) {
	require.False(t, ValidateTokenFormat(TokenPrefix+"dG9vc2hvcnQ"))
	require.False(t, ValidateTokenFormat(""))
}
