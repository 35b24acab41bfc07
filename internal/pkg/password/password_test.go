package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)
	require.True(t, Verify("s3cret", hash))
	require.False(t, Verify("wrong", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-input")
	require.NoError(t, err)
	second, err := Hash("same-input")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, Verify("same-input", first))
	require.True(t, Verify("same-input", second))
}

func TestVerifyMalformedHash(t *testing.T) {
	require.False(t, Verify("anything", ""))
	require.False(t, Verify("anything", "not-a-bcrypt-hash"))
}
