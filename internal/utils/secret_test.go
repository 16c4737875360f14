package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	encoded, err := HashSecret("photon-shared-secret")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := VerifySecret("photon-shared-secret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySecret("wrong-secret", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSecretUniqueSalt(t *testing.T) {
	// 相同密钥两次哈希结果不同（随机盐）
	first, err := HashSecret("same-secret")
	require.NoError(t, err)
	second, err := HashSecret("same-secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifySecretMalformed(t *testing.T) {
	_, err := VerifySecret("secret", "not-an-encoded-hash")
	assert.Error(t, err)

	_, err = VerifySecret("secret", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$BBBB")
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}
