package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErrors "warehouse-manager/pkg/errors"
)

func TestHasher_RoundTrip(t *testing.T) {
	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algorithm, func(t *testing.T) {
			h, err := NewHasher(algorithm, bcrypt.MinCost)
			require.NoError(t, err)

			hash, err := h.Hash("pw1")
			require.NoError(t, err)
			assert.NotEqual(t, "pw1", hash)

			assert.True(t, h.Verify("pw1", hash))
			assert.False(t, h.Verify("pw2", hash))
		})
	}
}

func TestHasher_SaltedOutput(t *testing.T) {
	h, err := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_VerifiesAcrossAlgorithms(t *testing.T) {
	bcryptHasher, err := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	argonHasher, err := NewHasher(AlgorithmArgon2id, 0)
	require.NoError(t, err)

	legacy, err := bcryptHasher.Hash("secret")
	require.NoError(t, err)
	modern, err := argonHasher.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(modern, argon2idPrefix))

	assert.True(t, argonHasher.Verify("secret", legacy))
	assert.True(t, bcryptHasher.Verify("secret", modern))
}

func TestHasher_MalformedHash(t *testing.T) {
	h, err := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	for _, hash := range []string{"", "plaintext", "$2a$04$short", "$argon2id$v=19$broken"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("anything", hash))
		})
	}
}

func TestHasher_BcryptByteLimit(t *testing.T) {
	h, err := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)

	// 40 runes, 80 bytes
	_, err = h.Hash(strings.Repeat("ş", 40))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestNewHasher_Rejects(t *testing.T) {
	_, err := NewHasher("md5", 0)
	assert.Error(t, err)

	_, err = NewHasher(AlgorithmBcrypt, 99)
	assert.Error(t, err)
}
