package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("motdepasse123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "motdepasse123", hash)

	assert.True(t, VerifyPassword("motdepasse123", hash))
	assert.False(t, VerifyPassword("mauvais-mot-de-passe", hash))
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	assert.False(t, VerifyPassword("motdepasse123", "pas-un-hash"))
	assert.False(t, VerifyPassword("motdepasse123", ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("motdepasse123")
	require.NoError(t, err)
	h2, err := HashPassword("motdepasse123")
	require.NoError(t, err)

	// Deux hash du même mot de passe diffèrent (salt aléatoire)
	assert.NotEqual(t, h1, h2)
}
