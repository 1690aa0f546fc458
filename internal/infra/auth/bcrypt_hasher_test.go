package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newBcryptHasher(MinBcryptCost)

	password := "hunter2hunter2"
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, MinBcryptCost, cost)

	second, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEqual(t, hash, second, "hashes must be salted")
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := newBcryptHasher(MinBcryptCost)
	password := "correct horse"

	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("wrong horse", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, MinBcryptCost, newBcryptHasher(4).cost)
	assert.Equal(t, 12, newBcryptHasher(12).cost)
	assert.Equal(t, bcrypt.MaxCost, newBcryptHasher(99).cost)
}
