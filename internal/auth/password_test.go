package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse battery", hash)
		assert.NoError(t, CheckPassword("correct horse battery", hash))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := HashPassword("short", bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("over the bcrypt byte limit", func(t *testing.T) {
		_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", bcrypt.MinCost)
	require.NoError(t, err)

	assert.ErrorIs(t, CheckPassword("wrong password 1", hash), ErrInvalidPassword)
	assert.Error(t, CheckPassword("correct horse battery", "not a bcrypt hash"))
}
