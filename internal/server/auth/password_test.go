package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))

	assert.NoError(t, ComparePassword(digest, "correct horse"))
	assert.ErrorIs(t, ComparePassword(digest, "wrong horse"), ErrPasswordMismatch)
}

func TestHashPassword_SaltsEachDigest(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_LongPasswordsUseEveryByte(t *testing.T) {
	t.Parallel()

	base := strings.Repeat("a", 80)
	digest, err := HashPassword(base+"x", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(digest, base+"x"))
	assert.ErrorIs(t, ComparePassword(digest, base+"y"), ErrPasswordMismatch)
}

func TestHashPassword_InvalidCost(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("password1", bcrypt.MaxCost+1)
	assert.ErrorContains(t, err, "hash password")
}

func TestComparePassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	err := ComparePassword("not-a-digest", "password1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
