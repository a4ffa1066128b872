package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct-horse", string(hash)))
	assert.False(t, CheckPasswordHash("wrong", string(hash)))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "al***@example.com", MaskEmail("alice@example.com"))
	assert.Equal(t, "**@x.com", MaskEmail("a@x.com"))
	assert.Equal(t, "****", MaskEmail("not-an-email"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@x.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.org"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("no-at-sign"))
	assert.False(t, IsValidEmail("two@@x.com"))
	assert.False(t, IsValidEmail("spaces in@x.com"))
}
