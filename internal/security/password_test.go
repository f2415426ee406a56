package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "Correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashFormat(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "v1", parts[0])
	assert.Equal(t, "100000", parts[1])
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("secret")
	require.NoError(t, err)
	h2, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"v1",
		"v1$100000$salt",
		"v2$100000$c2FsdA==$aGFzaA==",
		"v1$notanumber$c2FsdA==$aGFzaA==",
		"v1$100000$!!!$aGFzaA==",
		"v1$100000$c2FsdA==$!!!",
	}
	for _, stored := range cases {
		assert.False(t, VerifyPassword(stored, "secret"), "stored=%q", stored)
	}
}
