package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimsString(t *testing.T) {
	claims := Claims{ClaimEmail: "a@x.com", "n": 42.0, "empty": ""}

	email, ok := claims.String(ClaimEmail)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", email)

	_, ok = claims.String("n")
	assert.False(t, ok)

	_, ok = claims.String("missing")
	assert.False(t, ok)

	_, ok = claims.String("empty")
	assert.False(t, ok)
}
