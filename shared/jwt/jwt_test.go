package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretKey = "testJwtKey"

var issuedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func TestMintValidate(t *testing.T) {
	j := New(secretKey)
	claims := domain.Claims{domain.ClaimEmail: "a@x.com", domain.ClaimAccountId: "42"}

	token, err := j.Mint(claims, time.Hour)
	require.NoError(t, err)

	got, err := j.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	c := &clock{t: issuedAt}
	j := New(secretKey, WithClock(c.Now))
	ttl := 24 * time.Hour

	token, err := j.Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, ttl)
	require.NoError(t, err)

	c.t = issuedAt.Add(ttl - time.Millisecond)
	claims, err := j.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims[domain.ClaimEmail])

	c.t = issuedAt.Add(ttl + time.Millisecond)
	_, err = j.Validate(token)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, internal_errors.ErrToken)
}

func TestValidate_ExpiryBoundaryFractionalIssuance(t *testing.T) {
	ttl := time.Hour
	offsets := []time.Duration{
		time.Nanosecond,
		500 * time.Microsecond,
		900 * time.Millisecond,
		999*time.Millisecond + 999*time.Microsecond,
	}

	for _, offset := range offsets {
		t.Run(offset.String(), func(t *testing.T) {
			at := issuedAt.Add(offset)
			c := &clock{t: at}
			j := New(secretKey, WithClock(c.Now))

			token, err := j.Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, ttl)
			require.NoError(t, err)

			c.t = at.Add(ttl - time.Millisecond)
			_, err = j.Validate(token)
			require.NoError(t, err, "token must be valid 1ms before expiry")

			c.t = at.Add(ttl + time.Millisecond)
			_, err = j.Validate(token)
			assert.ErrorIs(t, err, ErrExpired)
		})
	}
}

func TestMint_ExpRoundedUp(t *testing.T) {
	at := issuedAt.Add(900 * time.Millisecond)
	j := New(secretKey, WithClock(func() time.Time { return at }))

	token, err := j.Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	exp, err := parsed.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour+time.Second).Unix(), exp.Unix())
}

func TestValidate_Replayable(t *testing.T) {
	j := New(secretKey)
	token, err := j.Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := j.Validate(token)
		require.NoError(t, err)
	}
}

func TestValidate_InvalidSignature(t *testing.T) {
	token, err := New(secretKey).Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	_, err = New("invalidSecret").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate_Tampered(t *testing.T) {
	j := New(secretKey)
	token, err := j.Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	other, err := j.Mint(domain.Claims{domain.ClaimEmail: "b@x.com"}, time.Hour)
	require.NoError(t, err)

	// payload of one token with the signature of another
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = j.Validate(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate_UnexpectedAlgorithm(t *testing.T) {
	j := New(secretKey)
	exp := time.Now().Add(time.Hour).Unix()

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"email": "a@x.com", "exp": exp}).
		SignedString([]byte(secretKey))
	require.NoError(t, err)
	_, err = j.Validate(hs512)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "a@x.com", "exp": exp}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = j.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate_Malformed(t *testing.T) {
	j := New(secretKey)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@x.com"}).
		SignedString([]byte(secretKey))
	require.NoError(t, err)

	noExpMs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@x.com", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte(secretKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"bad base64", "!!!.???.***"},
		{"missing exp", noExp},
		{"missing exp_ms", noExpMs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Validate(tt.token)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.ErrorIs(t, err, internal_errors.ErrToken)
		})
	}
}

func TestValidate_StripsRegisteredClaims(t *testing.T) {
	j := New(secretKey)
	token, err := j.Mint(domain.Claims{domain.ClaimEmail: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	claims, err := j.Validate(token)
	require.NoError(t, err)
	assert.NotContains(t, claims, "exp")
	assert.NotContains(t, claims, "iat")
	assert.NotContains(t, claims, "exp_ms")
}
