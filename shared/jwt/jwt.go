package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
)

// Validation failures. All of them match internal_errors.ErrToken.
var (
	ErrMalformed        = fmt.Errorf("%w: malformed token", internal_errors.ErrToken)
	ErrInvalidSignature = fmt.Errorf("%w: invalid token signature", internal_errors.ErrToken)
	ErrExpired          = fmt.Errorf("%w: token expired", internal_errors.ErrToken)
)

const (
	claimExp = "exp"
	claimIat = "iat"
	// expiry in unix milliseconds; exp only holds whole seconds
	claimExpMs = "exp_ms"
)

type Jwt struct {
	secretKey []byte
	now       func() time.Time
	parser    *jwt.Parser
}

type Option func(*Jwt)

// WithClock replaces time.Now, used to test expiry boundaries.
func WithClock(now func() time.Time) Option {
	return func(j *Jwt) {
		j.now = now
	}
}

func New(secretKey string, opts ...Option) *Jwt {
	j := &Jwt{secretKey: []byte(secretKey), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	j.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	return j
}

// Mint signs claims with HS256 and expires the token at now + ttl, to the
// millisecond. exp is rounded up to the next second so standard readers
// never see the token expire early.
func (j *Jwt) Mint(claims domain.Claims, ttl time.Duration) (string, error) {
	now := j.now()
	expiresAt := now.Add(ttl)

	mapClaims := jwt.MapClaims{}
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims[claimIat] = now.Unix()
	mapClaims[claimExp] = ceilUnix(expiresAt)
	mapClaims[claimExpMs] = expiresAt.UnixMilli()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Validate checks signature and expiry and returns the claims passed to Mint.
func (j *Jwt) Validate(tokenString string) (domain.Claims, error) {
	token, err := j.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	// integral millisecond counts are exact in float64
	expMs, ok := mapClaims[claimExpMs].(float64)
	if !ok {
		return nil, ErrMalformed
	}
	if !j.now().Before(time.UnixMilli(int64(expMs))) {
		return nil, ErrExpired
	}

	claims := make(domain.Claims, len(mapClaims))
	for k, v := range mapClaims {
		if k == claimExp || k == claimIat || k == claimExpMs {
			continue
		}
		claims[k] = v
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}

func ceilUnix(t time.Time) int64 {
	if t.Nanosecond() > 0 {
		return t.Unix() + 1
	}
	return t.Unix()
}
