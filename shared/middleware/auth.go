package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/jwt"
	"github.com/itchan-dev/authgate/shared/logger"
	"github.com/itchan-dev/authgate/shared/utils"
)

// Key to store the session claims in the request context
type key int

const ClaimsKey key = 0

type TokenValidator interface {
	Validate(token string) (domain.Claims, error)
}

// Auth authenticates requests by their bearer session token.
type Auth struct {
	tokens TokenValidator
}

func NewAuth(tokens TokenValidator) *Auth {
	return &Auth{tokens: tokens}
}

// Sentinel errors for extractClaims
var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// NeedAuth rejects requests without a token with 401 and requests with an
// invalid, expired or non-session token with 403. On success the claims
// are available through ClaimsFromContext.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.extractClaims(r)
			if err != nil {
				switch {
				case errors.Is(err, errNoToken):
					utils.WriteErrorAndStatusCode(w, internal_errors.Authentication("Please sign-in"))
				case errors.Is(err, jwt.ErrExpired):
					utils.WriteErrorAndStatusCode(w, internal_errors.Token("Token expired", http.StatusForbidden))
				default:
					logger.Log.Debug("rejected bearer token", "error", err)
					utils.WriteErrorAndStatusCode(w, internal_errors.Token("Invalid token", http.StatusForbidden))
				}
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Auth) extractClaims(r *http.Request) (domain.Claims, error) {
	// the scheme name is case-insensitive
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errNoToken
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	// verification tokens carry no account id and never authenticate
	if _, ok := claims.String(domain.ClaimAccountId); !ok {
		return nil, errInvalidClaims
	}
	if _, ok := claims.String(domain.ClaimEmail); !ok {
		return nil, errInvalidClaims
	}
	return claims, nil
}

// ClaimsFromContext returns the session claims stored by NeedAuth.
func ClaimsFromContext(ctx context.Context) (domain.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(domain.Claims)
	return claims, ok
}
