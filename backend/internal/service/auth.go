package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/itchan-dev/authgate/shared/config"
	"github.com/itchan-dev/authgate/shared/crypto"
	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/jwt"
	"github.com/itchan-dev/authgate/shared/logger"
)

const VerifyEmailPath = "/v1/auth/verify_email"

type AuthService interface {
	Register(ctx context.Context, username *domain.Username, email domain.Email, password domain.Password) (domain.Account, error)
	VerifyEmail(ctx context.Context, token string) (domain.Email, error)
	Login(ctx context.Context, email domain.Email, password domain.Password) (string, error)
	ResendVerification(ctx context.Context, email domain.Email) error
}

type AccountStorage interface {
	CreateAccount(ctx context.Context, username *domain.Username, email domain.Email, passHash string) (domain.Account, error)
	AccountByEmail(ctx context.Context, email domain.Email) (domain.Account, error)
	MarkVerified(ctx context.Context, email domain.Email) (int64, error)
}

type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
}

type TokenService interface {
	Mint(claims domain.Claims, ttl time.Duration) (string, error)
	Validate(token string) (domain.Claims, error)
}

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Auth drives an account from unverified to verified and issues session
// tokens for verified accounts only. Every returned error is an
// *internal_errors.ErrorWithStatusCode.
type Auth struct {
	storage  AccountStorage
	notifier Notifier
	tokens   TokenService
	hasher   Hasher
	cfg      *config.Public
}

func NewAuth(storage AccountStorage, notifier Notifier, tokens TokenService, hasher Hasher, cfg *config.Public) *Auth {
	return &Auth{
		storage:  storage,
		notifier: notifier,
		tokens:   tokens,
		hasher:   hasher,
		cfg:      cfg,
	}
}

// Register creates an unverified account and mails a verification link.
// A failed delivery keeps the account, the link can be requested again
// with ResendVerification.
func (a *Auth) Register(ctx context.Context, username *domain.Username, email domain.Email, password domain.Password) (domain.Account, error) {
	if username != nil && strings.TrimSpace(*username) == "" {
		username = nil
	}
	if err := validateCredentials(email, password); err != nil {
		registrationsTotal.WithLabelValues(outcomeValidation).Inc()
		return domain.Account{}, err
	}

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		registrationsTotal.WithLabelValues(outcomeInternalFailure).Inc()
		return domain.Account{}, internal_errors.Internal()
	}

	account, err := a.storage.CreateAccount(ctx, username, email, passHash)
	if err != nil {
		if errors.Is(err, internal_errors.ErrConflict) {
			registrationsTotal.WithLabelValues(outcomeConflict).Inc()
			return domain.Account{}, err
		}
		logger.Log.Error("failed to create account", "email", logger.MaskEmail(email), "error", err)
		registrationsTotal.WithLabelValues(outcomeInternalFailure).Inc()
		return domain.Account{}, internal_errors.Storage()
	}

	if err := a.sendVerification(ctx, email, "Account created but the verification email could not be sent, request a new link"); err != nil {
		registrationsTotal.WithLabelValues(outcomeDeliveryFailed).Inc()
		return account, err
	}

	registrationsTotal.WithLabelValues(outcomeSuccess).Inc()
	logger.Log.Info("account registered", "account_id", account.Id)
	return account, nil
}

// VerifyEmail marks the account named by the token as verified and returns
// its email. Tokens are not single use, repeating the call succeeds.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (domain.Email, error) {
	if token == "" {
		verificationsTotal.WithLabelValues(outcomeInvalidToken).Inc()
		return "", internal_errors.Token("Verification token is required", http.StatusBadRequest)
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			verificationsTotal.WithLabelValues(outcomeExpiredToken).Inc()
			return "", internal_errors.Token("Verification link expired, request a new one", http.StatusBadRequest)
		}
		verificationsTotal.WithLabelValues(outcomeInvalidToken).Inc()
		return "", internal_errors.Token("Invalid verification link", http.StatusBadRequest)
	}

	email, ok := claims.String(domain.ClaimEmail)
	if !ok {
		verificationsTotal.WithLabelValues(outcomeInvalidToken).Inc()
		return "", internal_errors.Token("Invalid verification link", http.StatusBadRequest)
	}

	affected, err := a.storage.MarkVerified(ctx, email)
	if err != nil {
		logger.Log.Error("failed to mark account verified", "email", logger.MaskEmail(email), "error", err)
		verificationsTotal.WithLabelValues(outcomeInternalFailure).Inc()
		return "", internal_errors.Storage()
	}
	if affected == 0 {
		verificationsTotal.WithLabelValues(outcomeNotFound).Inc()
		return "", internal_errors.NotFound("Email not found")
	}

	verificationsTotal.WithLabelValues(outcomeSuccess).Inc()
	return email, nil
}

// Login returns a session token for a verified account. Unknown email and
// wrong password share one message so existing accounts are not disclosed.
func (a *Auth) Login(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
	if email == "" || password == "" {
		loginsTotal.WithLabelValues(outcomeValidation).Inc()
		return "", internal_errors.Validation("Email and password are required")
	}

	account, err := a.storage.AccountByEmail(ctx, email)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			loginsTotal.WithLabelValues(outcomeInvalidCreds).Inc()
			return "", internal_errors.Authentication("Invalid credentials")
		}
		logger.Log.Error("failed to load account", "email", logger.MaskEmail(email), "error", err)
		loginsTotal.WithLabelValues(outcomeInternalFailure).Inc()
		return "", internal_errors.Storage()
	}

	if !account.Verified {
		loginsTotal.WithLabelValues(outcomeUnverified).Inc()
		return "", internal_errors.Authorization("Email is not verified")
	}

	if !a.hasher.Verify(password, account.PassHash) {
		loginsTotal.WithLabelValues(outcomeInvalidCreds).Inc()
		return "", internal_errors.Authentication("Invalid credentials")
	}

	token, err := a.tokens.Mint(domain.Claims{
		domain.ClaimAccountId: account.Id,
		domain.ClaimEmail:     account.Email,
	}, a.cfg.SessionTokenTTL)
	if err != nil {
		logger.Log.Error("failed to mint session token", "account_id", account.Id, "error", err)
		loginsTotal.WithLabelValues(outcomeInternalFailure).Inc()
		return "", internal_errors.Internal()
	}

	loginsTotal.WithLabelValues(outcomeSuccess).Inc()
	return token, nil
}

// ResendVerification mails a fresh link to an account that is still unverified.
func (a *Auth) ResendVerification(ctx context.Context, email domain.Email) error {
	if email == "" {
		return internal_errors.Validation("Email is required")
	}

	account, err := a.storage.AccountByEmail(ctx, email)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return internal_errors.NotFound("Account not found")
		}
		logger.Log.Error("failed to load account", "email", logger.MaskEmail(email), "error", err)
		return internal_errors.Storage()
	}
	if account.Verified {
		verificationsTotal.WithLabelValues(outcomeAlreadyVerified).Inc()
		return internal_errors.Conflict("Email already verified")
	}

	return a.sendVerification(ctx, account.Email, "Verification email could not be sent, try again later")
}

// sendVerification makes one delivery attempt. failMsg is returned to the
// caller on failure.
func (a *Auth) sendVerification(ctx context.Context, email domain.Email, failMsg string) error {
	token, err := a.tokens.Mint(domain.Claims{domain.ClaimEmail: email}, a.cfg.VerificationTokenTTL)
	if err != nil {
		logger.Log.Error("failed to mint verification token", "error", err)
		verificationEmailsTotal.WithLabelValues(notificationFailed).Inc()
		return internal_errors.Delivery(failMsg)
	}

	if err := a.notifier.SendVerificationEmail(ctx, email, a.verificationLink(token)); err != nil {
		logger.Log.Error("failed to send verification email", "email", logger.MaskEmail(email), "error", err)
		verificationEmailsTotal.WithLabelValues(notificationFailed).Inc()
		return internal_errors.Delivery(failMsg)
	}

	verificationEmailsTotal.WithLabelValues(notificationSent).Inc()
	return nil
}

func (a *Auth) verificationLink(token string) string {
	query := url.Values{"token": {token}}
	return strings.TrimRight(a.cfg.BaseURL, "/") + VerifyEmailPath + "?" + query.Encode()
}

func validateCredentials(email domain.Email, password domain.Password) error {
	if email == "" || password == "" {
		return internal_errors.Validation("Email and password are required")
	}
	if len(password) > crypto.MaxPasswordLen {
		return internal_errors.Validation("Password must be at most 72 bytes")
	}
	return nil
}
