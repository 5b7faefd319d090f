package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	sharedpg "github.com/itchan-dev/authgate/shared/storage/pg"
)

const (
	emailConstraint    = "accounts_email_key"
	usernameConstraint = "accounts_username_key"
)

// =========================================================================
// Public Methods (satisfy the service.AccountStorage interface)
// =========================================================================

// CreateAccount inserts an unverified account. Uniqueness of email and
// username is enforced by table constraints, so racing registrations
// resolve to exactly one winner and a conflict for the rest.
func (s *Storage) CreateAccount(ctx context.Context, username *domain.Username, email domain.Email, passHash string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var account domain.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		account, err = s.createAccount(ctx, tx, username, email, passHash)
		return err
	})
	return account, err
}

func (s *Storage) AccountByEmail(ctx context.Context, email domain.Email) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.accountByEmail(ctx, s.db, email)
}

// MarkVerified returns the number of matched accounts. Repeating it on a
// verified account still matches the row.
func (s *Storage) MarkVerified(ctx context.Context, email domain.Email) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var affected int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		affected, err = s.markVerified(ctx, tx, email)
		return err
	})
	return affected, err
}

// =========================================================================
// Internal Methods
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) createAccount(ctx context.Context, q Querier, username *domain.Username, email domain.Email, passHash string) (domain.Account, error) {
	account := domain.Account{
		Id:       uuid.NewString(),
		Username: username,
		Email:    email,
		PassHash: passHash,
	}

	err := q.QueryRowContext(ctx,
		`INSERT INTO accounts(id, username, email, password_hash)
		VALUES($1, $2, $3, $4)
		RETURNING verified, created_at`,
		account.Id, username, email, passHash,
	).Scan(&account.Verified, &account.CreatedAt)
	if err != nil {
		if constraint, ok := sharedpg.UniqueViolation(err); ok {
			switch constraint {
			case emailConstraint:
				return domain.Account{}, internal_errors.ErrDuplicateEmail
			case usernameConstraint:
				return domain.Account{}, internal_errors.ErrDuplicateUsername
			}
		}
		return domain.Account{}, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (s *Storage) accountByEmail(ctx context.Context, q Querier, email domain.Email) (domain.Account, error) {
	var account domain.Account
	var username sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, verified, created_at
		FROM accounts WHERE email = $1`,
		email,
	).Scan(&account.Id, &username, &account.Email, &account.PassHash, &account.Verified, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, internal_errors.NotFound("Account not found")
		}
		return domain.Account{}, fmt.Errorf("db error: %w", err)
	}
	if username.Valid {
		account.Username = &username.String
	}
	return account, nil
}

func (s *Storage) markVerified(ctx context.Context, q Querier, email domain.Email) (int64, error) {
	result, err := q.ExecContext(ctx, "UPDATE accounts SET verified = TRUE WHERE email = $1", email)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
