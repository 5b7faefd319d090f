package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
)

// --- Mocks ---

type MockAccountStorage struct {
	CreateAccountFunc  func(ctx context.Context, username *domain.Username, email domain.Email, passHash string) (domain.Account, error)
	AccountByEmailFunc func(ctx context.Context, email domain.Email) (domain.Account, error)
	MarkVerifiedFunc   func(ctx context.Context, email domain.Email) (int64, error)
}

func (m *MockAccountStorage) CreateAccount(ctx context.Context, username *domain.Username, email domain.Email, passHash string) (domain.Account, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, username, email, passHash)
	}
	return domain.Account{Id: uuid.NewString(), Username: username, Email: email, PassHash: passHash}, nil
}

func (m *MockAccountStorage) AccountByEmail(ctx context.Context, email domain.Email) (domain.Account, error) {
	if m.AccountByEmailFunc != nil {
		return m.AccountByEmailFunc(ctx, email)
	}
	// Default: Not found
	return domain.Account{}, internal_errors.NotFound("Account not found")
}

func (m *MockAccountStorage) MarkVerified(ctx context.Context, email domain.Email) (int64, error) {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, email)
	}
	return 1, nil
}

type sentEmail struct {
	To   string
	Link string
}

// MockNotifier records every delivery attempt.
type MockNotifier struct {
	SendFunc func(ctx context.Context, to, link string) error

	mu   sync.Mutex
	sent []sentEmail
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, to, link string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentEmail{To: to, Link: link})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, link)
	}
	return nil
}

func (m *MockNotifier) Sent() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

type MockTokenService struct {
	MintFunc     func(claims domain.Claims, ttl time.Duration) (string, error)
	ValidateFunc func(token string) (domain.Claims, error)
}

func (m *MockTokenService) Mint(claims domain.Claims, ttl time.Duration) (string, error) {
	if m.MintFunc != nil {
		return m.MintFunc(claims, ttl)
	}
	return "token", nil
}

func (m *MockTokenService) Validate(token string) (domain.Claims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	return domain.Claims{}, nil
}

// memStorage is an in-memory account store with the same uniqueness
// rules as the postgres schema.
type memStorage struct {
	mu        sync.Mutex
	byEmail   map[domain.Email]domain.Account
	usernames map[domain.Username]struct{}
}

func newMemStorage() *memStorage {
	return &memStorage{
		byEmail:   make(map[domain.Email]domain.Account),
		usernames: make(map[domain.Username]struct{}),
	}
}

func (m *memStorage) CreateAccount(ctx context.Context, username *domain.Username, email domain.Email, passHash string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return domain.Account{}, internal_errors.ErrDuplicateEmail
	}
	if username != nil {
		if _, ok := m.usernames[*username]; ok {
			return domain.Account{}, internal_errors.ErrDuplicateUsername
		}
		m.usernames[*username] = struct{}{}
	}
	account := domain.Account{
		Id:        uuid.NewString(),
		Username:  username,
		Email:     email,
		PassHash:  passHash,
		CreatedAt: time.Now(),
	}
	m.byEmail[email] = account
	return account, nil
}

func (m *memStorage) AccountByEmail(ctx context.Context, email domain.Email) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.byEmail[email]
	if !ok {
		return domain.Account{}, internal_errors.NotFound("Account not found")
	}
	return account, nil
}

func (m *memStorage) MarkVerified(ctx context.Context, email domain.Email) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.byEmail[email]
	if !ok {
		return 0, nil
	}
	account.Verified = true
	m.byEmail[email] = account
	return 1, nil
}

func (m *memStorage) delete(email domain.Email) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEmail, email)
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}
