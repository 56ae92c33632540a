// Package auth implements credential checks and token issuance for the user
// management service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
	"github.com/TaraScho/gameday-demo-app-services/internal/repository"
	"github.com/TaraScho/gameday-demo-app-services/pkg/crypto"
	jwtpkg "github.com/TaraScho/gameday-demo-app-services/pkg/jwt"
)

// ErrInvalidInput indicates a signup with missing fields.
var ErrInvalidInput = errors.New("auth: email, name and password are required")

// ErrUnauthorized indicates a failed login. The cause (unknown account vs
// wrong password) is never exposed to the caller; it only appears as a
// structured log event.
var ErrUnauthorized = errors.New("auth: invalid credentials")

// Validator decodes and verifies tokens against the shared signing secret.
// Validation is stateless: any service holding the secret can verify tokens
// issued by the user management service.
type Validator struct {
	secret string
}

// NewValidator constructs a Validator.
func NewValidator(secret string) Validator {
	return Validator{secret: secret}
}

// ValidateToken decodes a token string into the identity it was issued for.
// Tokens remain valid until expiry regardless of later account changes.
func (v Validator) ValidateToken(tokenString string) (domain.Identity, error) {
	claims, err := jwtpkg.Parse(tokenString, v.secret)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{AccountID: claims.Subject, DisplayName: claims.Name}, nil
}

// Service handles signup, login and token validation.
type Service struct {
	Validator
	accounts repository.AccountRepository
	logger   *slog.Logger
	secret   string
	tokenTTL time.Duration
}

// New constructs a Service.
func New(accounts repository.AccountRepository, logger *slog.Logger, secret string, tokenTTL time.Duration) Service {
	return Service{Validator: NewValidator(secret), accounts: accounts, logger: logger, secret: secret, tokenTTL: tokenTTL}
}

// Signup registers a new account. No token is issued; the user logs in
// afterwards.
func (s Service) Signup(ctx context.Context, email, name, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" || password == "" {
		return ErrInvalidInput
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account := &domain.Account{
		ID:           email,
		DisplayName:  name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return err
	}
	s.logger.Info("users.signup", "usr.id", account.ID)
	return nil
}

// Login checks credentials and returns a signed token whose subject is the
// account identifier and whose payload carries the display name.
func (s Service) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.GetAccountByID(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("users.login.failure", "usr.id", email, "account_exists", false)
			return "", ErrUnauthorized
		}
		return "", err
	}
	if err := crypto.ComparePassword(account.PasswordHash, password); err != nil {
		s.logger.Warn("users.login.failure", "usr.id", account.ID, "account_exists", true)
		return "", ErrUnauthorized
	}
	token, err := jwtpkg.GenerateToken(account.ID, account.DisplayName, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("users.login.success", "usr.id", account.ID)
	return token, nil
}
