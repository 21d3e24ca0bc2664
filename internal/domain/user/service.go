package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Servicer interface {
	Register(ctx context.Context, email, password string) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
	Exchange(ctx context.Context, providerToken string) (User, error)
}

type Service struct {
	repo      Repository
	validator Validator
	provider  ProviderVerifier
	log       *slog.Logger
	newID     func() string
}

func NewService(repo Repository, validator Validator, provider ProviderVerifier, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		provider:  provider,
		log:       log.With("component", "user_service"),
		newID:     uuid.NewString,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if err := s.validator.ValidateRegister(email, password); err != nil {
		s.log.Debug("validation failed", "email", email, "error", err)
		return User{}, &DomainError{Err: ErrInvalidInput, Message: err.Error(), Code: "invalid_input"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{ID: s.newID(), Email: email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return User{}, ErrInvalidAuth
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidAuth
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	if u.PasswordHash == "" {
		return User{}, ErrInvalidAuth
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidAuth
	}
	return u, nil
}

// Exchange trades an identity provider token for the linked local user.
func (s *Service) Exchange(ctx context.Context, providerToken string) (User, error) {
	if strings.TrimSpace(providerToken) == "" {
		return User{}, &DomainError{Err: ErrInvalidInput, Message: "provider_token is required", Code: "invalid_input"}
	}

	identity, err := s.provider.Verify(ctx, providerToken)
	if err != nil {
		s.log.Debug("provider rejected token", "error", err)
		return User{}, err
	}
	identity.Email = normalizeEmail(identity.Email)
	if identity.Email == "" {
		return User{}, &DomainError{Err: ErrInvalidProviderToken, Message: "provider returned no email", Code: "invalid_provider_token"}
	}

	u, err := s.repo.UpsertByProvider(ctx, s.newID(), identity)
	if err != nil {
		return User{}, fmt.Errorf("link provider user: %w", err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
