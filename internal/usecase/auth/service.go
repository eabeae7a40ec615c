// Package auth registers users and exchanges credentials for tokens.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Pesokrava/product_catalog/internal/domain"
	pkgauth "github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/product_catalog/internal/pkg/validator"
)

// RegisterInput is the payload of a registration
type RegisterInput struct {
	FullName string `validate:"required,min=1,max=255"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

// LoginInput is the payload of a login
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Session is returned by register and login
type Session struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

var errBadCredentials = domain.NewError(domain.ErrUnauthorized, "invalid email or password")

// Service handles registration, login and token refresh
type Service struct {
	users    domain.UserRepository
	hasher   *pkgauth.PasswordHasher
	tokens   *pkgauth.TokenIssuer
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new auth service
func NewService(
	users domain.UserRepository,
	hasher *pkgauth.PasswordHasher,
	tokens *pkgauth.TokenIssuer,
	log *logger.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: pkgvalidator.Get(),
		logger:   log,
		now:      time.Now,
	}
}

// Register creates a user account and signs them in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validate.Struct(in); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid registration: %v", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", err)
		return nil, err
	}

	user := &domain.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewError(domain.ErrConflict, "email already registered")
		}
		s.logger.Error("Failed to create user", err)
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"user_id": user.ID,
	}).Info("User registered successfully")

	return s.session(user)
}

// Login verifies credentials and signs the user in
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validate.Struct(in); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid login: %v", err)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBadCredentials
		}
		s.logger.Error("Failed to get user by email", err)
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, pkgauth.ErrPasswordMismatch) {
			return nil, errBadCredentials
		}
		s.logger.Error("Failed to compare password", err)
		return nil, err
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warnf("Failed to record login for user %s: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}

	return s.session(user)
}

// Refresh exchanges a refresh token for a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*pkgauth.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, pkgauth.RefreshToken)
	if err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, "invalid refresh token")
	}

	// the account may have been deleted since the token was issued
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.ErrUnauthorized, "invalid refresh token")
		}
		s.logger.Error("Failed to get user for refresh", err)
		return nil, err
	}

	access, err := s.tokens.Issue(user.ID, user.Email, string(user.Role), pkgauth.AccessToken)
	if err != nil {
		s.logger.Error("Failed to issue access token", err)
		return nil, err
	}

	return &pkgauth.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (s *Service) session(user *domain.User) (*Session, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		s.logger.Error("Failed to issue tokens", err)
		return nil, err
	}

	return &Session{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
