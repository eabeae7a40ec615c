package user

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/product_catalog/internal/pkg/validator"
)

// Patch holds the fields of a profile update. Nil fields are left unchanged.
type Patch struct {
	FullName *string
	Email    *string
	Password *string `validate:"omitempty,min=6,max=72"`
}

// Service handles user profile logic
type Service struct {
	repo     domain.UserRepository
	hasher   *auth.PasswordHasher
	validate *validator.Validate
	logger   *logger.Logger
}

// NewService creates a new user service
func NewService(repo domain.UserRepository, hasher *auth.PasswordHasher, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		validate: pkgvalidator.Get(),
		logger:   log,
	}
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("User not found: %s", id)
		} else {
			s.logger.Error("Failed to get user", err)
		}
		return nil, err
	}

	return user, nil
}

// Update applies patch to a user. Only the user or an admin may do it.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch Patch) (*domain.User, error) {
	if !actor.CanManage(id) {
		return nil, domain.NewError(domain.ErrForbidden, "you can only update your own profile")
	}

	if err := s.validate.Struct(patch); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid profile: %v", err)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FullName != nil {
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			s.logger.Error("Failed to hash password", err)
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.validate.Struct(user); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid profile: %v", err)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewError(domain.ErrConflict, "email already registered")
		}
		s.logger.Error("Failed to update user", err)
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"user_id":  user.ID,
		"actor_id": actor.UserID,
	}).Info("User updated successfully")

	return user, nil
}

// Delete soft-deletes a user. Only the user or an admin may do it.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if !actor.CanManage(id) {
		return domain.NewError(domain.ErrForbidden, "you can only delete your own account")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete user", err)
		}
		return err
	}

	s.logger.WithFields(map[string]any{
		"user_id":  id,
		"actor_id": actor.UserID,
	}).Info("User deleted successfully")

	return nil
}
