package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is a user's authorization role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account
type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	FullName        string     `json:"fullName" db:"full_name" validate:"required,min=1,max=255"`
	Email           string     `json:"email" db:"email" validate:"required,email,max=255"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	Role            Role       `json:"role" db:"role" validate:"required,oneof=user admin"`
	IsEmailVerified bool       `json:"isEmailVerified" db:"is_email_verified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	SoftDeleter

	// Create creates a new user. Returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email (excludes soft-deleted)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates profile fields and password hash
	Update(ctx context.Context, user *User) error

	// TouchLastLogin records a successful login
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// CanManage reports whether the actor may modify the given user
func (a Actor) CanManage(userID uuid.UUID) bool {
	return a.UserID == userID || a.Role == RoleAdmin
}
