package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	// Create stores a new user and assigns its ID. Returns domain.ErrUserExists
	// when the username is already taken.
	Create(ctx context.Context, user *domain.User) error
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// PasswordHasher derives and checks salted password hashes.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(password, salt string) (string, error)
	Verify(password, salt, hash string) (bool, error)
}

// LoginThrottle tracks failed sign-in attempts per username.
type LoginThrottle interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
