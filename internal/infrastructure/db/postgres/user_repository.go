package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

// UserRepository persists users in the users table.
type UserRepository struct {
	pool   pgxPool
	logger zerolog.Logger
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a UserRepository backed by pool.
func NewUserRepository(pool pgxPool, logger zerolog.Logger) *UserRepository {
	return &UserRepository{pool: pool, logger: logger}
}

// Create inserts user, assigning a new ID and creation time. A duplicate
// username yields domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := ulid.Make().String()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, salt, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, user.Username, user.PasswordHash, user.Salt, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		r.logger.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return oops.Code("USER_CREATE_FAILED").With("username", user.Username).
			Wrap(fmt.Errorf("create user: %w: %w", domain.ErrInternal, err))
	}

	user.ID = id
	return nil
}

// FindByUsername returns the user with the given username or
// domain.ErrUserNotFound.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, salt, created_at FROM users WHERE username = $1`,
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Salt, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to find user")
		return nil, oops.Code("USER_QUERY_FAILED").With("username", username).
			Wrap(fmt.Errorf("find user: %w: %w", domain.ErrInternal, err))
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
