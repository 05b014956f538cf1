package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

// AuthService implements registration, credential validation and sign-in.
type AuthService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	throttle  ports.LoginThrottle
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

// NewAuthService wires an AuthService. A nil throttle disables sign-in
// throttling.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	throttle ports.LoginThrottle,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if throttle == nil {
		throttle = nopThrottle{}
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		throttle:  throttle,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// SignUp hashes the password with a fresh salt and stores the user.
func (s *AuthService) SignUp(ctx context.Context, username, password string) error {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return internalErr("generate salt", err)
	}
	hash, err := s.hasher.Hash(password, salt)
	if err != nil {
		return internalErr("hash password", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return err
		}
		s.log.Error().Err(err).Str("username", username).Msg("failed to sign up user")
		return internalErr("create user", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("username", username).Msg("user signed up")
	return nil
}

// ValidateCredentials returns the username when the password matches, and ""
// when the user does not exist or the password is wrong. Unknown usernames
// return before any hash is computed.
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil
		}
		return "", internalErr("find user", err)
	}

	ok, err := s.hasher.Verify(password, user.Salt, user.PasswordHash)
	if err != nil {
		return "", internalErr("verify password", err)
	}
	if !ok {
		return "", nil
	}
	return user.Username, nil
}

// SignIn validates the credentials and returns a signed access token.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (string, error) {
	allowed, err := s.throttle.Allowed(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("throttle check failed, continuing")
	} else if !allowed {
		return "", domain.ErrTooManyAttempts
	}

	validated, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	if validated == "" {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to record sign-in failure")
		}
		return "", domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset sign-in failures")
	}
	return s.generateToken(validated)
}

func (s *AuthService) generateToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", internalErr("sign token", err)
	}
	return signed, nil
}

// internalErr tags err as domain.ErrInternal while keeping the cause.
func internalErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
}

type nopThrottle struct{}

func (nopThrottle) Allowed(context.Context, string) (bool, error) { return true, nil }
func (nopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (nopThrottle) Reset(context.Context, string) error           { return nil }
