package ports

import "context"

type AuthService interface {
	SignUp(ctx context.Context, username, password string) error
	// ValidateCredentials returns the username on a match and "" otherwise.
	ValidateCredentials(ctx context.Context, username, password string) (string, error)
	SignIn(ctx context.Context, username, password string) (string, error)
}
