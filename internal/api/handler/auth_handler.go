package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/task-api/internal/api/metrics"
	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      201
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	err = h.authService.SignUp(c.Request().Context(), req.Username, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("signup", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusCreated)
}

// SignIn authenticates a user and returns a bearer token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      200   {object}  signInResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	token, err := h.authService.SignIn(c.Request().Context(), req.Username, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("signin", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, signInResponse{AccessToken: token})
}

func bindCredentials(c echo.Context) (credentialsRequest, error) {
	var req credentialsRequest
	err := bindAndValidate(c, &req)
	return req, err
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}
