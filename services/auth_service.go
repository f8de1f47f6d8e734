package services

import (
	"context"
	"log/slog"

	"notesync/models"
	"notesync/session"
	"notesync/validator"
)

// AuthService handles sign-up, sign-in and the current session.
type AuthService struct {
	api       AuthAPI
	store     SessionStore
	validator *validator.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(api AuthAPI, store SessionStore, v *validator.Validator, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: api, store: store, validator: v, logger: logger}
}

// SignUp registers a new account. It reports false when the input is invalid
// or the backend refused; the stored session is then left as it was.
func (as *AuthService) SignUp(ctx context.Context, req models.RegisterRequest) bool {
	if err := as.validator.Validate(req); err != nil {
		as.logger.Info("sign-up rejected", "error", err)
		return false
	}
	if _, err := as.api.Register(ctx, req); err != nil {
		as.logger.Warn("sign-up failed", "username", req.Username, "error", err)
		return false
	}
	as.logger.Info("signed up", "username", req.Username, "user_id", as.CurrentUserID())
	return true
}

// SignIn authenticates with a username or email. Same contract as SignUp.
func (as *AuthService) SignIn(ctx context.Context, usernameOrEmail, password string) bool {
	req := models.LoginRequest{UsernameOrEmail: usernameOrEmail, Password: password}
	if err := as.validator.Validate(req); err != nil {
		as.logger.Info("sign-in rejected", "error", err)
		return false
	}
	if _, err := as.api.Login(ctx, req); err != nil {
		as.logger.Warn("sign-in failed", "user", usernameOrEmail, "error", err)
		return false
	}
	as.logger.Info("signed in", "user_id", as.CurrentUserID())
	return true
}

// SignOut forgets the stored session. Local data is kept.
func (as *AuthService) SignOut() error {
	return as.store.Clear()
}

// CurrentUserID returns the signed-in user's id, or "" when unknown.
func (as *AuthService) CurrentUserID() string {
	return as.store.Get(session.KeyUserID)
}

func (as *AuthService) IsSignedIn() bool {
	return as.store.Get(session.KeyAccessToken) != ""
}
