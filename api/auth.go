package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"notesync/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionWriter receives the credentials obtained by a successful sign-in.
type SessionWriter interface {
	SetSession(models.AuthSession) error
}

type AuthClient struct {
	c      *Client
	store  SessionWriter
	logger *slog.Logger
}

func NewAuthClient(c *Client, store SessionWriter) *AuthClient {
	return &AuthClient{c: c, store: store, logger: c.logger}
}

// Register creates an account and stores the returned session.
func (a *AuthClient) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	return a.authenticate(ctx, "/auth/register", req)
}

// Login exchanges credentials for tokens and stores the returned session.
func (a *AuthClient) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	return a.authenticate(ctx, "/auth/login", req)
}

func (a *AuthClient) authenticate(ctx context.Context, path string, body any) (*models.TokenResponse, error) {
	var tokens models.TokenResponse
	if err := a.c.doJSON(ctx, a.c.public, http.MethodPost, path, body, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%s: response carried no access token", path)
	}

	userID, err := UserIDFromToken(tokens.AccessToken)
	if err != nil {
		a.logger.Warn("failed to decode user id from access token", "error", err)
	}

	session := models.AuthSession{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		UserID:       userID,
	}
	if err := a.store.SetSession(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &tokens, nil
}

// UserIDFromToken reads the sub claim without verifying the signature.
func UserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	switch sub := claims["sub"].(type) {
	case string:
		if sub == "" {
			return "", fmt.Errorf("token has empty sub claim")
		}
		return sub, nil
	case float64:
		return strconv.FormatInt(int64(sub), 10), nil
	case nil:
		return "", fmt.Errorf("token has no sub claim")
	default:
		return "", fmt.Errorf("unexpected sub claim type %T", sub)
	}
}
