package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"notesync/models"
)

const refreshTokenTTL = 30 * 24 * time.Hour

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Register creates a user and returns a fresh token pair.
func (s *Store) Register(ctx context.Context, j *JWT, req models.RegisterRequest) (*models.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: username or email taken", ErrConflict)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := userRow{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return s.issueTokens(ctx, j, u.ID)
}

// Login checks credentials against a username or an email address.
func (s *Store) Login(ctx context.Context, j *JWT, req models.LoginRequest) (*models.TokenResponse, error) {
	ident := strings.TrimSpace(req.UsernameOrEmail)

	var u userRow
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", ident, strings.ToLower(ident)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !ComparePassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, j, u.ID)
}

func (s *Store) issueTokens(ctx context.Context, j *JWT, userID string) (*models.TokenResponse, error) {
	access, err := j.Sign(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refresh := refreshTokenRow{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(refreshTokenTTL).UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&refresh).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{AccessToken: access, RefreshToken: refresh.Token}, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u userRow
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &models.User{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}
