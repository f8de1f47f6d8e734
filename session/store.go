package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"notesync/models"

	"golang.org/x/oauth2"
)

// Preference keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
)

// ErrNoToken is returned by Token when no access token is stored.
var ErrNoToken = errors.New("no access token stored")

// Store is a durable key-value store for the auth session. Values are kept in
// a JSON file and mirrored in memory; every key can be observed.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
	subs   map[string]map[*subscription]struct{}
}

// NewStore loads path. A missing or unreadable file yields an empty store;
// the fault is logged, never returned.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger,
		values: make(map[string]string),
		subs:   make(map[string]map[*subscription]struct{}),
	}
	s.values = s.load()
	return s
}

func (s *Store) load() map[string]string {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values
	}
	if err != nil {
		s.logger.Warn("failed to read preferences, using defaults", "path", s.path, "error", err)
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("failed to parse preferences, using defaults", "path", s.path, "error", err)
		return make(map[string]string)
	}
	return values
}

// persist writes the map atomically. Caller holds s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Get returns the value stored under key, or "" when absent.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set stores value under key and notifies subscribers. An empty value
// removes the key.
func (s *Store) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

// SetMany stores several keys with a single write.
func (s *Store) SetMany(kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]string, len(kv))
	for k, v := range kv {
		previous[k] = s.values[k]
		if v == "" {
			delete(s.values, k)
		} else {
			s.values[k] = v
		}
	}

	if err := s.persist(); err != nil {
		for k, v := range previous {
			if v == "" {
				delete(s.values, k)
			} else {
				s.values[k] = v
			}
		}
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	for k, v := range kv {
		if previous[k] != v {
			s.publish(k, v)
		}
	}
	return nil
}

// Session returns the stored credentials.
func (s *Store) Session() models.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.AuthSession{
		AccessToken:  s.values[KeyAccessToken],
		RefreshToken: s.values[KeyRefreshToken],
		UserID:       s.values[KeyUserID],
	}
}

// SetSession replaces the stored credentials.
func (s *Store) SetSession(sess models.AuthSession) error {
	return s.SetMany(map[string]string{
		KeyAccessToken:  sess.AccessToken,
		KeyRefreshToken: sess.RefreshToken,
		KeyUserID:       sess.UserID,
	})
}

// Clear removes the stored credentials.
func (s *Store) Clear() error {
	return s.SetSession(models.AuthSession{})
}

// Token implements oauth2.TokenSource over the stored access token.
func (s *Store) Token() (*oauth2.Token, error) {
	sess := s.Session()
	if sess.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
