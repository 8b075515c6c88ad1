// Package client is an embeddable SDK for the marketplace admin API. It
// owns the authentication lifecycle: token persistence, the HTTP resource
// services, and the session controller that ties them together.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoToken is returned when no token of the requested kind is stored.
var ErrNoToken = errors.New("no token stored")

// TokenStore persists the access/refresh token pair to a file. It performs
// no validation of token shape; it is a purely opaque persistence boundary.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

type storedTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// NewTokenStore creates a token store backed by the given file path. The
// file is created on first Store call.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Get returns the stored access token, or ErrNoToken when absent.
func (s *TokenStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return "", err
	}
	if tokens.AccessToken == "" {
		return "", ErrNoToken
	}
	return tokens.AccessToken, nil
}

// GetRefresh returns the stored refresh token, or ErrNoToken when absent.
func (s *TokenStore) GetRefresh() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return "", err
	}
	if tokens.RefreshToken == "" {
		return "", ErrNoToken
	}
	return tokens.RefreshToken, nil
}

// Store persists the access token. The refresh token is persisted only when
// non-empty; a call that omits it never clears a previously stored one.
func (s *TokenStore) Store(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil && !errors.Is(err, ErrNoToken) {
		return err
	}
	if err != nil {
		tokens = storedTokens{}
	}

	tokens.AccessToken = access
	if refresh != "" {
		tokens.RefreshToken = refresh
	}

	return s.write(tokens)
}

// Clear removes both tokens unconditionally. It is idempotent; clearing an
// already-empty store is not an error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear token store: %w", err)
	}
	return nil
}

func (s *TokenStore) read() (storedTokens, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storedTokens{}, ErrNoToken
		}
		return storedTokens{}, fmt.Errorf("read token store: %w", err)
	}

	var tokens storedTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return storedTokens{}, fmt.Errorf("decode token store: %w", err)
	}
	return tokens, nil
}

// write persists atomically via a temp file and rename so a crash mid-write
// never leaves a truncated store.
func (s *TokenStore) write(tokens storedTokens) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode token store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write token store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp token file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist token store: %w", err)
	}
	return nil
}
