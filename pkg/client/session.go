package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// TokenStore persists the access token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token for the life of the process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error { return s.Save("") }

// FileTokenStore keeps the token in a single file.
type FileTokenStore struct {
	fs   afero.Fs
	path string
}

// NewFileTokenStore stores the token at path on fs.
func NewFileTokenStore(fs afero.Fs, path string) *FileTokenStore {
	return &FileTokenStore{fs: fs, path: path}
}

// Load returns "" when no token has been saved.
func (s *FileTokenStore) Load() (string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Authenticator is the part of the API a Session needs. *Client implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
}

// Session owns the current token and hands out Credentials for each call.
type Session struct {
	auth  Authenticator
	store TokenStore

	mu    sync.RWMutex
	token string
}

// NewSession restores any token previously saved in store.
func NewSession(auth Authenticator, store TokenStore) (*Session, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{auth: auth, store: store, token: token}, nil
}

// Login authenticates and persists the new token. Invalid fields are reported
// as a *ValidationError without calling the API.
func (s *Session) Login(ctx context.Context, form LoginForm) error {
	if fields := ValidateLogin(form); len(fields) > 0 {
		return &ValidationError{Message: "invalid login form", Fields: fields}
	}
	token, err := s.auth.Login(ctx, form.Email, form.Password)
	if err != nil {
		return err
	}
	return s.setToken(token)
}

// Register creates the account and signs in with the returned token. Invalid
// fields are reported as a *ValidationError without calling the API.
func (s *Session) Register(ctx context.Context, form RegisterForm) error {
	if fields := ValidateRegister(form); len(fields) > 0 {
		return &ValidationError{Message: "invalid registration form", Fields: fields}
	}
	token, err := s.auth.Register(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		return err
	}
	return s.setToken(token)
}

// Logout forgets the token locally; the server keeps no session.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return s.store.Clear()
}

// Credentials returns the credentials for the current token.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Bearer(s.token)
}

func (s *Session) IsAuthenticated() bool { return s.Credentials().Authenticated() }

func (s *Session) setToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.store.Save(token)
}
