package clinup

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

const (
	RoleHost     = "ROLE_HOTE"
	RoleProvider = "ROLE_PRESTATAIRE"
)

// Credentials is what survives between runs.
type Credentials struct {
	Token string   `json:"token"`
	Roles []string `json:"roles,omitempty"`
}

type TokenStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// Session owns the bearer token for one signed-in user. Every Client that needs
// authentication is handed a Session; nothing reads the token from global state.
type Session struct {
	store TokenStore
	// Now defaults to time.Now.
	Now func() time.Time

	mu     sync.RWMutex
	creds  Credentials
	loaded bool
}

func NewSession(store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Session{store: store}
}

// Token returns the bearer token, or ErrMissingToken when nobody is signed in or the
// stored token is past its exp claim. Tokens the client cannot decode are left to the server.
func (s *Session) Token() (string, error) {
	creds, err := s.credentials()
	if err != nil {
		return "", err
	}
	if creds.Token == "" {
		return "", ErrMissingToken
	}
	if claims, err := ParseClaims(creds.Token); err == nil && claims.Expired(s.now()) {
		return "", ErrMissingToken
	}
	return creds.Token, nil
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Roles prefers the roles returned at login and falls back to the token claims.
func (s *Session) Roles() []string {
	creds, err := s.credentials()
	if err != nil || creds.Token == "" {
		return nil
	}
	if len(creds.Roles) > 0 {
		return slices.Clone(creds.Roles)
	}
	if claims, err := ParseClaims(creds.Token); err == nil {
		return claims.Roles
	}
	return nil
}

func (s *Session) HasRole(role string) bool {
	return slices.Contains(s.Roles(), role)
}

func (s *Session) SignIn(token string, roles []string) error {
	creds := Credentials{Token: token, Roles: slices.Clone(roles)}
	if err := s.store.Save(creds); err != nil {
		return err
	}
	s.mu.Lock()
	s.creds = creds
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Session) SignOut() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.loaded = true
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Session) credentials() (Credentials, error) {
	s.mu.RLock()
	if s.loaded {
		c := s.creds
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		c, err := s.store.Load()
		if err != nil {
			return Credentials{}, err
		}
		s.creds = c
		s.loaded = true
	}
	return s.creds, nil
}

type MemoryTokenStore struct {
	mu    sync.Mutex
	creds Credentials
}

func (m *MemoryTokenStore) Load() (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *MemoryTokenStore) Save(c Credentials) error {
	m.mu.Lock()
	m.creds = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	return m.Save(Credentials{})
}

// FileTokenStore keeps credentials in a 0600 JSON file. A missing file means signed out.
type FileTokenStore struct {
	Path string
}

func (f FileTokenStore) Load() (Credentials, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (f FileTokenStore) Save(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}

func (f FileTokenStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
