package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	vaultFile   = "wallet.vault"
	sessionFile = "session.json"

	// SessionDuration is how long an unlocked wallet stays unlocked.
	SessionDuration = 30 * time.Minute
)

var (
	ErrLocked  = errors.New("wallet is locked")
	ErrNoVault = errors.New("no wallet found, run init or import first")
)

// Session is the unlocked secret cached between CLI invocations.
type Session struct {
	Token      string    `json:"token"`
	Secret     Secret    `json:"secret"`
	Expiration time.Time `json:"expiration"`
	Network    string    `json:"network"`
}

// Store persists the vault and the session under one directory. Sessions
// are bound to the network they were opened on.
type Store struct {
	vaultPath   string
	sessionPath string
	network     string
	now         func() time.Time

	mu     sync.Mutex
	secret *Secret
}

func NewStore(dir, network string) *Store {
	return &Store{
		vaultPath:   filepath.Join(dir, vaultFile),
		sessionPath: filepath.Join(dir, sessionFile),
		network:     network,
		now:         time.Now,
	}
}

func (s *Store) VaultExists() bool {
	_, err := os.Stat(s.vaultPath)
	return err == nil
}

// Save encrypts secret under password, replacing any existing vault, and
// opens a session.
func (s *Store) Save(secret Secret, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, err := NewVault(secret, password)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.vaultPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.Marshal(vault)
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}
	if err := os.WriteFile(s.vaultPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}

	s.secret = &secret
	return s.createSession(secret)
}

func (s *Store) loadVault() (*Vault, error) {
	data, err := os.ReadFile(s.vaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoVault
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}
	var vault Vault
	if err := json.Unmarshal(data, &vault); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault: %w", err)
	}
	return &vault, nil
}

// Unlock opens the vault with password and starts a session. A live
// session for the current network is reused without checking the password.
func (s *Store) Unlock(password string) (Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.loadSession(); ok {
		s.secret = &sess.Secret
		return sess.Secret, nil
	}

	vault, err := s.loadVault()
	if err != nil {
		return Secret{}, err
	}
	secret, err := vault.Decrypt(password)
	if err != nil {
		return Secret{}, err
	}
	s.secret = &secret
	if err := s.createSession(secret); err != nil {
		return Secret{}, err
	}
	return secret, nil
}

// Secret returns the unlocked secret, from memory or a live session.
func (s *Store) Secret() (Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.secret != nil {
		return *s.secret, nil
	}
	sess, ok := s.loadSession()
	if !ok {
		return Secret{}, ErrLocked
	}
	s.secret = &sess.Secret
	return sess.Secret, nil
}

func (s *Store) IsUnlocked() bool {
	_, err := s.Secret()
	return err == nil
}

// Lock forgets the secret and removes the session file.
func (s *Store) Lock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = nil
	if err := os.Remove(s.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func generateSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

func (s *Store) createSession(secret Secret) error {
	token, err := generateSessionToken()
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}
	data, err := json.Marshal(Session{
		Token:      token,
		Secret:     secret,
		Expiration: s.now().Add(SessionDuration),
		Network:    s.network,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// loadSession returns a live session for the current network. Corrupt and
// expired sessions are removed.
func (s *Store) loadSession() (Session, bool) {
	data, err := os.ReadFile(s.sessionPath)
	if err != nil {
		return Session{}, false
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		os.Remove(s.sessionPath)
		return Session{}, false
	}
	if s.now().After(sess.Expiration) {
		os.Remove(s.sessionPath)
		return Session{}, false
	}
	if sess.Network != s.network {
		return Session{}, false
	}
	return sess, true
}
