package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSession is returned when nobody is signed in.
var ErrNoSession = errors.New("not signed in")

// SessionPath is where the current session token is kept.
func SessionPath(dataDir string) string {
	return filepath.Join(dataDir, "session")
}

// SecretPath is where the token signing secret is kept.
func SecretPath(dataDir string) string {
	return filepath.Join(dataDir, "secret")
}

func SaveSession(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// LoadSession returns the stored token or ErrNoSession.
func LoadSession(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// ClearSession signs out. Clearing a missing session is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// LoadOrCreateSecret reads the signing secret at path, generating a random
// one on first use.
func LoadOrCreateSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if s := strings.TrimSpace(string(data)); s != "" {
			return []byte(s), nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create secret directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write secret: %w", err)
	}
	return []byte(secret), nil
}

// CurrentUser resolves the signed-in user from the session file. Without a
// session it returns LocalUser.
func (s *Service) CurrentUser(sessionPath string) (string, error) {
	token, err := LoadSession(sessionPath)
	if errors.Is(err, ErrNoSession) {
		return LocalUser, nil
	}
	if err != nil {
		return "", err
	}
	return s.Verify(token)
}
