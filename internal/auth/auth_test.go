package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/studybuddy/studybuddy/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(s.Users(), []byte("test-secret"), time.Hour, nil)
}

func TestRegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if err := svc.Register(ctx, "Alice", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := svc.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	user, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user != "alice" {
		t.Fatalf("user = %q, want alice", user)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if err := svc.Register(ctx, "bob", "secret1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Register(ctx, "bob", "secret2"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name, user, pass string
	}{
		{"short username", "ab", "secret1"},
		{"long username", "abcdefghijabcdefghijabcdefghijabc", "secret1"},
		{"symbols", "bob!", "secret1"},
		{"short password", "carol", "12345"},
		{"reserved", "local", "secret1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Register(context.Background(), tt.user, tt.pass); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if err := svc.Register(ctx, "dave", "correct-horse"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, "dave", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if err := svc.Register(ctx, "erin", "secret1"); err != nil {
		t.Fatal(err)
	}
	token, err := svc.Login(ctx, "erin", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: err = %v, want ErrInvalidToken", err)
	}

	other := NewService(nil, []byte("other-secret"), time.Hour, nil)
	svc.now = time.Now
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign: err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionFile(t *testing.T) {
	dir := t.TempDir()
	path := SessionPath(dir)
	svc := newTestService(t)

	user, err := svc.CurrentUser(path)
	if err != nil || user != LocalUser {
		t.Fatalf("CurrentUser = %q, %v; want local", user, err)
	}

	ctx := context.Background()
	if err := svc.Register(ctx, "frank", "secret1"); err != nil {
		t.Fatal(err)
	}
	token, err := svc.Login(ctx, "frank", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if err := SaveSession(path, token); err != nil {
		t.Fatal(err)
	}
	if user, err := svc.CurrentUser(path); err != nil || user != "frank" {
		t.Fatalf("CurrentUser = %q, %v; want frank", user, err)
	}

	if err := ClearSession(path); err != nil {
		t.Fatal(err)
	}
	if err := ClearSession(path); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, err := LoadSession(path); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestLoadOrCreateSecretIsStable(t *testing.T) {
	path := SecretPath(t.TempDir())
	a, err := LoadOrCreateSecret(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadOrCreateSecret(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) || len(a) != 64 {
		t.Fatalf("secret not stable: %q vs %q", a, b)
	}
}
