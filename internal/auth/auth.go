// Package auth is the session boundary. A signed-in username only selects
// the workspace key prefix; without a session the user is LocalUser.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/studybuddy/studybuddy/internal/store"
)

// LocalUser owns the workspace when nobody is signed in.
const LocalUser = "local"

// DefaultTokenTTL is how long a login stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("session token is invalid or expired")
)

// Credentials are validated before registering or signing in.
type Credentials struct {
	Username string `validate:"required,alphanum,min=3,max=32"`
	Password string `validate:"required,min=6"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports a readable error for the first rule c breaks.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.Field() + "." + fe.Tag() {
	case "Username.required", "Password.required":
		return fmt.Errorf("%s is required", strings.ToLower(fe.Field()))
	case "Username.alphanum":
		return errors.New("username may only contain letters and digits")
	case "Username.min", "Username.max":
		return errors.New("username must be 3-32 characters")
	case "Password.min":
		return errors.New("password must be at least 6 characters")
	default:
		return err
	}
}

// Claims are the signed session token contents.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service registers users and issues session tokens.
type Service struct {
	users  store.UserRepo
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewService creates an auth service signing tokens with secret.
func NewService(users store.UserRepo, secret []byte, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, secret: secret, ttl: ttl, now: time.Now, log: log}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) error {
	creds := Credentials{Username: normalize(username), Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}
	if creds.Username == LocalUser {
		return fmt.Errorf("username %q is reserved", LocalUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.users.Create(ctx, store.User{
		Username:     creds.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return err
	}
	s.log.Info("user registered", zap.String("user", creds.Username))
	return nil
}

// Login checks the password and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	name := normalize(username)
	u, err := s.users.Get(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	s.log.Info("user signed in", zap.String("user", u.Username))
	return token, nil
}

// Verify returns the username a token was issued for.
func (s *Service) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}
