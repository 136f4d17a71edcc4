package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

// AuthService authenticates the single env-configured admin operator and
// issues JWT session tokens for the admin API. There is no user store: the
// credentials come from configuration, so the password is hashed once at
// construction and only the hash is kept in memory.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewAuthService(username, password, jwtSecret string, tokenTTL time.Duration) (*AuthService, error) {
	if tokenTTL <= 0 {
		tokenTTL = 2 * time.Hour
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		username:     username,
		passwordHash: hash,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}, nil
}

// Login verifies the credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"username": username,
		"role":     "admin",
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signed, nil
}
