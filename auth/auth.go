// Package auth provides account registration, credential verification and
// HS256 JWT access tokens for the routecore HTTP API.
//
// Passwords are stored as bcrypt hashes; tokens carry the account email as
// subject plus an admin flag, and expire after the configured TTL.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/routecore/routecore/store"
)

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = time.Hour

// Sentinel errors.
var (
	// ErrInvalidCredentials covers unknown emails, wrong passwords and
	// deactivated accounts alike, so responses leak nothing.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken indicates a malformed, mis-signed or expired token.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the JWT payload for API access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// Service issues and verifies tokens against the user store.
type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
}

// NewService wires a Service. An empty ttl falls back to DefaultTokenTTL.
func NewService(st *store.Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Service{store: st, secret: []byte(secret), ttl: ttl}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(email, password string, admin bool) (*store.UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hashing password: %w", err)
	}

	rec := &store.UserRecord{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		IsAdmin:      admin,
	}
	if err := s.store.CreateUser(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Authenticate verifies email+password and returns a signed access token.
// Unknown accounts, wrong passwords and inactive accounts all map onto
// ErrInvalidCredentials.
func (s *Service) Authenticate(email, password string) (string, error) {
	rec, err := s.store.UserByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", err
	}
	if !rec.IsActive {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(&rec)
}

// IssueToken signs an access token for an already-verified account.
func (s *Service) IssueToken(rec *store.UserRecord) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rec.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Admin: rec.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// VerifyToken parses and validates an access token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
