// Package auth issues and verifies JWTs and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// ErrInvalidToken is returned for malformed, expired or mistyped tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by a verified token
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   string
	Type   TokenType
}

// TokenPair is returned on login and registration
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer signs and verifies HS256 tokens
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a new token issuer
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs a single token of the given type
func (t *TokenIssuer) Issue(userID uuid.UUID, email, role string, typ TokenType) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("jwt secret not set")
	}

	ttl := t.accessTTL
	if typ == RefreshToken {
		ttl = t.refreshTTL
	}

	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"role":  role,
		"typ":   string(typ),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})

	return token.SignedString(t.secret)
}

// IssuePair signs an access token and a refresh token
func (t *TokenIssuer) IssuePair(userID uuid.UUID, email, role string) (*TokenPair, error) {
	access, err := t.Issue(userID, email, role, AccessToken)
	if err != nil {
		return nil, err
	}

	refresh, err := t.Issue(userID, email, role, RefreshToken)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate verifies the signature, expiry and token type
func (t *TokenIssuer) Validate(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	typ, _ := mapClaims["typ"].(string)
	if TokenType(typ) != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   TokenType(typ),
	}, nil
}
