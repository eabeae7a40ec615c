package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	pair, err := issuer.IssuePair(userID, "jane@example.com", "user")
	require.NoError(t, err)

	claims, err := issuer.Validate(pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	claims, err = issuer.Validate(pair.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.Type)
}

func TestTokenIssuer_RejectsWrongType(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)

	pair, err := issuer.IssuePair(uuid.New(), "jane@example.com", "user")
	require.NoError(t, err)

	_, err = issuer.Validate(pair.RefreshToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour, 24*time.Hour)

	token, err := other.Issue(uuid.New(), "jane@example.com", "user", AccessToken)
	require.NoError(t, err)

	_, err = issuer.Validate(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(uuid.New(), "jane@example.com", "user", AccessToken)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Validate(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_EmptySecret(t *testing.T) {
	issuer := NewTokenIssuer("", time.Hour, time.Hour)

	_, err := issuer.Issue(uuid.New(), "jane@example.com", "user", AccessToken)
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, hasher.Compare(hash, "password123"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrPasswordMismatch)
}

func TestContextClaims(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	claims := &Claims{UserID: uuid.New()}
	got, ok := FromContext(WithClaims(context.Background(), claims))
	assert.True(t, ok)
	assert.Same(t, claims, got)
}
