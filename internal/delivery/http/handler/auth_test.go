package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pesokrava/product_catalog/internal/domain"
	pkgauth "github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/auth"
)

func newAuthHandler() (*AuthHandler, *MockUserRepository, *pkgauth.PasswordHasher) {
	repo := new(MockUserRepository)
	log := logger.New("test")
	hasher := pkgauth.NewPasswordHasher(bcrypt.MinCost)
	tokens := pkgauth.NewTokenIssuer("test-secret", time.Minute, time.Hour)
	return NewAuthHandler(auth.NewService(repo, hasher, tokens, log), log), repo, hasher
}

func TestAuthHandler_Register(t *testing.T) {
	handler, repo, _ := newAuthHandler()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" && u.PasswordHash != "secret123"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = uuid.New()
	}).Return(nil)

	body := []byte(`{"fullName":"Jane Doe","email":"Jane@Example.com","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var response struct {
		Data auth.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Data.AccessToken)
	assert.NotEmpty(t, response.Data.RefreshToken)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, repo, _ := newAuthHandler()
	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyExists)

	body := []byte(`{"fullName":"Jane Doe","email":"jane@example.com","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email already registered", decodeError(t, w).Error.Message)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	handler, _, _ := newAuthHandler()

	body := []byte(`{"fullName":"Jane Doe","email":"jane@example.com","password":"123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	handler, repo, hasher := newAuthHandler()
	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	u := &domain.User{ID: uuid.New(), FullName: "Jane Doe", Email: "jane@example.com", PasswordHash: hash, Role: domain.RoleUser}
	repo.On("GetByEmail", mock.Anything, "jane@example.com").Return(u, nil)
	repo.On("TouchLastLogin", mock.Anything, u.ID, mock.Anything).Return(nil)

	t.Run("valid credentials", func(t *testing.T) {
		body := []byte(`{"email":"jane@example.com","password":"secret123"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "accessToken")
	})

	t.Run("wrong password", func(t *testing.T) {
		body := []byte(`{"email":"jane@example.com","password":"wrong-password"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid email or password", decodeError(t, w).Error.Message)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	handler, repo, _ := newAuthHandler()
	tokens := pkgauth.NewTokenIssuer("test-secret", time.Minute, time.Hour)
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id, Email: "jane@example.com", Role: domain.RoleUser}, nil)

	pair, err := tokens.IssuePair(id, "jane@example.com", "user")
	require.NoError(t, err)

	t.Run("refresh token", func(t *testing.T) {
		body, _ := json.Marshal(RefreshRequest{RefreshToken: pair.RefreshToken})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		body, _ := json.Marshal(RefreshRequest{RefreshToken: pair.AccessToken})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
