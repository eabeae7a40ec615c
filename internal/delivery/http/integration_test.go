//go:build integration

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/config"
	"github.com/Pesokrava/product_catalog/internal/delivery/events"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/handler"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/cache"
	"github.com/Pesokrava/product_catalog/internal/pkg/database"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/product_catalog/internal/repository/cache"
	"github.com/Pesokrava/product_catalog/internal/repository/postgres"
	authusecase "github.com/Pesokrava/product_catalog/internal/usecase/auth"
	"github.com/Pesokrava/product_catalog/internal/usecase/like"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
	"github.com/Pesokrava/product_catalog/internal/usecase/user"
)

// setupTestServer wires the full stack against the Postgres and Redis
// configured in the environment
func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.New(cfg.Env)

	db, err := database.WaitForDB(cfg, log, 5, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	redisClient, err := cache.WaitForRedis(cfg, log, 5, 2*time.Second)
	require.NoError(t, err)

	coherence := cacheRepo.NewCoherence(cacheRepo.NewRedisStore(redisClient), log)
	t.Cleanup(func() { _ = coherence.Close() })

	publisher := events.NewNoopPublisher(log)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	productRepo := postgres.NewProductRepository(db)
	likeRepo := postgres.NewLikeRepository(db)
	userRepo := postgres.NewUserRepository(db)

	handlers := Handlers{
		Product: handler.NewProductHandler(product.NewService(productRepo, coherence, publisher, time.Minute, log), log),
		Like:    handler.NewLikeHandler(like.NewService(productRepo, likeRepo, coherence, publisher, time.Minute, log), log),
		User:    handler.NewUserHandler(user.NewService(userRepo, hasher, log), log),
		Auth:    handler.NewAuthHandler(authusecase.NewService(userRepo, hasher, tokens, log), log),
	}

	limiter := middleware.NewRateLimiter(context.Background(), 1000, 1000, time.Minute, time.Minute)
	t.Cleanup(limiter.Shutdown)

	return NewRouter(handlers, tokens, userRepo, limiter, cfg, log).Setup()
}

type envelope struct {
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page        int  `json:"page"`
		TotalItems  int  `json:"totalItems"`
		TotalPages  int  `json:"totalPages"`
		HasNext     bool `json:"hasNext"`
		HasPrevious bool `json:"hasPrevious"`
	} `json:"pagination"`
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func registerUser(t *testing.T, router http.Handler) string {
	t.Helper()

	w, env := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"fullName": "Integration User",
		"email":    fmt.Sprintf("it-%s@example.com", uuid.NewString()),
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.AccessToken
}

func createProducts(t *testing.T, router http.Handler, token, category string, n int) []uuid.UUID {
	t.Helper()

	ids := make([]uuid.UUID, 0, n)
	for i := range n {
		w, env := doRequest(t, router, http.MethodPost, "/api/v1/products", token, map[string]any{
			"name":     fmt.Sprintf("Product %02d", i),
			"price":    "10.00",
			"category": category,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var p struct {
			ID uuid.UUID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &p))
		ids = append(ids, p.ID)
	}
	return ids
}

func TestIntegration_PaginationWindows(t *testing.T) {
	router := setupTestServer(t)
	token := registerUser(t, router)
	category := "it-" + uuid.NewString()
	createProducts(t, router, token, category, 25)

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/products?page=1&limit=10&category="+category, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 10)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasNext)
	assert.False(t, env.Pagination.HasPrevious)

	w, env = doRequest(t, router, http.MethodGet, "/api/v1/products?page=3&limit=10&category="+category, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 5)
	assert.False(t, env.Pagination.HasNext)
	assert.True(t, env.Pagination.HasPrevious)

	w, env = doRequest(t, router, http.MethodGet, "/api/v1/products?page=4&limit=10&category="+category, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Empty(t, items)
	assert.False(t, env.Pagination.HasNext)
}

func TestIntegration_EmptySearch(t *testing.T) {
	router := setupTestServer(t)

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/products/search?q="+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, 0, env.Pagination.TotalPages)
	assert.False(t, env.Pagination.HasNext)
	assert.False(t, env.Pagination.HasPrevious)
}

func TestIntegration_ToggleLikeAndCacheFreshness(t *testing.T) {
	router := setupTestServer(t)
	token := registerUser(t, router)
	category := "it-" + uuid.NewString()
	productID := createProducts(t, router, token, category, 1)[0]
	listPath := "/api/v1/products?category=" + category

	likeCount := func() int {
		w, env := doRequest(t, router, http.MethodGet, listPath, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var items []struct {
			LikeCount int `json:"likeCount"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		return items[0].LikeCount
	}

	// prime the page cache
	assert.Equal(t, 0, likeCount())

	togglePath := "/api/v1/products/" + productID.String() + "/like"
	w, env := doRequest(t, router, http.MethodPost, togglePath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"totalLikes":1}`, string(env.Data))
	assert.Equal(t, 1, likeCount())

	w, env = doRequest(t, router, http.MethodPost, togglePath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":false,"totalLikes":0}`, string(env.Data))
	assert.Equal(t, 0, likeCount())
}

func TestIntegration_ConcurrentTogglesKeepOneRelation(t *testing.T) {
	router := setupTestServer(t)
	token := registerUser(t, router)
	productID := createProducts(t, router, token, "it-"+uuid.NewString(), 1)[0]
	togglePath := "/api/v1/products/" + productID.String() + "/like"

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, _ := doRequest(t, router, http.MethodPost, togglePath, token, nil)
			codes[i] = w.Code
		}()
	}
	wg.Wait()

	_, env := doRequest(t, router, http.MethodGet, "/api/v1/products/"+productID.String()+"/likes", "", nil)
	var summary struct {
		TotalLikes int `json:"totalLikes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.LessOrEqual(t, summary.TotalLikes, 1)
	for _, code := range codes {
		assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, code)
	}
}

func TestIntegration_LikeRequiresAuthentication(t *testing.T) {
	router := setupTestServer(t)

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
