package handler

import (
	"net/http"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/auth"
)

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	service *auth.Service
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *auth.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  log,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	FullName string `json:"fullName" example:"Jane Doe"`
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"secret123"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"secret123"`
}

// RefreshRequest represents the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} response.Envelope "User and tokens"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 409 {object} response.ErrorBody "Email already registered"
// @Failure 429 {object} response.ErrorBody "Too many requests"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	session, err := h.service.Register(r.Context(), auth.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.FromError(w, err, h.logger)
		return
	}

	response.Created(w, "User registered successfully", session)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope "User and tokens"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 401 {object} response.ErrorBody "Invalid email or password"
// @Failure 429 {object} response.ErrorBody "Too many requests"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	session, err := h.service.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.FromError(w, err, h.logger)
		return
	}

	response.Success(w, "Login successful", session)
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Refresh the access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Envelope "New access token"
// @Failure 401 {object} response.ErrorBody "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := request.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "refreshToken is required")
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(w, err, h.logger)
		return
	}

	response.Success(w, "Token refreshed successfully", tokens)
}
