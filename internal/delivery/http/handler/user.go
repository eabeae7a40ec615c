package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/user"
)

// UserHandler handles HTTP requests for user profiles
type UserHandler struct {
	service *user.Service
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *user.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  log,
	}
}

// UpdateUserRequest represents the request body for updating a user.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Profile handles GET /api/v1/users/profile
// @Summary Get the caller's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope "User profile"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 404 {object} response.ErrorBody "User not found"
// @Router /users/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	u, err := h.service.GetByID(r.Context(), actor.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "Profile retrieved successfully", u)
}

// GetByID handles GET /api/v1/users/:id
// @Summary Get a user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} response.Envelope "User"
// @Failure 400 {object} response.ErrorBody "Invalid user ID"
// @Failure 404 {object} response.ErrorBody "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid user ID")
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "User retrieved successfully", u)
}

// Update handles PUT /api/v1/users/:id
// @Summary Update a user
// @Description Users may update themselves; admins may update anyone
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Param user body UpdateUserRequest true "Updated fields"
// @Success 200 {object} response.Envelope "User updated successfully"
// @Failure 400 {object} response.ErrorBody "Invalid request"
// @Failure 403 {object} response.ErrorBody "Not allowed to update this user"
// @Failure 404 {object} response.ErrorBody "User not found"
// @Failure 409 {object} response.ErrorBody "Email already registered"
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid user ID")
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	var req UpdateUserRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	u, err := h.service.Update(r.Context(), actor, id, user.Patch{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "User updated successfully", u)
}

// Delete handles DELETE /api/v1/users/:id
// @Summary Delete a user
// @Description Soft delete. Users may delete themselves; admins may delete anyone
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} response.Envelope "User deleted successfully"
// @Failure 403 {object} response.ErrorBody "Not allowed to delete this user"
// @Failure 404 {object} response.ErrorBody "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid user ID")
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "User deleted successfully", nil)
}

func (h *UserHandler) handleError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if errors.Is(err, domain.ErrNotFound) && !errors.As(err, &domainErr) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "User not found")
		return
	}
	response.FromError(w, err, h.logger)
}
