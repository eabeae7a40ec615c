package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/like"
)

// LikeHandler handles HTTP requests for product likes
type LikeHandler struct {
	service *like.Service
	logger  *logger.Logger
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(service *like.Service, log *logger.Logger) *LikeHandler {
	return &LikeHandler{
		service: service,
		logger:  log,
	}
}

// Toggle handles POST /api/v1/products/:id/like
// @Summary Like or unlike a product
// @Description Likes the product if the caller has not liked it yet, unlikes it otherwise
// @Tags Likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} response.Envelope "Toggle result with fresh like count"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 409 {object} response.ErrorBody "Concurrent like already exists"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id}/like [post]
func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid product ID")
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	result, err := h.service.Toggle(r.Context(), id, actor.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	message := "Product unliked"
	if result.Liked {
		message = "Product liked"
	}
	response.Success(w, message, result)
}

// Likes handles GET /api/v1/products/:id/likes
// @Summary Get like count of a product
// @Description Returns the like count; includes whether the caller likes the product when authenticated
// @Tags Likes
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} response.Envelope "Like summary"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id}/likes [get]
func (h *LikeHandler) Likes(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid product ID")
		return
	}

	summary, err := h.service.Summary(r.Context(), id, viewerFrom(r))
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "Likes retrieved successfully", summary)
}

func (h *LikeHandler) handleError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if errors.Is(err, domain.ErrNotFound) && !errors.As(err, &domainErr) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "Product not found")
		return
	}
	response.FromError(w, err, h.logger)
}
