package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name        string          `json:"name" example:"Wireless Headphones"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"199.99"`
	Category    string          `json:"category" example:"Electronics"`
	Subcategory *string         `json:"subcategory,omitempty" example:"Audio"`
}

// UpdateProductRequest represents the request body for updating a product.
// Omitted fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	Category    *string          `json:"category,omitempty"`
	Subcategory *string          `json:"subcategory,omitempty"`
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Create a new product with name, description, price and category
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body CreateProductRequest true "Product details"
// @Success 201 {object} response.Envelope "Product created successfully"
// @Failure 400 {object} response.ErrorBody "Invalid request body"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	p := &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		Subcategory: req.Subcategory,
	}

	if err := h.service.Create(r.Context(), p); err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, "Product created successfully", p)
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get a product including its like count
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} response.Envelope "Product details"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid product ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "Product retrieved successfully", p)
}

// List handles GET /api/v1/products
// @Summary List products
// @Description Get a filtered, sorted, paginated list of products
// @Tags Products
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Case-insensitive name search"
// @Param category query string false "Category"
// @Param subcategory query string false "Subcategory"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, price, category, likeCount) default(createdAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc) default(desc)
// @Param includeDeleted query bool false "Include soft-deleted products (admin only)"
// @Success 200 {object} response.Envelope "Paginated list of products"
// @Failure 400 {object} response.ErrorBody "Invalid query parameters"
// @Failure 403 {object} response.ErrorBody "includeDeleted requires admin"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	h.list(w, r, query)
}

// Search handles GET /api/v1/products/search
// @Summary Search products
// @Description Search products by name. Accepts the same paging and sorting parameters as the list endpoint.
// @Tags Products
// @Produce json
// @Param q query string true "Search text"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Success 200 {object} response.Envelope "Paginated list of products"
// @Failure 400 {object} response.ErrorBody "Missing or invalid query parameters"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/search [get]
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "q is required")
		return
	}

	query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	query.Search = q

	h.list(w, r, query)
}

func (h *ProductHandler) parseQuery(w http.ResponseWriter, r *http.Request) (product.Query, bool) {
	params, err := pagination.ParseQuery(r)
	if err != nil {
		h.handleError(w, domain.NewError(domain.ErrInvalidInput, "%s", strings.TrimPrefix(err.Error(), pagination.ErrInvalidParams.Error()+": ")))
		return product.Query{}, false
	}

	includeDeleted, err := request.GetBoolQuery(r, "includeDeleted")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return product.Query{}, false
	}
	if includeDeleted {
		actor, ok := actorFrom(r)
		if !ok || actor.Role != domain.RoleAdmin {
			response.Error(w, http.StatusForbidden, response.CodeForbidden, "includeDeleted requires admin role")
			return product.Query{}, false
		}
	}

	q := r.URL.Query()
	return product.Query{
		Page:           params.Page,
		Limit:          params.Limit,
		Search:         q.Get("search"),
		Category:       q.Get("category"),
		Subcategory:    q.Get("subcategory"),
		SortBy:         q.Get("sortBy"),
		SortOrder:      q.Get("sortOrder"),
		IncludeDeleted: includeDeleted,
	}, true
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, query product.Query) {
	page, err := h.service.List(r.Context(), query)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Paginated(w, "Products retrieved successfully", page)
}

// Update handles PUT /api/v1/products/:id
// @Summary Update a product
// @Description Update product fields. Omitted fields are left unchanged.
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param product body UpdateProductRequest true "Updated product fields"
// @Success 200 {object} response.Envelope "Product updated successfully"
// @Failure 400 {object} response.ErrorBody "Invalid request"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	p, err := h.service.Update(r.Context(), id, product.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "Product updated successfully", p)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Soft delete a product. Its likes are kept.
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} response.Envelope "Product deleted successfully"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid product ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, "Product deleted successfully", nil)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if errors.Is(err, domain.ErrNotFound) && !errors.As(err, &domainErr) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "Product not found")
		return
	}
	response.FromError(w, err, h.logger)
}
