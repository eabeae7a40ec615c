package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, CodeNotFound, "Resource not found"},
		{"wrapped not found", fmt.Errorf("load: %w", domain.ErrNotFound), http.StatusNotFound, CodeNotFound, "Resource not found"},
		{"validation", domain.NewError(domain.ErrInvalidInput, "limit must be between 1 and 100"), http.StatusBadRequest, CodeValidation, "limit must be between 1 and 100"},
		{"conflict", domain.NewError(domain.ErrConflict, "like relation already exists"), http.StatusConflict, CodeConflict, "like relation already exists"},
		{"already exists", domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists, "Resource already exists"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, CodeForbidden, "Forbidden"},
		{"internal hides detail", errors.New("pq: password authentication failed"), http.StatusInternalServerError, CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			FromError(w, tt.err, logger.New("test"))

			assert.Equal(t, tt.wantStatus, w.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
		})
	}
}

func TestPaginated_EmptyItemsSerializeAsArray(t *testing.T) {
	w := httptest.NewRecorder()

	Paginated(w, "Products retrieved", &pagination.Page[string]{
		Items:      []string{},
		Pagination: pagination.NewMeta(1, 10, 0),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"message": "Products retrieved",
		"data": [],
		"pagination": {"page":1,"limit":10,"totalItems":0,"totalPages":0,"hasNext":false,"hasPrevious":false}
	}`, w.Body.String())
}
