package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// ParseQuery reads page and limit from the query string. Missing values take
// the defaults; malformed or out-of-range values are rejected rather than
// clamped.
func ParseQuery(r *http.Request) (Params, error) {
	params := Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	q := r.URL.Query()

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return params, fmt.Errorf("%w: page must be a positive integer", ErrInvalidParams)
		}
		params.Page = page
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParams, MaxLimit)
		}
		params.Limit = limit
	}

	return params, params.Validate()
}
