package pagination

import (
	"fmt"
	"strings"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders a paginated query by a single field
type Sort struct {
	Field     string
	Direction Direction
}

// ParseDirection accepts "asc" or "desc" (case-insensitive); empty means Desc
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Desc, nil
	case string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: sortOrder must be asc or desc", ErrInvalidParams)
	}
}
