package query

import "strings"

// Direction is the order of a sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is a single order-by key.
type Sort struct {
	Field     string
	Direction Direction
}

// ParseSort reads "field" (ascending) or "-field" (descending) and checks the
// field is sortable.
func ParseSort(allow AllowList, directive string) (Sort, error) {
	s := Sort{Field: directive, Direction: Asc}
	if strings.HasPrefix(directive, "-") {
		s = Sort{Field: directive[1:], Direction: Desc}
	}
	if !allow.CanSort(s.Field) {
		return Sort{}, fieldError("sort", s.Field, allow.Sortable)
	}
	return s, nil
}
