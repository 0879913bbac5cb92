package domain

import "strings"

// Field identifies one of the two address inputs of a session.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

func (f Field) Valid() bool { return f == FieldStart || f == FieldEnd }

// AddressSuggestion is one entry of a suggestion list.
// It lives until the list is replaced or a suggestion is chosen.
type AddressSuggestion struct {
	DisplayName string
	Coordinate  Coordinate
}

// NormalizeQuery gives consistent cache keys by collapsing whitespace and case.
func NormalizeQuery(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
