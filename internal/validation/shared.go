package validation

import (
	"fmt"
	"slices"
	"strings"
)

// Error carries one message per invalid request field. Handlers return the
// map as the "details" of a 400 response.
type Error struct {
	Fields map[string]string
}

// Error lists the fields in name order so the text is stable across runs.
func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	slices.Sort(names)

	msgs := make([]string, 0, len(names))
	for _, field := range names {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
