package dimension

import "fmt"

// ParseErrorKind classifies a malformed-input failure. The same taxonomy
// covers both the dimension file and the preset file codec.
type ParseErrorKind string

const (
	DuplicateName    ParseErrorKind = "duplicate_name"
	InvalidNumber    ParseErrorKind = "invalid_number"
	InvalidRange     ParseErrorKind = "invalid_range"
	UnrecognizedLine ParseErrorKind = "unrecognized_line"
)

// ParseError reports one malformed line. Line numbers are 1-based; Field is
// set when a specific field of a record is at fault.
type ParseError struct {
	Kind  ParseErrorKind `json:"kind"`
	Line  int            `json:"line"`
	Field string         `json:"field,omitempty"`
	Msg   string         `json:"message"`
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: %s (%s): %s", e.Line, e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Msg)
}
