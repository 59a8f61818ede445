package http

import "github.com/pkg/errors"

// ErrTruncatedResponse is returned when the received bytes end before
// the message framing does.
var ErrTruncatedResponse = errors.New("response is truncated")

var (
	ErrStatusLineTooLong = errors.New("status line length exceeds limit")
	ErrFieldLineTooLong  = errors.New("field line length exceeds limit")
)

// MalformedStartLineError is returned when the first line of a response
// is not "<version> <code> [reason]".
type MalformedStartLineError struct {
	Line string
}

func (e *MalformedStartLineError) Error() string {
	return "malformed status line: " + e.Line
}
