package ledger

import "fmt"

// ParseError reports a malformed or unsupported ledger spreadsheet. The
// message names the offending condition and, where useful, the raw headers.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func newParseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}
