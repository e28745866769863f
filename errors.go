// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is reported when the parser is used in a way its
	// current state does not permit.
	ErrInvalidState = errors.New("invalid parser state")

	// ErrClosed is reported by Feed and Close after the parser has finished,
	// either because the document ended or because parsing failed.
	ErrClosed = fmt.Errorf("%w: parser is closed", ErrInvalidState)

	// ErrUnsupportedPath is reported by ParsePath for path syntax that does
	// not denote an exact sequence of object keys.
	ErrUnsupportedPath = errors.New("unsupported path syntax")
)

// SyntaxError is the concrete type of errors reported for malformed input.
type SyntaxError struct {
	Location LineCol // where the error was detected
	Offset   int     // byte offset of the error from the start of input
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
