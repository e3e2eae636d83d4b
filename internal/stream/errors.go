package stream

import (
	"errors"
	"fmt"

	"unigps/internal/uni"
)

var (
	// ErrStreamTerminated reports a source that ended part way through a frame.
	ErrStreamTerminated = errors.New("stream: terminated unexpectedly")
	// ErrUnrecognizedHeader reports bytes that open none of the known protocols.
	ErrUnrecognizedHeader = errors.New("stream: unrecognized protocol header")
)

// TruncatedError describes a short read. Line is set when a text line
// ended without its LF terminator.
type TruncatedError struct {
	Requested int
	Returned  int
	Line      bool
}

func (e *TruncatedError) Error() string {
	if e.Line {
		return fmt.Sprintf("stream: terminated unexpectedly, line requested, %d bytes returned", e.Returned)
	}
	return fmt.Sprintf("stream: terminated unexpectedly, %d bytes requested, %d bytes returned", e.Requested, e.Returned)
}

func (e *TruncatedError) Unwrap() error { return ErrStreamTerminated }

// HeaderError carries the two bytes that failed protocol discrimination.
type HeaderError struct {
	Header []byte
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("stream: unknown protocol header %s", uni.Escape(e.Header))
}

func (e *HeaderError) Unwrap() error { return ErrUnrecognizedHeader }

// sourceError wraps a failure of the underlying reader other than EOF.
// Such failures end iteration regardless of the error mode.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

// errorKind is the metrics label for a frame error.
func errorKind(err error) string {
	switch {
	case errors.Is(err, uni.ErrFrameValidation):
		return "validation"
	case errors.Is(err, ErrStreamTerminated):
		return "truncated"
	case errors.Is(err, ErrUnrecognizedHeader):
		return "header"
	}
	return "parse"
}
