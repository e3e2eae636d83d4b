package uni

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType reports a wire type tag the codec does not understand.
	ErrUnknownType = errors.New("uni: unknown attribute type")
	// ErrInvalidAttributeType reports a value that does not fit its declared wire type.
	ErrInvalidAttributeType = errors.New("uni: invalid attribute type")
	// ErrUnknownMessageType reports an identity/mode pair with no payload definition.
	ErrUnknownMessageType = errors.New("uni: unknown message type")
	// ErrFrameValidation reports a sync, length or CRC mismatch.
	ErrFrameValidation = errors.New("uni: frame validation failed")
	// ErrImmutable reports a write to a message after construction.
	ErrImmutable = errors.New("uni: message is immutable")
	// ErrInvalidMode reports a message mode outside GET/SET/POLL/SETPOLL.
	ErrInvalidMode = errors.New("uni: invalid message mode")
)

// AttributeError names the attribute that failed to encode or decode.
type AttributeError struct {
	Attr     string
	Identity string
	Mode     Mode
	Err      error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("uni: incorrect type for attribute %q in %s message class %s: %v", e.Attr, e.Mode, e.Identity, e.Err)
}

func (e *AttributeError) Unwrap() []error {
	return []error{ErrInvalidAttributeType, e.Err}
}

// FrameError carries the expected and actual values of a failed frame check.
type FrameError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("uni: invalid %s %s - should be %s", e.Field, e.Actual, e.Expected)
}

func (e *FrameError) Unwrap() error {
	return ErrFrameValidation
}
