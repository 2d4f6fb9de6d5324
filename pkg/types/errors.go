package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures by how far they are allowed to propagate.
type ErrorKind string

const (
	// KindConfiguration blocks a run from starting (missing API key, bad settings).
	KindConfiguration ErrorKind = "configuration"
	// KindFetch excludes a single image from the collected set.
	KindFetch ErrorKind = "fetch"
	// KindGeneration is recovered per item with a placeholder result.
	KindGeneration ErrorKind = "generation"
	// KindChannel aborts a whole scrape because the page could not be reached.
	KindChannel ErrorKind = "channel"
)

// Error is a classified error carrying the operation that failed.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error without a cause.
func NewError(kind ErrorKind, op, message string) error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// WrapError classifies err. It returns nil for a nil err and keeps the
// classification of an error that is already an *Error.
func WrapError(kind ErrorKind, op, message string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// IsKind reports whether the first *Error in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind == kind
	}
	return false
}

// NewConfigurationError reports a missing or invalid setting.
func NewConfigurationError(op, message string) error {
	return NewError(KindConfiguration, op, message)
}

// NewFetchError reports a single image that could not be fetched or decoded.
func NewFetchError(op, src string, cause error) error {
	return WrapError(KindFetch, op, fmt.Sprintf("could not fetch image %s", src), cause)
}

// NewGenerationError reports a failed call to the generative service.
func NewGenerationError(op, model string, cause error) error {
	return WrapError(KindGeneration, op, fmt.Sprintf("prompt generation failed for model %s", model), cause)
}

// NewChannelError reports that the page could not be reached.
func NewChannelError(op string, cause error) error {
	return WrapError(KindChannel, op, "could not connect to the page; reload it and try again", cause)
}
