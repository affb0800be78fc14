package artgen

import (
	"errors"
	"fmt"
)

// ErrInvalidPrompt is returned when the prompt is blank.
var ErrInvalidPrompt = errors.New("Prompt cannot be empty")

// Kind classifies a generation failure by its cause.
type Kind int

const (
	KindGenerationFailure Kind = iota
	KindAuthFailure
	KindRateLimited
	KindConnectivityFailure
)

func (k Kind) String() string {
	switch k {
	case KindAuthFailure:
		return "auth_failure"
	case KindRateLimited:
		return "rate_limited"
	case KindConnectivityFailure:
		return "connectivity_failure"
	default:
		return "generation_failure"
	}
}

// Error is the only error type the real generation path returns apart from
// ErrInvalidPrompt. Message is safe to show to end users; Err holds the
// underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("artgen: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("artgen: %s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err when it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind, true
	}
	return 0, false
}

func authFailure(err error) *Error {
	return &Error{Kind: KindAuthFailure, Message: "Invalid image provider token", Err: err}
}

func rateLimited(err error) *Error {
	return &Error{Kind: KindRateLimited, Message: "Image provider rate limit exceeded, try again later", Err: err}
}

func connectivityFailure(err error) *Error {
	return &Error{Kind: KindConnectivityFailure, Message: "Could not reach the image provider", Err: err}
}

func generationFailure(err error) *Error {
	return &Error{Kind: KindGenerationFailure, Message: "Failed to generate art", Err: err}
}
