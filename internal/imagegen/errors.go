package imagegen

import "errors"

// Kind classifies generation failures for transport mapping.
type Kind string

const (
	// KindInvalidInput is caller-caused and maps to 400.
	KindInvalidInput Kind = "invalid_input"
	// KindUpstreamFailure covers model, response-shape and write failures and maps to 500.
	KindUpstreamFailure Kind = "upstream_failure"
)

// Error is returned by Service.Generate.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func upstreamFailure(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: msg, Err: err}
}

// KindOf reports the Kind of err, defaulting to KindUpstreamFailure for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamFailure
}
