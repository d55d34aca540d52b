package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrRateLimited     = errors.New("rate limited")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrExpired         = errors.New("expired")

	ErrTemplateNotFound = errors.New("template not found")
	ErrPDFRender        = errors.New("pdf render failed")

	// Provider-side delivery failures.
	ErrEmailDelivery = errors.New("email delivery failed")
	ErrSMSDelivery   = errors.New("sms delivery failed")
	ErrProviderAuth  = errors.New("provider authorization failed")
	ErrSuppressed    = errors.New("destination has opted out")

	// ErrStorage is fatal everywhere except the rate limiter, which treats it
	// as fail-open.
	ErrStorage = errors.New("storage error")
)

// Public attaches the exact client-facing message to one or more causes
// (typically a sentinel, optionally the provider error behind it). Error()
// returns only that message; the causes stay matchable through errors.Is and
// errors.As but never reach a response body.
func Public(msg string, causes ...error) error {
	return &publicError{msg: msg, causes: causes}
}

type publicError struct {
	msg    string
	causes []error
}

func (e *publicError) Error() string { return e.msg }

func (e *publicError) Unwrap() []error { return e.causes }
