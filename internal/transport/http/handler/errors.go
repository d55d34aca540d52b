package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/expertresume/notification-api/internal/domain"
)

// statusFor maps domain sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrEmailDelivery), errors.Is(err, domain.ErrSMSDelivery),
		errors.Is(err, domain.ErrProviderAuth), errors.Is(err, domain.ErrSuppressed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// clientError is the response-body form of a service error. Unclassified
// errors (storage faults, SDK failures) get a generic body; their detail
// belongs in the server log, not the response.
func clientError(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		return "internal server error"
	}
	return err.Error()
}
