// Package verification issues and validates short-lived one-time codes over
// email and SMS, with per-contact rate limiting, attempt bounding, and a
// compensating delete when dispatch fails after the code was written.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/expertresume/notification-api/internal/application/email"
	"github.com/expertresume/notification-api/internal/domain"
	"github.com/expertresume/notification-api/internal/pkg/contact"
)

// RateLimitMessage is the user-facing 429 body for the resend window.
const RateLimitMessage = "Please wait 1 minute before requesting another code"

var codeRe = regexp.MustCompile(`^\d{6}$`)

type Request struct {
	Type    string `json:"type" validate:"required"`
	Value   string `json:"value" validate:"required"`
	Purpose string `json:"purpose"`
}

type Result struct {
	Message   string
	ExpiresIn int // seconds
}

type VerifyRequest struct {
	Type  string `json:"type" validate:"required"`
	Value string `json:"value" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type VerifyResult struct {
	Verified bool
	Message  string
	Contact  string
	Channel  string
}

type Service interface {
	Request(ctx context.Context, req Request) (*Result, error)
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
}

// CodeStore persists verification-code records under their deterministic key.
type CodeStore interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	Get(ctx context.Context, docID string) (*domain.VerificationCode, error)
	Delete(ctx context.Context, docID string) error
	Update(ctx context.Context, docID string, updates map[string]interface{}) error
}

// SMSSender delivers the code over SMS.
type SMSSender interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
}

// EmailSender delivers the code over email through the template pipeline.
type EmailSender interface {
	Send(ctx context.Context, req email.SendRequest) (*email.SendResult, error)
}

type ServiceDeps struct {
	Codes CodeStore
	SMS   SMSSender
	Email EmailSender

	// FailClosed flips the rate limiter's storage-error policy. The default
	// (false) is fail-open: an unreadable rate-limit record allows the
	// request, trading strict throttling for availability.
	FailClosed bool
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

// Request issues a code and dispatches it over the requested channel.
// Exactly one store write and at most one compensating delete per call.
func (s *service) Request(ctx context.Context, req Request) (*Result, error) {
	channel, value, err := normalizeContact(req.Type, req.Value)
	if err != nil {
		return nil, err
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = domain.DefaultPurpose
	}

	docID := domain.VerificationDocID(channel, keyContact(channel, value))
	if err := s.checkRateLimit(ctx, docID); err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := &domain.VerificationCode{
		DocID:       docID,
		Contact:     value,
		Channel:     channel,
		Code:        code,
		Purpose:     purpose,
		CreatedAt:   now.UnixMilli(),
		ExpiresAt:   now.Add(domain.CodeTTL).UnixMilli(),
		Verified:    false,
		Attempts:    0,
		MaxAttempts: domain.MaxVerifyAttempts,
	}
	if err := s.deps.Codes.Put(ctx, v); err != nil {
		return nil, err
	}

	if err := s.dispatch(ctx, channel, value, code, purpose); err != nil {
		// Compensating delete: a user must never be left holding a stored
		// code that was never delivered.
		if delErr := s.deps.Codes.Delete(ctx, docID); delErr != nil {
			slog.Error("compensating delete failed", "doc_id", docID, "err", delErr)
		}
		return nil, err
	}

	return &Result{
		Message:   fmt.Sprintf("Verification code sent successfully via %s", channel),
		ExpiresIn: int(domain.CodeTTL / time.Second),
	}, nil
}

func (s *service) dispatch(ctx context.Context, channel, value, code, purpose string) error {
	switch channel {
	case domain.ChannelSMS:
		if s.deps.SMS == nil {
			return domain.Public("sms delivery is not configured", domain.ErrSMSDelivery)
		}
		if err := s.deps.SMS.SendVerificationCode(ctx, value, code); err != nil {
			return err
		}
	case domain.ChannelEmail:
		res, err := s.deps.Email.Send(ctx, email.SendRequest{
			TemplateID: "verification",
			Email:      value,
			Data: map[string]interface{}{
				"code":    code,
				"email":   value,
				"purpose": purpose,
			},
		})
		if err != nil {
			return err
		}
		// A suppressed recipient is a successful no-op for the email
		// pipeline but a delivery failure here: the caller must not be
		// told a code was sent when nothing went out.
		if res.Skipped {
			return domain.Public("this email address has unsubscribed from notifications", domain.ErrSuppressed)
		}
	}
	return nil
}

// checkRateLimit rejects a request when the current record for the key was
// created inside the resend window. Storage errors fail open unless
// FailClosed is set — an explicit availability-over-strictness policy, not a
// swallowed bug. The check and the later write are not atomic; two
// near-simultaneous requests can both pass and the second overwrites the
// first (documented trade-off).
func (s *service) checkRateLimit(ctx context.Context, docID string) error {
	existing, err := s.deps.Codes.Get(ctx, docID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		if s.deps.FailClosed {
			return err
		}
		slog.Warn("rate limit check failed, allowing request", "doc_id", docID, "err", err)
		return nil
	}
	if time.Now().UnixMilli()-existing.CreatedAt < domain.ResendWindow.Milliseconds() {
		return domain.Public(RateLimitMessage, domain.ErrRateLimited)
	}
	return nil
}

// Verify consumes a code: lazy expiry, attempt bounding, idempotent success.
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	channel, err := normalizeChannel(req.Type)
	if err != nil {
		return nil, err
	}
	if !codeRe.MatchString(req.Code) {
		return nil, domain.Public("code must be a 6-digit number", domain.ErrBadRequest)
	}

	value := req.Value
	if channel == domain.ChannelSMS {
		value = contact.NormalizeForKey(value)
	}

	docID, v, err := s.lookup(ctx, channel, value)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if v.Expired(now) {
		// Verify-time reads clean up what lazy expiry left behind.
		if delErr := s.deps.Codes.Delete(ctx, docID); delErr != nil {
			slog.Warn("could not delete expired code", "doc_id", docID, "err", delErr)
		}
		return nil, domain.Public("verification code has expired, request a new code", domain.ErrExpired)
	}

	if v.Verified {
		return &VerifyResult{Verified: true, Message: "Already verified", Contact: req.Value, Channel: channel}, nil
	}

	attempts := v.Attempts + 1
	maxAttempts := v.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = domain.MaxVerifyAttempts
	}
	if attempts > maxAttempts {
		if delErr := s.deps.Codes.Delete(ctx, docID); delErr != nil {
			slog.Warn("could not delete exhausted code", "doc_id", docID, "err", delErr)
		}
		return nil, domain.Public("too many failed attempts, request a new code", domain.ErrTooManyAttempts)
	}

	if err := s.deps.Codes.Update(ctx, docID, map[string]interface{}{
		"attempts":     attempts,
		"last_attempt": now.UnixMilli(),
	}); err != nil {
		return nil, err
	}

	if v.Code != req.Code {
		remaining := maxAttempts - attempts
		return nil, domain.Public(fmt.Sprintf("invalid verification code, %d attempts remaining", remaining), domain.ErrBadRequest)
	}

	if err := s.deps.Codes.Update(ctx, docID, map[string]interface{}{
		"verified":    true,
		"verified_at": now.UnixMilli(),
	}); err != nil {
		return nil, err
	}

	return &VerifyResult{Verified: true, Message: "Verification successful", Contact: req.Value, Channel: channel}, nil
}

// lookup tries the current key first, then the legacy key shapes older
// clients wrote (bare contact, channel-prefixed alternatives). Migration-era
// behavior: the chain can be dropped once pre-prefix records have aged out.
// A hit is returned only while unexpired records are distinguishable — expiry
// itself is checked by the caller so it can clean up.
func (s *service) lookup(ctx context.Context, channel, value string) (string, *domain.VerificationCode, error) {
	primary := domain.VerificationDocID(channel, value)
	candidates := []string{
		primary,
		value,
		domain.VerificationDocID(domain.ChannelEmail, value),
		domain.VerificationDocID(domain.ChannelSMS, value),
	}
	seen := make(map[string]bool, len(candidates))
	for _, docID := range candidates {
		if seen[docID] {
			continue
		}
		seen[docID] = true
		v, err := s.deps.Codes.Get(ctx, docID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", nil, err
		}
		return docID, v, nil
	}
	return "", nil, domain.Public("no verification code found, request a new code", domain.ErrNotFound)
}

// normalizeContact maps the accepted {email|phone|sms} tag to the internal
// channel enum and canonicalizes the contact value.
func normalizeContact(typ, value string) (channel, normalized string, err error) {
	channel, err = normalizeChannel(typ)
	if err != nil {
		return "", "", err
	}
	switch channel {
	case domain.ChannelSMS:
		normalized, err = contact.NormalizePhone(value)
		if err != nil {
			return "", "", err
		}
		if !contact.IsValidPhone(normalized) {
			return "", "", domain.Public("invalid phone number format", domain.ErrInvalidFormat)
		}
	case domain.ChannelEmail:
		if !contact.IsValidEmail(value) {
			return "", "", domain.Public("invalid email format", domain.ErrInvalidFormat)
		}
		normalized = value
	}
	return channel, normalized, nil
}

func normalizeChannel(typ string) (string, error) {
	if typ == "phone" {
		typ = domain.ChannelSMS
	}
	if typ != domain.ChannelEmail && typ != domain.ChannelSMS {
		return "", domain.Public(`type must be either "email" or "phone/sms"`, domain.ErrBadRequest)
	}
	return typ, nil
}

// keyContact is the contact form used for key derivation. Phones are already
// canonical 10-digit strings here; emails are used as-is.
func keyContact(channel, value string) string {
	if channel == domain.ChannelSMS {
		return contact.NormalizeForKey(value)
	}
	return value
}

// generateCode returns a uniform 6-digit numeric code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
