package domain

import (
	"strings"
	"time"
)

// Verification channels. Handlers accept "phone" as an alias for "sms".
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	// DefaultPurpose is recorded when the caller does not supply one.
	DefaultPurpose = "verification"

	// CodeTTL is the lifetime of an issued code.
	CodeTTL = 10 * time.Minute

	// ResendWindow is the minimum interval between two issuances for the
	// same (channel, contact).
	ResendWindow = time.Minute

	// MaxVerifyAttempts bounds how many times a code may be checked before
	// the record is destroyed.
	MaxVerifyAttempts = 3
)

// VerificationCode is a short-lived one-time code issued over email or SMS.
// PK: doc_id — deterministic per (channel, contact), so a new issuance
// overwrites the prior record and at most one live code exists per key.
// Timestamps are epoch milliseconds. Expiry is lazy: expired records are only
// detected on read, never evicted by a background job.
type VerificationCode struct {
	DocID       string `json:"-" dynamodbav:"doc_id"`
	Contact     string `json:"contact" dynamodbav:"contact"`
	Channel     string `json:"type" dynamodbav:"channel"`
	Code        string `json:"code" dynamodbav:"code"`
	Purpose     string `json:"purpose" dynamodbav:"purpose"`
	CreatedAt   int64  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt   int64  `json:"expires_at" dynamodbav:"expires_at"`
	Verified    bool   `json:"verified" dynamodbav:"verified"`
	VerifiedAt  int64  `json:"verified_at,omitempty" dynamodbav:"verified_at,omitempty"`
	Attempts    int    `json:"attempts" dynamodbav:"attempts"`
	MaxAttempts int    `json:"max_attempts" dynamodbav:"max_attempts"`
	LastAttempt int64  `json:"last_attempt,omitempty" dynamodbav:"last_attempt,omitempty"`
}

var docIDSanitizer = strings.NewReplacer("@", "_", "+", "_", " ", "_")

// VerificationDocID derives the deterministic store key for a (channel,
// normalized contact) pair: "{channel}_{contact with @ + space → _}".
func VerificationDocID(channel, contact string) string {
	return channel + "_" + docIDSanitizer.Replace(contact)
}

// Expired reports whether the code is past its expiry at the given instant.
func (v *VerificationCode) Expired(now time.Time) bool {
	return v.ExpiresAt != 0 && now.UnixMilli() > v.ExpiresAt
}
