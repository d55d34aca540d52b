package domain

import "time"

// Email delivery outcomes recorded for audit.
const (
	EmailStatusSent    = "sent"
	EmailStatusSkipped = "skipped"
	EmailStatusFailed  = "failed"
)

// EmailLog is an append-only audit record of one send attempt.
// Never mutated or deleted by this service.
type EmailLog struct {
	LogID          string    `json:"id" dynamodbav:"log_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	RecipientEmail string    `json:"recipient_email" dynamodbav:"recipient_email"`
	TemplateID     string    `json:"template_id" dynamodbav:"template_id"`
	Status         string    `json:"status" dynamodbav:"status"`
	Reason         string    `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	SESMessageID   string    `json:"ses_message_id,omitempty" dynamodbav:"ses_message_id,omitempty"`
	HasAttachment  bool      `json:"has_attachment" dynamodbav:"has_attachment"`
	Timestamp      time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// UnsubscribeRecord marks an address as suppressed. Existence alone is the
// signal; no payload beyond identity.
type UnsubscribeRecord struct {
	Email     string    `json:"email" dynamodbav:"email"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
