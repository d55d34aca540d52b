package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublic_ErrorIsOnlyTheMessage(t *testing.T) {
	cause := errors.New("operation error SNS: Publish, RequestID: abc-123")
	err := Public("sms delivery failed", ErrSMSDelivery, cause)

	assert.Equal(t, "sms delivery failed", err.Error())
	assert.NotContains(t, err.Error(), "RequestID")
}

func TestPublic_SentinelAndCauseStayMatchable(t *testing.T) {
	cause := errors.New("wire detail")
	err := Public("sms delivery failed", ErrSMSDelivery, cause)

	assert.True(t, errors.Is(err, ErrSMSDelivery))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrEmailDelivery))
}

func TestPublic_MessageOnly(t *testing.T) {
	err := Public("sms delivery is not configured", ErrSMSDelivery)
	assert.True(t, errors.Is(err, ErrSMSDelivery))
	assert.Equal(t, "sms delivery is not configured", err.Error())
}
