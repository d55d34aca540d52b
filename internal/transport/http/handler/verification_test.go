package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/expertresume/notification-api/internal/application/verification"
	"github.com/expertresume/notification-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) Request(ctx context.Context, req verification.Request) (*verification.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*verification.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationSvc) Verify(ctx context.Context, req verification.VerifyRequest) (*verification.VerifyResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*verification.VerifyResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Request ---

func TestRequestHandler_InvalidBody(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{})
	req := httptest.NewRequest(http.MethodPost, "/v1/verification-codes", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestHandler_MissingFields(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{})
	rec := postJSON(t, h.Request, "/v1/verification-codes", map[string]string{"type": "email"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env VerificationEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestRequestHandler_Success(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Request", mock.Anything, verification.Request{Type: "email", Value: "a@b.com"}).
		Return(&verification.Result{
			Message:   "Verification code sent successfully via email",
			ExpiresIn: 600,
		}, nil)

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Request, "/v1/verification-codes", map[string]string{"type": "email", "value": "a@b.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var env VerificationEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Verification code sent successfully via email", env.Message)
	assert.Equal(t, 600, env.ExpiresIn)
}

func TestRequestHandler_RateLimited_ExactBody(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Request", mock.Anything, mock.Anything).
		Return(nil, domain.Public(verification.RateLimitMessage, domain.ErrRateLimited))

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Request, "/v1/verification-codes", map[string]string{"type": "email", "value": "a@b.com"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var env VerificationEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, verification.RateLimitMessage, env.Error)
}

func TestRequestHandler_ProviderDetailStaysOutOfBody(t *testing.T) {
	cause := errors.New("operation error SNS: Publish, https response error StatusCode: 403, RequestID: abc-123")
	svc := &mockVerificationSvc{}
	svc.On("Request", mock.Anything, mock.Anything).
		Return(nil, domain.Public("sms delivery failed", domain.ErrSMSDelivery, cause))

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Request, "/v1/verification-codes", map[string]string{"type": "phone", "value": "9876543210"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var env VerificationEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "sms delivery failed", env.Error)
	assert.NotContains(t, rec.Body.String(), "RequestID")
}

func TestRequestHandler_StorageError_GenericBody(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Request", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("put verification code: %w", errors.New("dynamo: table missing")))

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Request, "/v1/verification-codes", map[string]string{"type": "email", "value": "a@b.com"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var env VerificationEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "internal server error", env.Error)
	assert.NotContains(t, rec.Body.String(), "dynamo")
}

func TestRequestHandler_DeliveryFailure_BadGateway(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Request", mock.Anything, mock.Anything).Return(nil, domain.ErrSMSDelivery)

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Request, "/v1/verification-codes", map[string]string{"type": "phone", "value": "9876543210"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// --- Verify ---

func TestVerifyHandler_Success(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Verify", mock.Anything, verification.VerifyRequest{Type: "email", Value: "a@b.com", Code: "123456"}).
		Return(&verification.VerifyResult{Verified: true, Message: "Verification successful"}, nil)

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Verify, "/v1/verification-codes/verify",
		map[string]string{"type": "email", "value": "a@b.com", "code": "123456"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var env VerificationEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.True(t, env.Verified)
}

func TestVerifyHandler_Expired_Gone(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Verify", mock.Anything, mock.Anything).Return(nil, domain.ErrExpired)

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Verify, "/v1/verification-codes/verify",
		map[string]string{"type": "email", "value": "a@b.com", "code": "123456"})

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestVerifyHandler_NotFound(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Verify", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	h := NewVerificationHandler(svc)
	rec := postJSON(t, h.Verify, "/v1/verification-codes/verify",
		map[string]string{"type": "email", "value": "a@b.com", "code": "123456"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Describe ---

func TestDescribe_ListsChannels(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{})
	req := httptest.NewRequest(http.MethodGet, "/v1/verification-codes", nil)
	rec := httptest.NewRecorder()
	h.Describe(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []interface{}{"email", "sms"}, body["channels"])
	assert.Equal(t, float64(600), body["expirySeconds"])
}
