package handler

import (
	"encoding/json"
	"net/http"

	"github.com/expertresume/notification-api/internal/application/verification"
	"github.com/expertresume/notification-api/internal/domain"
	"github.com/expertresume/notification-api/internal/pkg/validate"
)

// VerificationHandler handles verification-code issuance and validation.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req verification.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerificationEnvelope{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerificationEnvelope{Error: "type and value are required"})
		return
	}
	result, err := h.svc.Request(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), VerificationEnvelope{Error: clientError(err)})
		return
	}
	writeJSON(w, http.StatusOK, VerificationEnvelope{
		Success:   true,
		Message:   result.Message,
		ExpiresIn: result.ExpiresIn,
	})
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verification.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerificationEnvelope{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerificationEnvelope{Error: "type, value and code are required"})
		return
	}
	result, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), VerificationEnvelope{Error: clientError(err)})
		return
	}
	writeJSON(w, http.StatusOK, VerificationEnvelope{
		Success:  true,
		Verified: result.Verified,
		Message:  result.Message,
	})
}

// Describe documents the issuance endpoint for interactive discovery.
func (h *VerificationHandler) Describe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Verification code API",
		"channels": []string{domain.ChannelEmail, domain.ChannelSMS},
		"usage": map[string]string{
			"request": `POST /v1/verification-codes {"type":"email|phone","value":"..."}`,
			"verify":  `POST /v1/verification-codes/verify {"type":"email|phone","value":"...","code":"123456"}`,
		},
		"expirySeconds":      int(domain.CodeTTL.Seconds()),
		"resendAfterSeconds": int(domain.ResendWindow.Seconds()),
	})
}
