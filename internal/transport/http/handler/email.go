package handler

import (
	"encoding/json"
	"net/http"

	"github.com/expertresume/notification-api/internal/application/email"
	"github.com/expertresume/notification-api/internal/pkg/validate"
)

// EmailHandler handles transactional email dispatch.
type EmailHandler struct {
	svc email.Service
}

func NewEmailHandler(svc email.Service) *EmailHandler {
	return &EmailHandler{svc: svc}
}

func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req email.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, EmailEnvelope{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, EmailEnvelope{Error: "templateId is required"})
		return
	}
	result, err := h.svc.Send(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), EmailEnvelope{
			Error:   "Failed to send email",
			Details: clientError(err),
		})
		return
	}
	if result.Skipped {
		writeJSON(w, http.StatusOK, EmailEnvelope{Message: result.Message})
		return
	}
	writeJSON(w, http.StatusOK, EmailEnvelope{
		Message:      result.Message,
		SESMessageID: result.MessageID,
	})
}
