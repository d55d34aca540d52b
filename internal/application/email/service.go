// Package email implements the transactional email pipeline: recipient
// resolution, unsubscribe suppression, template rendering, on-demand invoice
// PDF generation, raw MIME assembly, relay delivery, and audit logging.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/expertresume/notification-api/internal/domain"
	"github.com/expertresume/notification-api/internal/infrastructure/pdf"
	"github.com/expertresume/notification-api/internal/infrastructure/ses"
	"github.com/expertresume/notification-api/internal/pkg/id"
	mail "github.com/go-mail/mail"
)

// TemplateInvoice is the one template id that triggers PDF generation.
const TemplateInvoice = "invoice"

type SendRequest struct {
	TemplateID string                 `json:"templateId" validate:"required"`
	UserID     string                 `json:"userId"`
	Email      string                 `json:"email"`
	Data       map[string]interface{} `json:"data"`
}

type SendResult struct {
	// Skipped is true for the unsubscribe-suppression path: a successful
	// no-op, not an error.
	Skipped   bool
	Message   string
	MessageID string
}

type Service interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
}

// UserStore fetches profile documents for recipient resolution.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// UnsubscribeStore consults the suppression set.
type UnsubscribeStore interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// LogStore appends audit records.
type LogStore interface {
	Append(ctx context.Context, l *domain.EmailLog) error
}

// Archiver keeps a server-side copy of generated invoices. Optional.
type Archiver interface {
	StorePDF(ctx context.Context, filename string, pdf []byte) (string, error)
}

type ServiceDeps struct {
	Users        UserStore
	Unsubscribes UnsubscribeStore
	Logs         LogStore
	Relay        ses.Relay
	PDF          pdf.Renderer
	Archive      Archiver // nil disables archival

	FromName    string
	FromAddress string
	Bcc         string
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

func (s *service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if req.TemplateID == "" {
		return nil, domain.Public("missing templateId", domain.ErrBadRequest)
	}

	// Resolve recipient and profile data. A missing profile is not fatal:
	// the explicit email and call-site data may be all we need.
	var user *domain.User
	if req.UserID != "" {
		u, err := s.deps.Users.Get(ctx, req.UserID)
		if err == nil {
			user = u
		} else {
			slog.Warn("could not fetch user profile for email", "user_id", req.UserID, "err", err)
		}
	}

	recipient := req.Email
	if recipient == "" && user != nil {
		recipient = user.Email
	}
	if recipient == "" {
		return nil, domain.Public("missing email address", domain.ErrBadRequest)
	}

	// Unsubscribe check: suppression is a successful no-op, logged for audit.
	unsubscribed, err := s.deps.Unsubscribes.Exists(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if unsubscribed {
		s.log(ctx, req, recipient, &domain.EmailLog{
			Status: domain.EmailStatusSkipped,
			Reason: "Recipient has unsubscribed",
		})
		return &SendResult{
			Skipped: true,
			Message: "Email not sent: Recipient has unsubscribed",
		}, nil
	}

	res, err := s.renderAndDeliver(ctx, req, user, recipient)
	if err != nil {
		s.log(ctx, req, recipient, &domain.EmailLog{
			Status: domain.EmailStatusFailed,
			Reason: err.Error(),
		})
		return nil, err
	}
	return res, nil
}

func (s *service) renderAndDeliver(ctx context.Context, req SendRequest, user *domain.User, recipient string) (*SendResult, error) {
	data := mergeData(user, recipient, req.Data)

	content, err := Render(req.TemplateID, data)
	if err != nil {
		return nil, err
	}

	// The invoice template is the one place a PDF is generated: render the
	// print variant, print it, then re-render the body so the emailed HTML
	// uses the web logo asset rather than the PDF one. A PDF failure aborts
	// the whole send — an invoice without its attachment is worse than a
	// retried one.
	var pdfBuf []byte
	var attachName string
	if req.TemplateID == TemplateInvoice {
		pdfData := cloneData(data)
		pdfData["isForPDF"] = true
		pdfContent, err := Render(req.TemplateID, pdfData)
		if err != nil {
			return nil, err
		}

		pdfBuf, err = s.deps.PDF.RenderPDF(ctx, pdfContent.HTML)
		if err != nil {
			return nil, err
		}

		attachName = AttachmentFilename(str(data, "planName", ""))

		webData := cloneData(data)
		webData["isForPDF"] = false
		webContent, err := Render(req.TemplateID, webData)
		if err != nil {
			return nil, err
		}
		content.HTML = webContent.HTML

		if s.deps.Archive != nil {
			if loc, err := s.deps.Archive.StorePDF(ctx, attachName, pdfBuf); err != nil {
				slog.Warn("invoice archive failed", "filename", attachName, "err", err)
			} else {
				slog.Info("invoice archived", "location", loc)
			}
		}
	}

	raw, err := s.assemble(recipient, content, attachName, pdfBuf)
	if err != nil {
		return nil, err
	}

	messageID, err := s.deps.Relay.SendRaw(ctx, raw, s.destinations(recipient))
	if err != nil {
		return nil, err
	}

	s.log(ctx, req, recipient, &domain.EmailLog{
		Status:        domain.EmailStatusSent,
		SESMessageID:  messageID,
		HasAttachment: req.TemplateID == TemplateInvoice,
	})

	return &SendResult{
		Message:   fmt.Sprintf("Email sent successfully to %s", recipient),
		MessageID: messageID,
	}, nil
}

// destinations lists the envelope recipients for a send: the visible To
// address plus the ops Bcc copy. Raw MIME writers never emit a Bcc header,
// so the copy has to ride the envelope.
func (s *service) destinations(recipient string) []string {
	d := []string{recipient}
	if s.deps.Bcc != "" {
		d = append(d, s.deps.Bcc)
	}
	return d
}

// assemble builds the raw transport message: From/To/Subject headers, a
// multipart text+html body, and the optional PDF attachment. Bcc is handled
// on the envelope, not here.
func (s *service) assemble(recipient string, content *Content, attachName string, pdfBuf []byte) ([]byte, error) {
	m := mail.NewMessage()
	m.SetAddressHeader("From", s.deps.FromAddress, s.deps.FromName)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", content.Subject)
	m.SetBody("text/plain", content.Text)
	m.AddAlternative("text/html", content.HTML)

	if pdfBuf != nil {
		m.AttachReader(attachName, bytes.NewReader(pdfBuf),
			mail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}))
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("assemble mime message: %w", err)
	}
	return buf.Bytes(), nil
}

// log appends an audit record; a logging failure never fails the send.
func (s *service) log(ctx context.Context, req SendRequest, recipient string, l *domain.EmailLog) {
	l.LogID = id.New()
	l.UserID = req.UserID
	if l.UserID == "" {
		l.UserID = "unknown"
	}
	l.RecipientEmail = recipient
	l.TemplateID = req.TemplateID
	l.Timestamp = time.Now().UTC()
	if err := s.deps.Logs.Append(ctx, l); err != nil {
		slog.Warn("could not append email log", "recipient", recipient, "status", l.Status, "err", err)
	}
}

// mergeData builds the template data bag: defaults, then profile fields,
// then call-site data, later layers winning.
func mergeData(user *domain.User, recipient string, extra map[string]interface{}) Data {
	d := Data{
		"firstName": user.FirstName(),
		"email":     recipient,
	}
	if user != nil {
		d["name"] = user.Name
		if user.Plan != "" {
			d["plan"] = user.Plan
		}
	}
	for k, v := range extra {
		d[k] = v
	}
	return d
}

func cloneData(d Data) Data {
	out := make(Data, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}
