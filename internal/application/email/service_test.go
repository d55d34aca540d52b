package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/expertresume/notification-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUnsubscribeStore struct{ mock.Mock }

func (m *mockUnsubscribeStore) Exists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockLogStore struct{ mock.Mock }

func (m *mockLogStore) Append(ctx context.Context, l *domain.EmailLog) error {
	return m.Called(ctx, l).Error(0)
}

type mockRelay struct{ mock.Mock }

func (m *mockRelay) SendRaw(ctx context.Context, raw []byte, destinations []string) (string, error) {
	args := m.Called(ctx, raw, destinations)
	return args.String(0), args.Error(1)
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if b, _ := args.Get(0).([]byte); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) StorePDF(ctx context.Context, filename string, pdf []byte) (string, error) {
	args := m.Called(ctx, filename, pdf)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newTestService(us *mockUserStore, un *mockUnsubscribeStore, ls *mockLogStore, rl *mockRelay, rd *mockRenderer, ar *mockArchiver) Service {
	deps := ServiceDeps{
		Users:        us,
		Unsubscribes: un,
		Logs:         ls,
		FromName:     "ExpertResume",
		FromAddress:  "support@expertresume.us",
		Bcc:          "ops@expertresume.us",
	}
	if rl != nil {
		deps.Relay = rl
	}
	if rd != nil {
		deps.PDF = rd
	}
	if ar != nil {
		deps.Archive = ar
	}
	return NewService(deps)
}

func logMatching(status string) interface{} {
	return mock.MatchedBy(func(l *domain.EmailLog) bool {
		return l.Status == status
	})
}

// --- Send ---

func TestSend_MissingTemplateID_ReturnsBadRequest(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil, nil)
	_, err := svc.Send(context.Background(), SendRequest{Email: "a@b.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSend_NoRecipient_ReturnsBadRequest(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	svc := newTestService(us, nil, nil, nil, nil, nil)
	_, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", UserID: "u1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSend_Unsubscribed_SkipsAndLogs(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}

	un.On("Exists", mock.Anything, "a@b.com").Return(true, nil)
	ls.On("Append", mock.Anything, logMatching(domain.EmailStatusSkipped)).Return(nil)

	svc := newTestService(nil, un, ls, rl, nil, nil)
	result, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", Email: "a@b.com"})

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "Email not sent: Recipient has unsubscribed", result.Message)
	rl.AssertNotCalled(t, "SendRaw", mock.Anything, mock.Anything, mock.Anything)
	ls.AssertExpectations(t)
}

func TestSend_UnknownTemplate_LogsFailed(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	ls.On("Append", mock.Anything, logMatching(domain.EmailStatusFailed)).Return(nil)

	svc := newTestService(nil, un, ls, nil, nil, nil)
	_, err := svc.Send(context.Background(), SendRequest{TemplateID: "nope", Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTemplateNotFound))
	ls.AssertExpectations(t)
}

func TestSend_PlainTemplate_DeliversWithoutAttachment(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	// The ops copy travels on the envelope only: the raw message must not
	// carry a Bcc header a downstream hop could expose.
	rl.On("SendRaw", mock.Anything, mock.MatchedBy(func(raw []byte) bool {
		s := string(raw)
		return !strings.Contains(s, "application/pdf") &&
			strings.Contains(s, "To: a@b.com") &&
			!strings.Contains(s, "ops@expertresume.us")
	}), []string{"a@b.com", "ops@expertresume.us"}).Return("ses-msg-1", nil)
	ls.On("Append", mock.Anything, mock.MatchedBy(func(l *domain.EmailLog) bool {
		return l.Status == domain.EmailStatusSent &&
			l.SESMessageID == "ses-msg-1" &&
			!l.HasAttachment
	})).Return(nil)

	svc := newTestService(nil, un, ls, rl, nil, nil)
	result, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", Email: "a@b.com"})

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, "Email sent successfully to a@b.com", result.Message)
	assert.Equal(t, "ses-msg-1", result.MessageID)
	rl.AssertExpectations(t)
	ls.AssertExpectations(t)
}

func TestSend_NoBccConfigured_OnlyRecipientOnEnvelope(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	rl.On("SendRaw", mock.Anything, mock.Anything, []string{"a@b.com"}).Return("ses-msg-5", nil)
	ls.On("Append", mock.Anything, logMatching(domain.EmailStatusSent)).Return(nil)

	svc := NewService(ServiceDeps{
		Unsubscribes: un,
		Logs:         ls,
		Relay:        rl,
		FromName:     "ExpertResume",
		FromAddress:  "support@expertresume.us",
	})
	_, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", Email: "a@b.com"})

	require.NoError(t, err)
	rl.AssertExpectations(t)
}

func TestSend_Invoice_AttachesPDFAndArchives(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}
	rd := &mockRenderer{}
	ar := &mockArchiver{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	rd.On("RenderPDF", mock.Anything, mock.Anything).Return([]byte("%PDF-1.4 fake"), nil)
	ar.On("StorePDF", mock.Anything, "Invoice_Pro_Monthly_Plan.pdf", mock.Anything).
		Return("s3://invoices/Invoice_Pro_Monthly_Plan.pdf", nil)
	rl.On("SendRaw", mock.Anything, mock.MatchedBy(func(raw []byte) bool {
		s := string(raw)
		return strings.Contains(s, "application/pdf") &&
			strings.Contains(s, "Invoice_Pro_Monthly_Plan.pdf")
	}), mock.Anything).Return("ses-msg-2", nil)
	ls.On("Append", mock.Anything, mock.MatchedBy(func(l *domain.EmailLog) bool {
		return l.Status == domain.EmailStatusSent && l.HasAttachment
	})).Return(nil)

	svc := newTestService(nil, un, ls, rl, rd, ar)
	result, err := svc.Send(context.Background(), SendRequest{
		TemplateID: TemplateInvoice,
		Email:      "a@b.com",
		Data:       map[string]interface{}{"planName": "Pro Monthly Plan", "amount": 499.0},
	})

	require.NoError(t, err)
	assert.Equal(t, "ses-msg-2", result.MessageID)
	rd.AssertExpectations(t)
	ar.AssertExpectations(t)
	rl.AssertExpectations(t)
	ls.AssertExpectations(t)
}

func TestSend_Invoice_PDFFailure_AbortsSend(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}
	rd := &mockRenderer{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	rd.On("RenderPDF", mock.Anything, mock.Anything).Return(nil, domain.ErrPDFRender)
	ls.On("Append", mock.Anything, logMatching(domain.EmailStatusFailed)).Return(nil)

	svc := newTestService(nil, un, ls, rl, rd, nil)
	_, err := svc.Send(context.Background(), SendRequest{TemplateID: TemplateInvoice, Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPDFRender))
	rl.AssertNotCalled(t, "SendRaw", mock.Anything, mock.Anything, mock.Anything)
	ls.AssertExpectations(t)
}

func TestSend_RelayFailure_LogsFailed(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	rl.On("SendRaw", mock.Anything, mock.Anything, mock.Anything).Return("", domain.ErrEmailDelivery)
	ls.On("Append", mock.Anything, logMatching(domain.EmailStatusFailed)).Return(nil)

	svc := newTestService(nil, un, ls, rl, nil, nil)
	_, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailDelivery))
	ls.AssertExpectations(t)
}

func TestSend_ProfileMergedIntoTemplateData(t *testing.T) {
	us := &mockUserStore{}
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}

	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1",
		Name:   "Priya Sharma",
		Email:  "priya@b.com",
	}, nil)
	un.On("Exists", mock.Anything, "priya@b.com").Return(false, nil)
	rl.On("SendRaw", mock.Anything, mock.MatchedBy(func(raw []byte) bool {
		return strings.Contains(string(raw), "Priya")
	}), mock.Anything).Return("ses-msg-3", nil)
	ls.On("Append", mock.Anything, mock.MatchedBy(func(l *domain.EmailLog) bool {
		return l.UserID == "u1" && l.RecipientEmail == "priya@b.com"
	})).Return(nil)

	svc := newTestService(us, un, ls, rl, nil, nil)
	_, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", UserID: "u1"})

	require.NoError(t, err)
	rl.AssertExpectations(t)
	ls.AssertExpectations(t)
}

func TestSend_LogAppendFailure_DoesNotFailSend(t *testing.T) {
	un := &mockUnsubscribeStore{}
	ls := &mockLogStore{}
	rl := &mockRelay{}

	un.On("Exists", mock.Anything, "a@b.com").Return(false, nil)
	rl.On("SendRaw", mock.Anything, mock.Anything, mock.Anything).Return("ses-msg-4", nil)
	ls.On("Append", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := newTestService(nil, un, ls, rl, nil, nil)
	result, err := svc.Send(context.Background(), SendRequest{TemplateID: "welcome", Email: "a@b.com"})

	require.NoError(t, err)
	assert.Equal(t, "ses-msg-4", result.MessageID)
}
