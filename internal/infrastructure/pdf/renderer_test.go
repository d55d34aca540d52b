package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/expertresume/notification-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPDF_TimeoutWrapsRenderError(t *testing.T) {
	r := NewChromeRenderer(time.Nanosecond)

	buf, err := r.RenderPDF(context.Background(), "<html><body>hi</body></html>")

	require.Error(t, err)
	assert.Nil(t, buf)
	assert.ErrorIs(t, err, domain.ErrPDFRender)
}

func TestRenderPDF_CancelledContext(t *testing.T) {
	r := NewChromeRenderer(30 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderPDF(ctx, "<html></html>")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPDFRender)
}
