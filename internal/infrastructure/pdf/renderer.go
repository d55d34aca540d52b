package pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/expertresume/notification-api/internal/domain"
)

// A4 paper size in inches and the matching pixel viewport at 96 DPI.
const (
	paperWidthIn   = 8.27
	paperHeightIn  = 11.69
	viewportWidth  = 794
	viewportHeight = 1123
)

// Renderer turns an HTML document into a PDF byte buffer.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer drives a headless Chrome instance per render. A fresh
// browser context is created and torn down for every call so a crashed or
// hung render can never poison the next one.
type ChromeRenderer struct {
	timeout time.Duration
}

func NewChromeRenderer(timeout time.Duration) *ChromeRenderer {
	return &ChromeRenderer{timeout: timeout}
}

// RenderPDF loads the document, waits until every image on the page has
// finished loading (the logo is fetched from a remote host, and the load
// event alone does not guarantee it decoded), and prints an A4 PDF with
// background graphics. The whole run is bounded by the configured timeout.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)...,
	)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	// Releases the browser process on every exit path.
	defer cancelTask()

	url := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(url),
		chromedp.Poll(`Array.from(document.images).every(i => i.complete)`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w: %w", domain.ErrPDFRender, err)
	}
	return buf, nil
}
