// Package pdf renders HTML documents to PDF using headless Chrome.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultRenderTimeout = 30 * time.Second

// Renderer converts HTML to PDF bytes
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// ChromeRenderer implements Renderer via the Chrome DevTools Protocol
type ChromeRenderer struct {
	logger      *zap.Logger
	timeout     time.Duration
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeRenderer creates a headless Chrome renderer. The browser
// instance is shared across renders and released by Close.
func NewChromeRenderer(logger *zap.Logger) *ChromeRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeRenderer{
		logger:      logger.Named("pdf"),
		timeout:     defaultRenderTimeout,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Render converts an HTML document to A4 PDF bytes
func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errors.New("html content is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()

	start := time.Now()
	var pdfData []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginRight(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("pdf rendering timed out after %v", r.timeout)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, fmt.Errorf("pdf rendering failed: %w", err)
	}
	if len(pdfData) == 0 {
		return nil, errors.New("generated pdf is empty")
	}

	r.logger.Debug("PDF rendered",
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))
	return pdfData, nil
}

// Close releases the browser allocator
func (r *ChromeRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ Renderer = (*ChromeRenderer)(nil)
