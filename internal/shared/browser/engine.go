// Package browser owns the process-wide headless Chrome used to print HTML to PDF.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"resume-builder/internal/shared/telemetry"
)

// A4 in inches.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
)

// ErrClosed is returned after Shutdown.
var ErrClosed = errors.New("browser engine closed")

// Options configures the engine.
type Options struct {
	ExecPath       string
	ContentTimeout time.Duration
	PDFTimeout     time.Duration
	SettleDelay    time.Duration
}

func (o Options) withDefaults() Options {
	if o.ContentTimeout <= 0 {
		o.ContentTimeout = 30 * time.Second
	}
	if o.PDFTimeout <= 0 {
		o.PDFTimeout = 60 * time.Second
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	return o
}

type launchFunc func(opts Options) (ctx context.Context, cancel context.CancelFunc, err error)

// Engine is a lazily started, shared browser. Each render gets its own tab.
type Engine struct {
	opts   Options
	launch launchFunc

	mu       sync.Mutex
	cond     *sync.Cond
	browser  context.Context
	cancel   context.CancelFunc
	inFlight bool
	closed   bool
}

// New returns an engine that starts Chrome on first use.
func New(opts Options) *Engine {
	e := &Engine{opts: opts.withDefaults(), launch: launchChrome}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func launchChrome(opts Options) (context.Context, context.CancelFunc, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.DisableGPU,
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}
	// The first Run on a fresh context launches the process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("launch chrome: %w", err)
	}
	return browserCtx, cancel, nil
}

// started returns the running browser, launching it once. Concurrent callers
// wait for the in-flight launch; a failed launch is retried by the next caller.
func (e *Engine) started() (context.Context, error) {
	e.mu.Lock()
	for e.inFlight && e.browser == nil && !e.closed {
		e.cond.Wait()
	}
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if e.browser != nil {
		b := e.browser
		e.mu.Unlock()
		return b, nil
	}
	e.inFlight = true
	e.mu.Unlock()

	start := time.Now()
	b, cancel, err := e.launch(e.opts)

	e.mu.Lock()
	if err == nil {
		if e.closed {
			cancel()
			err = ErrClosed
		} else {
			e.browser, e.cancel = b, cancel
		}
	}
	e.inFlight = false
	e.cond.Broadcast()
	e.mu.Unlock()

	if err != nil {
		telemetry.Error("browser.launch.failed", map[string]any{"error": err})
		return nil, err
	}
	telemetry.Info("browser.launch", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
	return b, nil
}

// Acquire opens an isolated tab. The release func closes it and must be called
// on every path.
func (e *Engine) Acquire(ctx context.Context) (context.Context, func(), error) {
	b, err := e.started()
	if err != nil {
		return nil, nil, err
	}
	tab, cancelTab := chromedp.NewContext(b)
	stop := context.AfterFunc(ctx, cancelTab)
	release := func() {
		stop()
		cancelTab()
	}
	if err := chromedp.Run(tab); err != nil {
		release()
		return nil, nil, fmt.Errorf("open tab: %w", err)
	}
	return tab, release, nil
}

// RenderPDF loads document into a fresh tab, waits for fonts and layout to
// settle and prints an A4 PDF with backgrounds and no margins.
func (e *Engine) RenderPDF(ctx context.Context, document string) ([]byte, error) {
	tab, release, err := e.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var fontsReady bool
	contentCtx, cancelContent := context.WithTimeout(tab, e.opts.ContentTimeout)
	err = chromedp.Run(contentCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, awaitPromise),
	)
	cancelContent()
	if err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}

	if err := sleep(ctx, e.opts.SettleDelay); err != nil {
		return nil, err
	}

	pdfCtx, cancelPDF := context.WithTimeout(tab, e.opts.PDFTimeout)
	defer cancelPDF()
	var out []byte
	err = chromedp.Run(pdfCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			WithPaperWidth(a4WidthIn).
			WithPaperHeight(a4HeightIn).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			Do(ctx)
		out = data
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return out, nil
}

// Shutdown closes the browser. Later calls to Acquire fail with ErrClosed.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	cancel := e.cancel
	e.browser, e.cancel = nil, nil
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()

	if cancel == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		cancel()
		close(done)
	}()
	select {
	case <-done:
		telemetry.Info("browser.shutdown", nil)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
