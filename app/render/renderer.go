package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/lysyi3m/rss-push/app/feed"
)

const (
	// sentinelTimeout bounds the wait for the #render-complete element.
	sentinelTimeout = 5 * time.Second

	// captureTimeout bounds viewport resize plus screenshot capture.
	captureTimeout = 10 * time.Second
)

type browserState int

const (
	stateUninitialized browserState = iota
	stateReady
	stateClosed
)

// Renderer screenshots HTML documents with a single shared headless Chrome
// instance. The browser is launched lazily on first use; every render runs
// in its own tab so in-flight renders cannot overwrite each other's content.
// Close tears the instance down and resets the lazy state, so a later render
// relaunches.
type Renderer struct {
	mu          sync.Mutex
	state       browserState
	allocCancel context.CancelFunc
	browserCtx  context.Context
	scratchDir  string
	chromePath  string
}

var _ RendererInterface = (*Renderer)(nil)

func NewRenderer(scratchDir, chromePath string) *Renderer {
	return &Renderer{
		scratchDir: scratchDir,
		chromePath: chromePath,
	}
}

func (r *Renderer) RenderCode(ctx context.Context, code, language string) (string, error) {
	html, err := CodeTemplate(code, language)
	if err != nil {
		return "", err
	}
	return r.render(ctx, html, "code")
}

func (r *Renderer) RenderMarkdown(ctx context.Context, source string) (string, error) {
	html, err := MarkdownTemplate(source)
	if err != nil {
		return "", err
	}
	return r.render(ctx, html, "markdown")
}

func (r *Renderer) RenderEntry(ctx context.Context, entry feed.Entry) (string, error) {
	html := EntryTemplate(EntryDocument{
		Title:       entry.Title,
		SourceTitle: entry.SourceTitle,
		Link:        entry.Link,
		PublishedAt: entry.PublishedAt,
		BodyHTML:    entry.Body(),
	})
	return r.render(ctx, html, "entry")
}

// Close shuts down the shared browser instance. Safe to call when the
// browser was never launched, and safe to render again afterwards.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateReady {
		r.state = stateClosed
		return nil
	}

	if err := chromedp.Cancel(r.browserCtx); err != nil {
		slog.Warn("Browser shutdown reported an error", "error", err)
	}
	r.allocCancel()
	r.browserCtx = nil
	r.allocCancel = nil
	r.state = stateClosed

	slog.Debug("Browser instance closed")
	return nil
}

// ensureReady launches the shared browser when it is not running. Callers
// hold r.mu.
func (r *Renderer) ensureReady() error {
	if r.state == stateReady {
		return nil
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.NoSandbox)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	// The browser outlives any single render call, so its lifetime hangs off
	// the background context rather than a request context.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, _ := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		allocCancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.state = stateReady

	slog.Info("Browser instance launched")
	return nil
}

func (r *Renderer) render(ctx context.Context, html, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if err := r.ensureReady(); err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	waitCtx, cancelWait := context.WithTimeout(tabCtx, sentinelTimeout)
	defer cancelWait()

	var box struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	err := chromedp.Run(waitCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("#render-complete", chromedp.ByID),
		chromedp.Evaluate(`({width: document.body.scrollWidth, height: document.body.scrollHeight})`, &box),
	)
	if err != nil {
		return "", fmt.Errorf("failed to lay out document: %w", err)
	}

	captureCtx, cancelCapture := context.WithTimeout(tabCtx, captureTimeout)
	defer cancelCapture()

	// Size the viewport to the content's natural box: no wasted margin, no
	// clipping.
	var shot []byte
	err = chromedp.Run(captureCtx,
		chromedp.EmulateViewport(int64(math.Ceil(box.Width)), int64(math.Ceil(box.Height))),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}

	if err := os.MkdirAll(r.scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}

	filePath := filepath.Join(r.scratchDir, fmt.Sprintf("%s_%s.png", prefix, uuid.NewString()))
	if err := os.WriteFile(filePath, shot, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	slog.Debug("Render completed", "kind", prefix, "path", filePath,
		"width", int64(math.Ceil(box.Width)), "height", int64(math.Ceil(box.Height)))

	return filePath, nil
}
