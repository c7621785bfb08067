package render

import (
	"context"

	"github.com/lysyi3m/rss-push/app/feed"
)

// RendererInterface turns documents into PNG files on disk. The caller owns
// deletion of the returned file. Rendering is best-effort: a failure is
// reported as an error and must never abort delivery of the underlying text.
type RendererInterface interface {
	RenderCode(ctx context.Context, code, language string) (string, error)
	RenderMarkdown(ctx context.Context, source string) (string, error)
	RenderEntry(ctx context.Context, entry feed.Entry) (string, error)
	Close() error
}
