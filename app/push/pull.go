package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-push/app/feed"
)

// ErrNoEntries is returned when a pulled feed parses fine but has nothing
// in it.
var ErrNoEntries = errors.New("feed has no entries")

// PullResult is the outcome of a manual pull: the most recent entry plus,
// when rendering succeeded, a preview image the caller must delete after
// use.
type PullResult struct {
	Entry     feed.Entry
	ImagePath string
}

// Pull fetches a single feed and renders its most recent entry for preview.
// It is explicitly not a delivery: the dedup store is neither consulted nor
// written, so a later push cycle still delivers the entry normally.
func (p *Pusher) Pull(ctx context.Context, url string) (*PullResult, error) {
	entries, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to pull feed: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	entry := p.enrichEntry(ctx, entries[0])
	result := &PullResult{Entry: entry}

	imagePath, err := p.renderer.RenderEntry(ctx, entry)
	if err != nil {
		// Preview rendering is best-effort; the entry text still goes back.
		slog.Error("Pull render failed", "feed", url, "entry", entry.Link, "error", err)
		return result, nil
	}
	result.ImagePath = imagePath

	return result, nil
}
